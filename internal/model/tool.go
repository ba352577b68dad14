package model

import (
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/ashwinyue/tool-catalog/internal/scoring"
)

// Tool 目录中的工具条目
type Tool struct {
	ID           string                      `gorm:"primaryKey;size:36" json:"id"`
	Name         string                      `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description  string                      `gorm:"type:text" json:"description"`
	Category     string                      `gorm:"size:100;index" json:"category"`
	Version      string                      `gorm:"size:50" json:"version"`
	Author       string                      `gorm:"size:255" json:"author"`
	SourceType   string                      `gorm:"size:50" json:"sourceType"` // github, npm, pypi ...
	SourceURL    string                      `gorm:"size:512" json:"sourceUrl"`
	InputSchema  datatypes.JSON              `json:"inputSchema,omitempty"`
	OutputSchema datatypes.JSON              `json:"outputSchema,omitempty"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Chains       datatypes.JSONSlice[string] `json:"chains"`
	Protocols    datatypes.JSONSlice[string] `json:"protocols"`

	// 质量标记
	Validated               bool `gorm:"default:false" json:"validated"`
	Claimed                 bool `gorm:"default:false" json:"claimed"`
	HasTools                bool `gorm:"default:false" json:"hasTools"`
	HasReadme               bool `gorm:"default:false" json:"hasReadme"`
	HasLicense              bool `gorm:"default:false" json:"hasLicense"`
	HasDeployment           bool `gorm:"default:false" json:"hasDeployment"`
	HasDeployMoreThanManual bool `gorm:"default:false" json:"hasDeployMoreThanManual"`
	HasPrompts              bool `gorm:"default:false" json:"hasPrompts"`
	HasResources            bool `gorm:"default:false" json:"hasResources"`

	// 派生分数，只能通过 SetQualityFlags 写入
	TotalScore int    `gorm:"index;default:0" json:"totalScore"`
	MaxScore   int    `gorm:"default:100" json:"maxScore"`
	Percentage int    `gorm:"default:0" json:"percentage"`
	Grade      string `gorm:"size:1;index;default:f" json:"grade"`

	DownloadCount int64 `gorm:"default:0" json:"downloadCount"`
	UsageCount    int64 `gorm:"default:0" json:"usageCount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Tool) TableName() string {
	return "tools"
}

// QualityFlags 取出质量标记
func (t *Tool) QualityFlags() scoring.Flags {
	return scoring.Flags{
		Validated:               t.Validated,
		Claimed:                 t.Claimed,
		HasTools:                t.HasTools,
		HasReadme:               t.HasReadme,
		HasLicense:              t.HasLicense,
		HasDeployment:           t.HasDeployment,
		HasDeployMoreThanManual: t.HasDeployMoreThanManual,
		HasPrompts:              t.HasPrompts,
		HasResources:            t.HasResources,
	}
}

// SetQualityFlags 写入标记并重新计算分数
func (t *Tool) SetQualityFlags(f scoring.Flags) scoring.Result {
	t.Validated = f.Validated
	t.Claimed = f.Claimed
	t.HasTools = f.HasTools
	t.HasReadme = f.HasReadme
	t.HasLicense = f.HasLicense
	t.HasDeployment = f.HasDeployment
	t.HasDeployMoreThanManual = f.HasDeployMoreThanManual
	t.HasPrompts = f.HasPrompts
	t.HasResources = f.HasResources

	res := scoring.Compute(f)
	t.applyScore(res)
	return res
}

func (t *Tool) applyScore(res scoring.Result) {
	t.TotalScore = res.TotalScore
	t.MaxScore = res.MaxScore
	t.Percentage = res.Percentage
	t.Grade = string(res.Grade)
}

// NormalizeSet 去空白、转小写、去重并排序
func NormalizeSet(values []string) datatypes.JSONSlice[string] {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return datatypes.JSONSlice[string](out)
}
