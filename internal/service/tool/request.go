package tool

import (
	"bytes"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/scoring"
	"github.com/ashwinyue/tool-catalog/internal/service/types"
)

// CreateToolRequest 创建工具请求，质量标记与其余字段平铺在同一层
type CreateToolRequest struct {
	Name         string          `json:"name" binding:"required" yaml:"name"`
	Description  string          `json:"description" yaml:"description"`
	Category     string          `json:"category" yaml:"category"`
	Version      string          `json:"version" yaml:"version"`
	Author       string          `json:"author" yaml:"author"`
	SourceType   string          `json:"sourceType" yaml:"sourceType"`
	SourceURL    string          `json:"sourceUrl" yaml:"sourceUrl"`
	InputSchema  json.RawMessage `json:"inputSchema" yaml:"-"`
	OutputSchema json.RawMessage `json:"outputSchema" yaml:"-"`
	Tags         []string        `json:"tags" yaml:"tags"`
	Chains       []string        `json:"chains" yaml:"chains"`
	Protocols    []string        `json:"protocols" yaml:"protocols"`
	Flags        scoring.Flags   `json:"-" yaml:"-"`
}

// UnmarshalJSON 先解析普通字段，再从同一文档读取质量标记
func (r *CreateToolRequest) UnmarshalJSON(data []byte) error {
	type plain CreateToolRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &p.Flags); err != nil {
		return err
	}
	*r = CreateToolRequest(p)
	return nil
}

// UpdateToolRequest 更新工具请求，nil 字段保持原值
type UpdateToolRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Version     *string `json:"version"`
	Author      *string `json:"author"`
	SourceType  *string `json:"sourceType"`
	SourceURL   *string `json:"sourceUrl"`
	// 出现即替换，显式 null 清空
	InputSchema  json.RawMessage    `json:"inputSchema"`
	OutputSchema json.RawMessage    `json:"outputSchema"`
	Tags         *[]string          `json:"tags"`
	Chains       *[]string          `json:"chains"`
	Protocols    *[]string          `json:"protocols"`
	Flags        scoring.FlagsPatch `json:"-"`
}

// UnmarshalJSON 同 CreateToolRequest，只有出现的标记进入补丁
func (r *UpdateToolRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateToolRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &p.Flags); err != nil {
		return err
	}
	*r = UpdateToolRequest(p)
	return nil
}

// ListToolsRequest 列出工具请求
type ListToolsRequest struct {
	types.Page
	Category string
	Grade    string
}

// SearchToolsRequest 搜索工具请求
type SearchToolsRequest struct {
	types.Page
	Query    string
	Category string
	Chain    string
	Protocol string
	Tag      string
	Grade    string
	MinScore int
}

// Score 工具的评分明细
type Score struct {
	ToolID string        `json:"toolId"`
	Flags  scoring.Flags `json:"flags"`
	scoring.Result
}

// MergeUpdate 将更新请求合并到现有工具上并重新计算分数，不修改 current
func MergeUpdate(current *model.Tool, req *UpdateToolRequest) (*model.Tool, scoring.Result) {
	merged := *current

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&merged.Name, req.Name)
	setString(&merged.Description, req.Description)
	setString(&merged.Version, req.Version)
	setString(&merged.Author, req.Author)
	setString(&merged.SourceType, req.SourceType)
	setString(&merged.SourceURL, req.SourceURL)
	if req.Category != nil {
		merged.Category = model.Slugify(*req.Category)
	}

	if req.InputSchema != nil {
		merged.InputSchema = schemaColumn(req.InputSchema)
	}
	if req.OutputSchema != nil {
		merged.OutputSchema = schemaColumn(req.OutputSchema)
	}

	if req.Tags != nil {
		merged.Tags = model.NormalizeSet(*req.Tags)
	}
	if req.Chains != nil {
		merged.Chains = model.NormalizeSet(*req.Chains)
	}
	if req.Protocols != nil {
		merged.Protocols = model.NormalizeSet(*req.Protocols)
	}

	res := merged.SetQualityFlags(req.Flags.Apply(current.QualityFlags()))
	return &merged, res
}

// schemaColumn 空值与 null 存为 NULL
func schemaColumn(raw json.RawMessage) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return datatypes.JSON(trimmed)
}
