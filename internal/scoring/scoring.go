// Package scoring 根据质量标记计算工具的信任分与等级
package scoring

import "math"

// Grade 信任等级
type Grade string

const (
	GradeA Grade = "a"
	GradeB Grade = "b"
	GradeF Grade = "f"
)

const (
	// MaxScore 全部权重之和
	MaxScore = 100
	// MaxRequiredScore 必需标记的权重之和
	MaxRequiredScore = 60

	gradeAThreshold = 80
	gradeBThreshold = 60
)

// Flags 九个质量标记
type Flags struct {
	Validated               bool `json:"validated"`
	Claimed                 bool `json:"claimed"`
	HasTools                bool `json:"hasTools"`
	HasReadme               bool `json:"hasReadme"`
	HasLicense              bool `json:"hasLicense"`
	HasDeployment           bool `json:"hasDeployment"`
	HasDeployMoreThanManual bool `json:"hasDeployMoreThanManual"`
	HasPrompts              bool `json:"hasPrompts"`
	HasResources            bool `json:"hasResources"`
}

// Result 评分结果
type Result struct {
	Grade              Grade `json:"grade"`
	TotalScore         int   `json:"totalScore"`
	MaxScore           int   `json:"maxScore"`
	Percentage         int   `json:"percentage"`
	RequiredScore      int   `json:"requiredScore"`
	MaxRequiredScore   int   `json:"maxRequiredScore"`
	RequiredPercentage int   `json:"requiredPercentage"`
}

// Weight 单个标记的权重
type Weight struct {
	Flag     string
	Points   int
	Required bool
	value    func(Flags) bool
}

var weights = []Weight{
	{Flag: "validated", Points: 20, Required: true, value: func(f Flags) bool { return f.Validated }},
	{Flag: "hasTools", Points: 15, Required: true, value: func(f Flags) bool { return f.HasTools }},
	{Flag: "hasDeployment", Points: 15, Required: true, value: func(f Flags) bool { return f.HasDeployment }},
	{Flag: "hasReadme", Points: 10, Required: true, value: func(f Flags) bool { return f.HasReadme }},
	{Flag: "hasDeployMoreThanManual", Points: 12, value: func(f Flags) bool { return f.HasDeployMoreThanManual }},
	{Flag: "hasLicense", Points: 8, value: func(f Flags) bool { return f.HasLicense }},
	{Flag: "hasPrompts", Points: 8, value: func(f Flags) bool { return f.HasPrompts }},
	{Flag: "hasResources", Points: 8, value: func(f Flags) bool { return f.HasResources }},
	{Flag: "claimed", Points: 4, value: func(f Flags) bool { return f.Claimed }},
}

// Weights 返回权重表副本
func Weights() []Weight {
	out := make([]Weight, len(weights))
	copy(out, weights)
	return out
}

// Compute 计算信任分
// 必需标记缺失时直接判为 f，与总分无关
func Compute(f Flags) Result {
	var total, required int
	for _, w := range weights {
		if !w.value(f) {
			continue
		}
		total += w.Points
		if w.Required {
			required += w.Points
		}
	}

	res := Result{
		TotalScore:         total,
		MaxScore:           MaxScore,
		Percentage:         percent(total, MaxScore),
		RequiredScore:      required,
		MaxRequiredScore:   MaxRequiredScore,
		RequiredPercentage: percent(required, MaxRequiredScore),
	}

	switch {
	case res.RequiredPercentage < 100:
		res.Grade = GradeF
	case res.Percentage >= gradeAThreshold:
		res.Grade = GradeA
	case res.Percentage >= gradeBThreshold:
		res.Grade = GradeB
	default:
		res.Grade = GradeF
	}
	return res
}

// percent 四舍五入（远离零）
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
