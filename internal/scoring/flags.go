package scoring

import (
	"bytes"
	"encoding/json"
)

// FlagsPatch 质量标记的部分更新，nil 表示保持原值
type FlagsPatch struct {
	Validated               *bool `json:"validated,omitempty"`
	Claimed                 *bool `json:"claimed,omitempty"`
	HasTools                *bool `json:"hasTools,omitempty"`
	HasReadme               *bool `json:"hasReadme,omitempty"`
	HasLicense              *bool `json:"hasLicense,omitempty"`
	HasDeployment           *bool `json:"hasDeployment,omitempty"`
	HasDeployMoreThanManual *bool `json:"hasDeployMoreThanManual,omitempty"`
	HasPrompts              *bool `json:"hasPrompts,omitempty"`
	HasResources            *bool `json:"hasResources,omitempty"`
}

// Apply 将补丁合并到现有标记上
func (p FlagsPatch) Apply(f Flags) Flags {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Validated, p.Validated)
	set(&f.Claimed, p.Claimed)
	set(&f.HasTools, p.HasTools)
	set(&f.HasReadme, p.HasReadme)
	set(&f.HasLicense, p.HasLicense)
	set(&f.HasDeployment, p.HasDeployment)
	set(&f.HasDeployMoreThanManual, p.HasDeployMoreThanManual)
	set(&f.HasPrompts, p.HasPrompts)
	set(&f.HasResources, p.HasResources)
	return f
}

// IsEmpty 补丁中没有任何标记
func (p FlagsPatch) IsEmpty() bool {
	for _, v := range p.fields() {
		if *v != nil {
			return false
		}
	}
	return true
}

func (p *FlagsPatch) fields() map[string]**bool {
	return map[string]**bool{
		"validated":               &p.Validated,
		"claimed":                 &p.Claimed,
		"hasTools":                &p.HasTools,
		"hasReadme":               &p.HasReadme,
		"hasLicense":              &p.HasLicense,
		"hasDeployment":           &p.HasDeployment,
		"hasDeployMoreThanManual": &p.HasDeployMoreThanManual,
		"hasPrompts":              &p.HasPrompts,
		"hasResources":            &p.HasResources,
	}
}

// UnmarshalJSON 出现的键一律生效，非布尔值视为 false
func (p *FlagsPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = FlagsPatch{}
	for key, dst := range p.fields() {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		v := looseBool(msg)
		*dst = &v
	}
	return nil
}

// UnmarshalJSON 缺失或非布尔值视为 false
func (f *Flags) UnmarshalJSON(data []byte) error {
	var p FlagsPatch
	if err := p.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = p.Apply(Flags{})
	return nil
}

func looseBool(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("true"))
}

// Bool 返回指针，便于构造补丁
func Bool(v bool) *bool {
	return &v
}
