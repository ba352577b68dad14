package model

import (
	"strings"
	"unicode"
)

// Category 分类计数
type Category struct {
	Slug      string `gorm:"primaryKey;size:100" json:"slug"`
	Name      string `gorm:"size:100;not null" json:"name"`
	ToolCount int64  `gorm:"default:0" json:"toolCount"`
}

func (Category) TableName() string {
	return "categories"
}

// Slugify 将分类名转换为 slug，例如 "Data & AI" -> "data-ai"
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
