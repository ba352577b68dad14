package model

import "time"

// UsageAction 使用事件类型
type UsageAction string

const (
	UsageActionUse      UsageAction = "use"
	UsageActionDownload UsageAction = "download"
	UsageActionView     UsageAction = "view"
)

// Valid 是否为已知事件类型
func (a UsageAction) Valid() bool {
	switch a {
	case UsageActionUse, UsageActionDownload, UsageActionView:
		return true
	}
	return false
}

// UsageEvent 使用事件，只追加不修改
type UsageEvent struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	ToolID    string      `gorm:"size:36;index;not null" json:"toolId"`
	Action    UsageAction `gorm:"size:20;not null" json:"action"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`

	Tool *Tool `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (UsageEvent) TableName() string {
	return "usage_events"
}
