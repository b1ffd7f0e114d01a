package model

import (
	"time"
)

// Setting 偏好设置表（扁平键值空间）
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`  // 设置键
	Value     string    `gorm:"type:text" json:"value"` // 设置值
	UpdatedAt time.Time `json:"updatedAt"`              // 更新时间
}

// 预定义的设置 Key
const (
	SettingKeyLastURL    = "last_url"    // 上次打开的 URL
	SettingKeyLastWidth  = "last_width"  // 上次请求的宽度（仅尺寸模式）
	SettingKeyLastHeight = "last_height" // 上次请求的高度（仅尺寸模式）
)

// All 返回需要迁移的全部模型
func All() []any {
	return []any{&Setting{}}
}
