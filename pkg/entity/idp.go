package entity

import (
	"time"

	"gorm.io/datatypes"
)

// IDP 个人发展计划实体（推荐结果的落地目标）
type IDP struct {
	ID     string `gorm:"column:id;primaryKey;type:varchar(64)"`
	UserID string `gorm:"column:user_id;type:varchar(64);not null;index:idx_user_status"`
	Title  string `gorm:"column:title;type:varchar(255)"`

	// 发展目标：[{"skill": "...", "gap": 0.5, "currentLevel": 1, "targetLevel": 5}]
	// gap/currentLevel/targetLevel 可缺省
	Goals datatypes.JSON `gorm:"column:goals;type:json"`

	// 推荐状态与结果
	Status             string         `gorm:"column:status;type:varchar(16);not null;default:'pending';index:idx_user_status"`
	SuggestedResources datatypes.JSON `gorm:"column:suggested_resources;type:json"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (IDP) TableName() string {
	return "idps"
}

// IDP 状态常量
const (
	IDPStatusPending = "pending"
	IDPStatusActive  = "active"
	IDPStatusFailed  = "failed"
)
