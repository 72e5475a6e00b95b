package entity

import (
	"time"

	"gorm.io/datatypes"
)

// User 用户实体
type User struct {
	ID    string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name  string `gorm:"column:name;type:varchar(128);not null"`
	Email string `gorm:"column:email;type:varchar(128);index:idx_email"`

	// 当前技能列表：[{"skillId": "...", "level": 2}]
	Skills datatypes.JSON `gorm:"column:skills;type:json"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
