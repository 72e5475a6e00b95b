package entity

import "time"

// Skill 技能实体（相似度计算的输入）
type Skill struct {
	ID          string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name        string `gorm:"column:name;type:varchar(128);not null"`
	Category    string `gorm:"column:category;type:varchar(64);index:idx_category"`
	Description string `gorm:"column:description;type:varchar(512)"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Skill) TableName() string {
	return "skills"
}
