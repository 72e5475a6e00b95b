package entity

import "time"

// Resource 学习资源实体
// SkillID 是裸引用，排序前由业务侧补全为完整技能记录
type Resource struct {
	ID      string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Title   string `gorm:"column:title;type:varchar(255);not null"`
	Type    string `gorm:"column:type;type:varchar(32)"` // course/book/video
	URL     string `gorm:"column:url;type:varchar(512)"`
	SkillID string `gorm:"column:skill_id;type:varchar(64);index:idx_skill"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Resource) TableName() string {
	return "resources"
}
