package model

// SuggestedResource 推荐结果项（写入 idps.suggested_resources 的元素）
type SuggestedResource struct {
	Resource string  `json:"resource"` // 资源 ID 引用
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

// UserSkill 用户技能（users.skills JSON 列的元素）
type UserSkill struct {
	SkillID string `json:"skillId"`
	Level   int    `json:"level"`
}

// Goal IDP 目标（idps.goals JSON 列的元素）
// gap/currentLevel/targetLevel 缺失时由业务侧补默认值
type Goal struct {
	Skill        string   `json:"skill"`
	SkillID      string   `json:"skillId,omitempty"` // 兼容字段，优先取 Skill
	Gap          *float64 `json:"gap,omitempty"`
	CurrentLevel *int     `json:"currentLevel,omitempty"`
	TargetLevel  *int     `json:"targetLevel,omitempty"`
}

// SkillRef 目标指向的技能 ID（skill 与 skillId 二选一）
func (g *Goal) SkillRef() string {
	if g.Skill != "" {
		return g.Skill
	}
	return g.SkillID
}

// RecommendationNotification 推荐完成通知消息（Redis 频道）
type RecommendationNotification struct {
	IDPID         string `json:"idp_id"`
	UserID        string `json:"user_id"`
	JobID         string `json:"job_id,omitempty"`
	Status        string `json:"status"`
	ResourceCount int    `json:"resource_count"`
	Timestamp     int64  `json:"timestamp"`
}

// 通知状态常量
const (
	NotifyStatusActive = "active"
)
