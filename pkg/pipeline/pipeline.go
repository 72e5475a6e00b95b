package pipeline

// Skill 技能（相似度计算的输入单元）
type Skill struct {
	ID       string
	Name     string
	Category string
}

// UserSkill 用户当前技能
type UserSkill struct {
	SkillID string
	Level   int
}

// SkillGap 技能差距（由 IDP 目标推导）
type SkillGap struct {
	SkillID      string
	Gap          float64
	CurrentLevel int
	TargetLevel  int
}

// Resource 参与排序的资源
// Skill 为补全后的完整技能记录，补全失败时为 nil（仅裸引用）
type Resource struct {
	ID      string
	Title   string
	Type    string
	SkillID string
	Skill   *Skill
}

// ResourceFeature 单个资源的预计算特征
type ResourceFeature struct {
	TypePrior   float64  // 资源形态先验权重
	TitleTokens []string // 标题分词
}

// ResourceFeatures 资源特征集（资源 ID -> 特征）
type ResourceFeatures map[string]ResourceFeature

// ScoredResource 打分结果
type ScoredResource struct {
	Resource  Resource
	Score     float64
	Breakdown map[string]float64 // 各评分维度明细
	Reason    string             // 推荐理由（可为空，由调用方兜底）
}

// Pipeline 排序管线接口
// 实现方自治：并列分数的先后顺序由实现自行决定
type Pipeline interface {
	// BuildSkillMapping 构建技能 ID -> 矩阵下标映射
	BuildSkillMapping(skills []Skill) map[string]int

	// BuildSimilarityMatrix 构建技能相似度矩阵（对称，对角线 1.0，取值 [0,1]）
	BuildSimilarityMatrix(skills []Skill) [][]float64

	// PrepareResourceFeatures 预计算资源特征
	PrepareResourceFeatures(resources []Resource) ResourceFeatures

	// Rank 对资源打分排序，分数降序返回
	Rank(resources []Resource, userSkills []UserSkill, gaps []SkillGap,
		features ResourceFeatures, similarity [][]float64,
		mapping map[string]int) []ScoredResource
}
