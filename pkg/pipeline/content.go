package pipeline

import (
	"sort"
	"strings"
	"unicode"
)

const (
	defaultCategoryWeight = 0.6
	defaultNameWeight     = 0.4

	// maxSkillLevel 技能等级上限
	maxSkillLevel = 5.0

	// familiarityWeight 用户已有技能熟悉度的加成系数
	familiarityWeight = 0.1

	defaultTypePrior = 0.85
)

// typePriors 资源形态先验权重
var typePriors = map[string]float64{
	"course": 1.0,
	"video":  0.9,
	"book":   0.8,
}

// ContentConfig 内容管线权重配置，零值字段取默认值
type ContentConfig struct {
	CategoryWeight float64
	NameWeight     float64
}

// ContentPipeline 基于内容的默认排序管线
// 技能相似度 = 类目匹配与名称分词 Jaccard 的加权和，权重归一化到 1
type ContentPipeline struct {
	categoryWeight float64
	nameWeight     float64
}

// NewContentPipeline 创建内容管线
func NewContentPipeline(cfg ContentConfig) *ContentPipeline {
	// 1. 填充默认权重
	if cfg.CategoryWeight == 0 {
		cfg.CategoryWeight = defaultCategoryWeight
	}
	if cfg.NameWeight == 0 {
		cfg.NameWeight = defaultNameWeight
	}

	// 2. 权重归一化
	total := cfg.CategoryWeight + cfg.NameWeight
	return &ContentPipeline{
		categoryWeight: cfg.CategoryWeight / total,
		nameWeight:     cfg.NameWeight / total,
	}
}

// BuildSkillMapping 构建技能 ID -> 矩阵下标映射，顺序与输入一致
func (p *ContentPipeline) BuildSkillMapping(skills []Skill) map[string]int {
	mapping := make(map[string]int, len(skills))
	for i, s := range skills {
		mapping[s.ID] = i
	}
	return mapping
}

// BuildSimilarityMatrix 构建技能相似度矩阵
// 对角线恒为 1.0，矩阵对称，所有取值落在 [0,1]
func (p *ContentPipeline) BuildSimilarityMatrix(skills []Skill) [][]float64 {
	n := len(skills)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}

	tokens := make([][]string, n)
	for i, s := range skills {
		tokens[i] = tokenize(s.Name)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := p.similarity(skills[i], skills[j], tokens[i], tokens[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}

// similarity 两个技能的相似度
func (p *ContentPipeline) similarity(a, b Skill, aTokens, bTokens []string) float64 {
	score := 0.0

	// 类目缺失时不计类目分，避免空串互相匹配
	if a.Category != "" && b.Category != "" && strings.EqualFold(a.Category, b.Category) {
		score += p.categoryWeight
	}
	score += p.nameWeight * jaccard(aTokens, bTokens)
	return score
}

// PrepareResourceFeatures 预计算资源特征
func (p *ContentPipeline) PrepareResourceFeatures(resources []Resource) ResourceFeatures {
	features := make(ResourceFeatures, len(resources))
	for _, r := range resources {
		prior, ok := typePriors[strings.ToLower(r.Type)]
		if !ok {
			prior = defaultTypePrior
		}
		features[r.ID] = ResourceFeature{
			TypePrior:   prior,
			TitleTokens: tokenize(r.Title),
		}
	}
	return features
}

// Rank 对资源打分并按分数降序返回
// 对齐度 = 资源技能与各差距技能相似度的加权均值，差距越大、欠缺越多权重越高
func (p *ContentPipeline) Rank(resources []Resource, userSkills []UserSkill, gaps []SkillGap,
	features ResourceFeatures, similarity [][]float64, mapping map[string]int) []ScoredResource {

	// 1. 用户技能等级索引
	levels := make(map[string]int, len(userSkills))
	for _, us := range userSkills {
		levels[us.SkillID] = us.Level
	}

	scored := make([]ScoredResource, 0, len(resources))
	for _, r := range resources {
		// 2. 对齐度：逐差距累计 相似度 x 差距 x 欠缺系数
		alignment := 0.0
		reason := ""
		resIdx, mapped := mapping[r.SkillID]
		for _, gap := range gaps {
			sim := 0.0
			if r.SkillID == gap.SkillID {
				sim = 1.0
				if reason == "" {
					reason = "Directly addresses your goal: " + skillLabel(r, gap)
				}
			} else if mapped {
				if gapIdx, ok := mapping[gap.SkillID]; ok {
					sim = similarity[resIdx][gapIdx]
				}
			}
			deficit := float64(gap.TargetLevel - gap.CurrentLevel)
			if deficit < 0 {
				deficit = 0
			}
			alignment += sim * gap.Gap * (1 + deficit/maxSkillLevel)
		}
		if len(gaps) > 0 {
			alignment /= float64(len(gaps))
		}

		// 3. 形态先验与熟悉度加成
		feature, ok := features[r.ID]
		prior := feature.TypePrior
		if !ok {
			prior = defaultTypePrior
		}
		familiarity := familiarityWeight * float64(levels[r.SkillID]) / maxSkillLevel

		score := alignment*prior + familiarity
		scored = append(scored, ScoredResource{
			Resource: r,
			Score:    score,
			Breakdown: map[string]float64{
				"alignment":   alignment,
				"type_prior":  prior,
				"familiarity": familiarity,
			},
			Reason: reason,
		})
	}

	// 4. 分数降序，同分保持输入顺序
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// skillLabel 推荐理由里的技能展示名，优先技能名称
func skillLabel(r Resource, gap SkillGap) string {
	if r.Skill != nil && r.Skill.Name != "" {
		return r.Skill.Name
	}
	return gap.SkillID
}

// tokenize 标题/名称分词：转小写，按非字母数字切分
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// jaccard 分词集合的 Jaccard 相似度
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
