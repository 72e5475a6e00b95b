package business

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"optima/recsync/pkg/entity"
	"optima/recsync/pkg/errorutil"
	"optima/recsync/pkg/logger"
	"optima/recsync/pkg/model"
	"optima/recsync/pkg/pipeline"
)

const (
	// maxRecommendations 落库的推荐条数上限
	maxRecommendations = 10

	// 目标缺省字段的默认值
	defaultGap          = 0.5
	defaultCurrentLevel = 1
	defaultTargetLevel  = 5

	// defaultReason 管线未给出理由时的兜底文案
	defaultReason = "Recommended based on your goals"
)

// RecommendService 推荐服务
// 职责：解析实体 → 组装管线输入 → 排序 → 结果落库 → 发布完成通知
type RecommendService struct {
	store    Store
	notifier Notifier
	pipe     pipeline.Pipeline
	channel  string
	log      logger.Logger
}

// NewRecommendService 创建推荐服务实例
func NewRecommendService(
	store Store,
	notifier Notifier,
	pipe pipeline.Pipeline,
	channel string,
	log logger.Logger,
) *RecommendService {
	return &RecommendService{
		store:    store,
		notifier: notifier,
		pipe:     pipe,
		channel:  channel,
		log:      log,
	}
}

// Execute 执行一次推荐计算并落库
// 哨兵错误（ErrUserNotFound/ErrIDPNotFound）表示重试无意义的终态失败，
// 其余错误未分类时默认可重试
func (s *RecommendService) Execute(ctx context.Context, input *RecommendInput) error {
	// 1. 解析实体
	user, err := s.store.GetUserByID(ctx, input.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	idp, err := s.store.GetIDPByID(ctx, input.IDPID)
	if err != nil {
		return fmt.Errorf("get idp: %w", err)
	}

	if idp == nil {
		return fmt.Errorf("idp %s: %w", input.IDPID, ErrIDPNotFound)
	}
	if user == nil {
		// IDP 存在而用户缺失：计划标记为失败，调用方决定消息去向
		if err := s.store.UpdateIDPStatus(ctx, input.IDPID, entity.IDPStatusFailed); err != nil {
			s.log.Warnf(ctx, "[RecommendService] Mark idp failed error: %v", err)
		}
		return fmt.Errorf("user %s: %w", input.UserID, ErrUserNotFound)
	}

	// 2. 拉取技能与资源全集
	skills, err := s.store.ListSkills(ctx)
	if err != nil {
		return fmt.Errorf("list skills: %w", err)
	}
	resources, err := s.store.ListResources(ctx)
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}

	// 3. 解析 JSON 列
	userSkills, err := parseUserSkills(user.Skills)
	if err != nil {
		return fmt.Errorf("user %s: %w", input.UserID, err)
	}
	goals, err := parseGoals(idp.Goals)
	if err != nil {
		return fmt.Errorf("idp %s: %w", input.IDPID, err)
	}

	// 4. 组装管线输入
	pipeSkills := toPipelineSkills(skills)
	pipeResources := enrichResources(resources, pipeSkills)
	pipeUserSkills := toPipelineUserSkills(userSkills)
	gaps := deriveGaps(goals)

	// 5. 运行排序管线
	mapping := s.pipe.BuildSkillMapping(pipeSkills)
	matrix := s.pipe.BuildSimilarityMatrix(pipeSkills)
	features := s.pipe.PrepareResourceFeatures(pipeResources)
	ranked := s.pipe.Rank(pipeResources, pipeUserSkills, gaps, features, matrix, mapping)

	// 6. 截取前 N 条，结果与状态原子落库
	recs := formatRecommendations(ranked)
	if err := s.store.UpdateRecommendations(ctx, input.IDPID, recs, entity.IDPStatusActive); err != nil {
		return fmt.Errorf("update recommendations: %w", err)
	}

	s.log.Infof(ctx, "[RecommendService] Recommendations updated: idp=%s count=%d", input.IDPID, len(recs))

	// 7. 发布完成通知（尽力而为，失败不影响任务结论）
	s.notify(ctx, input, len(recs))

	return nil
}

// notify 发布推荐完成通知
func (s *RecommendService) notify(ctx context.Context, input *RecommendInput, count int) {
	if s.notifier == nil || s.channel == "" {
		return
	}

	notification := &model.RecommendationNotification{
		IDPID:         input.IDPID,
		UserID:        input.UserID,
		JobID:         input.JobID,
		Status:        model.NotifyStatusActive,
		ResourceCount: count,
		Timestamp:     time.Now().Unix(),
	}
	if err := s.notifier.PublishRecommendationComplete(ctx, s.channel, notification); err != nil {
		s.log.Warnf(ctx, "[RecommendService] Publish notification error: %v", err)
	}
}

// parseUserSkills 解析 users.skills JSON 列，空列视为无技能
func parseUserSkills(raw datatypes.JSON) ([]model.UserSkill, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var skills []model.UserSkill
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil, errorutil.NonRetriable(fmt.Sprintf("invalid skills json: %v", err))
	}
	return skills, nil
}

// parseGoals 解析 idps.goals JSON 列，空列视为无目标
func parseGoals(raw datatypes.JSON) ([]model.Goal, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var goals []model.Goal
	if err := json.Unmarshal(raw, &goals); err != nil {
		return nil, errorutil.NonRetriable(fmt.Sprintf("invalid goals json: %v", err))
	}
	return goals, nil
}

// toPipelineSkills 实体技能转管线输入
func toPipelineSkills(skills []entity.Skill) []pipeline.Skill {
	out := make([]pipeline.Skill, len(skills))
	for i, s := range skills {
		out[i] = pipeline.Skill{
			ID:       s.ID,
			Name:     s.Name,
			Category: s.Category,
		}
	}
	return out
}

// toPipelineUserSkills 用户技能转管线输入
func toPipelineUserSkills(skills []model.UserSkill) []pipeline.UserSkill {
	out := make([]pipeline.UserSkill, len(skills))
	for i, s := range skills {
		out[i] = pipeline.UserSkill{
			SkillID: s.SkillID,
			Level:   s.Level,
		}
	}
	return out
}

// enrichResources 实体资源转管线输入，裸技能 ID 引用补全为完整技能
func enrichResources(resources []entity.Resource, skills []pipeline.Skill) []pipeline.Resource {
	skillMap := make(map[string]*pipeline.Skill, len(skills))
	for i := range skills {
		skillMap[skills[i].ID] = &skills[i]
	}

	out := make([]pipeline.Resource, 0, len(resources))
	for _, r := range resources {
		pr := pipeline.Resource{
			ID:      r.ID,
			Title:   r.Title,
			Type:    r.Type,
			SkillID: r.SkillID,
		}
		if s, ok := skillMap[r.SkillID]; ok {
			pr.Skill = s
		}
		out = append(out, pr)
	}
	return out
}

// deriveGaps 由发展目标推导技能差距，缺省字段取默认值
func deriveGaps(goals []model.Goal) []pipeline.SkillGap {
	gaps := make([]pipeline.SkillGap, 0, len(goals))
	for _, g := range goals {
		ref := g.SkillRef()
		if ref == "" {
			continue
		}

		gap := pipeline.SkillGap{
			SkillID:      ref,
			Gap:          defaultGap,
			CurrentLevel: defaultCurrentLevel,
			TargetLevel:  defaultTargetLevel,
		}
		if g.Gap != nil {
			gap.Gap = *g.Gap
		}
		if g.CurrentLevel != nil {
			gap.CurrentLevel = *g.CurrentLevel
		}
		if g.TargetLevel != nil {
			gap.TargetLevel = *g.TargetLevel
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

// formatRecommendations 截取前 N 条并整理为落库结构
func formatRecommendations(ranked []pipeline.ScoredResource) []model.SuggestedResource {
	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}

	recs := make([]model.SuggestedResource, 0, len(ranked))
	for _, item := range ranked {
		reason := item.Reason
		if reason == "" {
			reason = defaultReason
		}
		recs = append(recs, model.SuggestedResource{
			Resource: item.Resource.ID,
			Score:    item.Score,
			Reason:   reason,
		})
	}
	return recs
}
