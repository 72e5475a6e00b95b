package business

import (
	"context"

	"optima/recsync/pkg/entity"
	"optima/recsync/pkg/errorutil"
	"optima/recsync/pkg/model"
)

// 实体缺失哨兵错误
// errors.Is 可穿透 fmt.Errorf %w 链路识别，消费侧据此转死信
var (
	ErrUserNotFound = errorutil.NotFound("user not found")
	ErrIDPNotFound  = errorutil.NotFound("idp not found")
)

// RecommendInput 单次推荐任务输入
type RecommendInput struct {
	JobID  string // 任务 ID（可为空）
	UserID string // 用户 ID
	IDPID  string // IDP ID
}

// Store 推荐任务依赖的数据访问接口
type Store interface {
	// GetUserByID 获取用户，不存在时返回 (nil, nil)
	GetUserByID(ctx context.Context, userID string) (*entity.User, error)

	// GetIDPByID 获取发展计划，不存在时返回 (nil, nil)
	GetIDPByID(ctx context.Context, idpID string) (*entity.IDP, error)

	// ListSkills 获取全量技能
	ListSkills(ctx context.Context) ([]entity.Skill, error)

	// ListResources 获取全量资源
	ListResources(ctx context.Context) ([]entity.Resource, error)

	// UpdateRecommendations 推荐结果与状态原子落库
	UpdateRecommendations(ctx context.Context, idpID string, recs []model.SuggestedResource, status string) error

	// UpdateIDPStatus 仅更新状态
	UpdateIDPStatus(ctx context.Context, idpID string, status string) error
}

// Notifier 推荐完成通知接口
type Notifier interface {
	PublishRecommendationComplete(ctx context.Context, channel string, notification *model.RecommendationNotification) error
}
