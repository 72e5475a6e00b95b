package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"optima/recsync/pkg/model"
)

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client *redis.Client
}

// NewPubSub 基于已有连接创建 PubSub 实例
func NewPubSub(client *redis.Client) *PubSub {
	return &PubSub{
		client: client,
	}
}

// PublishRecommendationComplete 发布推荐完成通知
// 参数：
//   - ctx: 上下文
//   - channel: Redis 频道名称（建议：idp_recommendation_complete）
//   - notification: 通知消息
func (p *PubSub) PublishRecommendationComplete(
	ctx context.Context,
	channel string,
	notification *model.RecommendationNotification,
) error {
	// 序列化通知消息
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	// 发布到 Redis 频道
	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe 订阅 Redis 频道（用于测试）
func (p *PubSub) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return p.client.Subscribe(ctx, channel)
}
