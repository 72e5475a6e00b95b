package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"optima/recsync/pkg/model"
)

const (
	processingSuffix = ":processing"
	deadSuffix       = ":dead"
)

// ProcessingName 暂存列表名
func ProcessingName(queue string) string {
	return queue + processingSuffix
}

// DeadName 死信列表名
func DeadName(queue string) string {
	return queue + deadSuffix
}

// RedisQueue 基于 Redis 双列表的可靠队列
// 生产者 LPUSH 主列表，消费侧 BRPOPLPUSH 原子转移到暂存列表，确认时按值删除
type RedisQueue struct {
	client     *redis.Client
	name       string
	processing string
	dead       string
}

// NewRedisQueue 创建队列适配器，列表名由主队列名派生
func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{
		client:     client,
		name:       name,
		processing: ProcessingName(name),
		dead:       DeadName(name),
	}
}

// Name 主队列名
func (q *RedisQueue) Name() string {
	return q.name
}

// Enqueue 消息入队（生产端，推入主列表队首）
func (q *RedisQueue) Enqueue(ctx context.Context, raw []byte) error {
	if err := q.client.LPush(ctx, q.name, raw).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.name, err)
	}
	return nil
}

// DequeueAndStage 阻塞取出一条消息并原子转移到暂存列表
// 无限期阻塞，依赖 ctx 取消退出
func (q *RedisQueue) DequeueAndStage(ctx context.Context) ([]byte, error) {
	raw, err := q.client.BRPopLPush(ctx, q.name, q.processing, 0).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("brpoplpush %s: %w", q.name, err)
	}
	return raw, nil
}

// Acknowledge 从暂存列表删除首个值相等的条目
// 条目已被恢复流程移走时删除数为 0，不视为错误
func (q *RedisQueue) Acknowledge(ctx context.Context, raw []byte) error {
	if err := q.client.LRem(ctx, q.processing, 1, raw).Err(); err != nil {
		return fmt.Errorf("lrem %s: %w", q.processing, err)
	}
	return nil
}

// Reroute 把消息推入死信列表，调用方随后仍需 Acknowledge
func (q *RedisQueue) Reroute(ctx context.Context, raw []byte) error {
	if err := q.client.LPush(ctx, q.dead, raw).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.dead, err)
	}
	return nil
}

// PendingLen 主列表长度
func (q *RedisQueue) PendingLen(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

// ProcessingLen 暂存列表长度
func (q *RedisQueue) ProcessingLen(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.processing).Result()
}

// RecoverStale 把暂存列表里滞留超过 minAge 的消息搬回主列表队首
// 先 RPUSH 再 LREM，宕机只会导致重复消费而非丢失
func (q *RedisQueue) RecoverStale(ctx context.Context, minAge time.Duration, now time.Time) (int, error) {
	entries, err := q.client.LRange(ctx, q.processing, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("lrange %s: %w", q.processing, err)
	}

	recovered := 0
	for _, entry := range entries {
		raw := []byte(entry)
		if !isStale(raw, now, minAge) {
			continue
		}
		if err := q.client.RPush(ctx, q.name, raw).Err(); err != nil {
			return recovered, fmt.Errorf("rpush %s: %w", q.name, err)
		}
		if err := q.client.LRem(ctx, q.processing, 1, raw).Err(); err != nil {
			return recovered, fmt.Errorf("lrem %s: %w", q.processing, err)
		}
		recovered++
	}
	return recovered, nil
}

// isStale 判断暂存条目是否滞留过久
// 无法解码或未带入队时间戳的条目无从判断年龄，一律跳过
func isStale(raw []byte, now time.Time, minAge time.Duration) bool {
	env, err := model.DecodeEnvelope(raw)
	if err != nil || env.EnqueuedAt == 0 {
		return false
	}
	return env.Age(now) >= minAge
}
