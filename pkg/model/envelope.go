package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope 队列消息信封（wire 格式）
// 序列化后的原始字节是确认（LREM）时的匹配键，解码后不可重新编码再确认
type Envelope struct {
	JobID      string        `json:"jobId,omitempty"`      // 任务 ID（生产端打标，空则 Encode 时生成）
	Data       *EnvelopeData `json:"data"`                 // 业务数据
	EnqueuedAt int64         `json:"enqueuedAt,omitempty"` // 入队时间（Unix 秒，恢复扫描判断时效用）
}

// EnvelopeData 信封业务数据
type EnvelopeData struct {
	UserID string `json:"userId"` // 用户 ID
	IDPID  string `json:"idpId"`  // IDP ID
}

// DecodeEnvelope 解码队列消息
// 解析失败、data 缺失、userId/idpId 为空均视为不可解析消息（毒消息）
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if env.Data == nil {
		return nil, fmt.Errorf("invalid envelope: data is nil")
	}
	if env.Data.UserID == "" {
		return nil, fmt.Errorf("invalid envelope: userId is required")
	}
	if env.Data.IDPID == "" {
		return nil, fmt.Errorf("invalid envelope: idpId is required")
	}

	return &env, nil
}

// Encode 编码信封（生产端使用）
// JobID 为空则生成 uuid，EnqueuedAt 为零则取当前时间
func (e *Envelope) Encode() ([]byte, error) {
	if e.Data == nil {
		return nil, fmt.Errorf("invalid envelope: data is nil")
	}

	if e.JobID == "" {
		e.JobID = uuid.New().String()
	}
	if e.EnqueuedAt == 0 {
		e.EnqueuedAt = time.Now().Unix()
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("json marshal failed: %w", err)
	}

	return raw, nil
}

// Age 距离入队的时长（EnqueuedAt 未打标返回 0）
func (e *Envelope) Age(now time.Time) time.Duration {
	if e.EnqueuedAt <= 0 {
		return 0
	}
	return now.Sub(time.Unix(e.EnqueuedAt, 0))
}
