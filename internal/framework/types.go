package framework

import "time"

// Message 消息结构（框架内部流转）
// Data 是队列里的原始字节，同时也是确认（按值删除）时的匹配键
type Message struct {
	Queue    string    // 队列名称
	Data     []byte    // 原始消息字节
	Received time.Time // 取出时间
}

// Outcome 处理结论，决定消息的确认方式
type Outcome int

const (
	// OutcomeOK 处理成功，确认消息
	OutcomeOK Outcome = iota

	// OutcomeMalformed 消息不可解析（毒消息），直接从暂存区清除
	OutcomeMalformed

	// OutcomeMissingEntity 依赖实体缺失（重试无意义），转死信后确认
	OutcomeMissingEntity

	// OutcomePipelineError 基础设施或处理链路故障，不确认，留在暂存区等恢复
	OutcomePipelineError
)

// String 结论名称
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeMissingEntity:
		return "missing_entity"
	case OutcomePipelineError:
		return "pipeline_error"
	default:
		return "unknown"
	}
}

// Result 单条消息的处理结果
type Result struct {
	Outcome Outcome // 处理结论
	Err     error   // 失败原因（OK 时为 nil）
}
