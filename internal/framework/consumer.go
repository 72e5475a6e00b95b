package framework

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"optima/recsync/pkg/metrics"
)

// Consumer 消费者：取出 -> 处理 -> 确认 的串行主循环
// 每个协程一次只持有一条消息，确认落地前不取下一条
type Consumer struct {
	cfg        *ConsumerConfig
	source     JobSource
	handler    JobHandler
	logger     Logger
	limiter    *rate.Limiter
	cancelFunc context.CancelFunc // 取消函数
	wg         sync.WaitGroup
}

// NewConsumer 创建消费者
func NewConsumer(cfg *ConsumerConfig, source JobSource, handler JobHandler, logger Logger) *Consumer {
	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Rate), 1)
	}

	return &Consumer{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger,
		limiter: limiter,
	}
}

// Start 启动消费循环
func (c *Consumer) Start(parentCtx context.Context) error {
	// 核心：从父 Context 派生子 Context
	ctx, cancel := context.WithCancel(parentCtx)
	c.cancelFunc = cancel

	c.logger.Infof(ctx, "[Consumer] Starting with %d workers for queue: %s",
		c.cfg.Concurrency, c.cfg.QueueName)

	for i := 0; i < c.cfg.Concurrency; i++ {
		workerID := i
		c.wg.Add(1)
		go c.loop(ctx, workerID)
	}

	return nil
}

// Stop 停止消费（不再取新消息，在途消息跑完确认流程）
func (c *Consumer) Stop() {
	c.logger.Infof(context.Background(), "[Consumer] Stopping...")
	if c.cancelFunc != nil {
		c.cancelFunc() // 触发 ctx.Done()
	}
}

// Wait 等待所有消费协程退出
func (c *Consumer) Wait() {
	c.wg.Wait() // 关键：确保所有消费协程退出
	c.logger.Infof(context.Background(), "[Consumer] All workers exited")
}

// loop 单协程消费循环
func (c *Consumer) loop(ctx context.Context, workerID int) {
	defer c.wg.Done()

	ctx = context.WithValue(ctx, "worker_id", workerID)
	ctx = context.WithValue(ctx, "queue", c.cfg.QueueName)
	c.logger.Infof(ctx, "[Consumer-%d] Started", workerID)

	for {
		// 1. 退出检查
		select {
		case <-ctx.Done():
			c.logger.Infof(ctx, "[Consumer-%d] Context cancelled, exiting", workerID)
			return
		default:
		}

		// 2. 速率控制
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				c.logger.Infof(ctx, "[Consumer-%d] Context cancelled, exiting", workerID)
				return
			}
		}

		// 3. 阻塞取出并暂存
		raw, err := c.source.DequeueAndStage(ctx)
		if err != nil {
			// 容错：网络抖动不退出，只记录日志
			select {
			case <-ctx.Done():
				c.logger.Infof(ctx, "[Consumer-%d] Context cancelled, exiting", workerID)
				return
			default:
				c.logger.Warnf(ctx, "[Consumer-%d] Dequeue error: %v, retrying...", workerID, err)
				c.backoff(ctx)
				continue
			}
		}

		// nil 消息（超时未拉到），继续循环
		if raw == nil {
			continue
		}

		metrics.JobsConsumed.WithLabelValues(c.cfg.QueueName).Inc()

		// 4. 处理消息
		// 处理与确认使用仅携带值的 Context，取消只拦截取新消息，在途消息完整跑完
		msg := &Message{Queue: c.cfg.QueueName, Data: raw, Received: time.Now()}
		result := c.handleOne(context.WithoutCancel(ctx), msg)

		// 5. 按结论确认
		c.settle(ctx, workerID, msg, result)
	}
}

// handleOne 处理单条消息并记录耗时
func (c *Consumer) handleOne(ctx context.Context, msg *Message) *Result {
	start := time.Now()
	result := c.handler(ctx, msg)
	metrics.JobDuration.WithLabelValues(msg.Queue).Observe(time.Since(start).Seconds())

	if result == nil {
		return &Result{Outcome: OutcomePipelineError, Err: fmt.Errorf("handler returned nil result")}
	}
	return result
}

// settle 按处理结论落实确认动作
//
//	OK            -> 确认
//	Malformed     -> 清除（确认）
//	MissingEntity -> 转死信 + 确认，转移失败则按滞留处理
//	PipelineError -> 不确认，消息留在暂存区，退避后继续
func (c *Consumer) settle(ctx context.Context, workerID int, msg *Message, result *Result) {
	ackCtx := context.WithoutCancel(ctx)

	switch result.Outcome {
	case OutcomeOK:
		if err := c.source.Acknowledge(ackCtx, msg.Data); err != nil {
			c.logger.Errorf(ctx, "[Consumer-%d] Ack failed: %v", workerID, err)
			return
		}
		metrics.JobsSucceeded.WithLabelValues(msg.Queue).Inc()

	case OutcomeMalformed:
		c.logger.Warnf(ctx, "[Consumer-%d] Purging malformed message: %v", workerID, result.Err)
		if err := c.source.Acknowledge(ackCtx, msg.Data); err != nil {
			c.logger.Errorf(ctx, "[Consumer-%d] Purge failed: %v", workerID, err)
			return
		}
		metrics.JobsPurged.WithLabelValues(msg.Queue).Inc()

	case OutcomeMissingEntity:
		c.logger.Warnf(ctx, "[Consumer-%d] Dead-lettering message: %v", workerID, result.Err)
		if err := c.source.Reroute(ackCtx, msg.Data); err != nil {
			// 转移失败不确认，消息留在暂存区等恢复
			c.logger.Errorf(ctx, "[Consumer-%d] Reroute failed, message parked: %v", workerID, err)
			c.backoff(ctx)
			return
		}
		if err := c.source.Acknowledge(ackCtx, msg.Data); err != nil {
			c.logger.Errorf(ctx, "[Consumer-%d] Ack after reroute failed: %v", workerID, err)
			return
		}
		metrics.JobsDeadLettered.WithLabelValues(msg.Queue).Inc()

	case OutcomePipelineError:
		c.logger.Errorf(ctx, "[Consumer-%d] Processing failed, message parked: %v", workerID, result.Err)
		metrics.JobsParked.WithLabelValues(msg.Queue).Inc()
		c.backoff(ctx)
	}
}

// backoff 失败退避，等待期间可被取消打断
func (c *Consumer) backoff(ctx context.Context) {
	if c.cfg.ErrorBackoff <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.ErrorBackoff):
	}
}
