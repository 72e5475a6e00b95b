package worker

import (
	"context"

	"optima/recsync/internal/framework"
	"optima/recsync/pkg/logger"
)

// Worker 接口
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance Worker 实例
type WorkerInstance struct {
	ctx        context.Context
	name       string
	consumer   *framework.Consumer
	shutdownCh chan struct{}
	logger     logger.Logger
}

// NewWorkerInstance 创建 Worker 实例
func NewWorkerInstance(
	ctx context.Context,
	name string,
	consumerCfg *framework.ConsumerConfig,
	source framework.JobSource,
	handler framework.JobHandler, // 注入 GetProcess
	log logger.Logger,
) (Worker, error) {
	consumer := framework.NewConsumer(consumerCfg, source, handler, log)

	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		consumer:   consumer,
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// Start 启动 Worker
func (w *WorkerInstance) Start() {
	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)

	// 1. 启动消费循环
	w.consumer.Start(w.ctx)

	// 2. 阻塞，等待关闭指令
	<-w.shutdownCh
}

// Shutdown 优雅退出（两步链路）
func (w *WorkerInstance) Shutdown() {
	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	// 【第 1 步】停止取新消息
	w.consumer.Stop()

	// 【第 2 步】等待在途消息跑完处理与确认
	w.consumer.Wait()

	close(w.shutdownCh)
	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}
