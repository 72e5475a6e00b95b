package worker

import (
	"context"
	"sync"
	"time"

	"optima/recsync/pkg/logger"
	"optima/recsync/pkg/metrics"
)

// StaleRecoverer 恢复扫描依赖的队列能力
type StaleRecoverer interface {
	Name() string
	RecoverStale(ctx context.Context, minAge time.Duration, now time.Time) (int, error)
	PendingLen(ctx context.Context) (int64, error)
	ProcessingLen(ctx context.Context) (int64, error)
}

// Sweeper 恢复扫描器
// 周期扫描暂存列表，把滞留超过 minAge 的消息搬回主队列重投
// 搬运次序保证至多重复消费，不会丢失
type Sweeper struct {
	queue      StaleRecoverer
	interval   time.Duration
	minAge     time.Duration
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewSweeper 创建恢复扫描器
func NewSweeper(queue StaleRecoverer, interval, minAge time.Duration, log logger.Logger) *Sweeper {
	return &Sweeper{
		queue:    queue,
		interval: interval,
		minAge:   minAge,
		logger:   log,
	}
}

// Start 启动周期扫描
func (s *Sweeper) Start(parentCtx context.Context) {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop 停止扫描
func (s *Sweeper) Stop() {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}

// Wait 等待扫描协程退出
func (s *Sweeper) Wait() {
	s.wg.Wait()
}

// run 扫描循环
func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	s.logger.Infof(ctx, "[Sweeper] Started: queue=%s interval=%v min_age=%v",
		s.queue.Name(), s.interval, s.minAge)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infof(ctx, "[Sweeper] Context cancelled, exiting")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce 执行一轮扫描并采样队列长度
func (s *Sweeper) sweepOnce(ctx context.Context) {
	recovered, err := s.queue.RecoverStale(ctx, s.minAge, time.Now())
	if err != nil {
		s.logger.Warnf(ctx, "[Sweeper] Recover error: queue=%s err=%v", s.queue.Name(), err)
	}
	if recovered > 0 {
		metrics.JobsRecovered.WithLabelValues(s.queue.Name()).Add(float64(recovered))
		s.logger.Infof(ctx, "[Sweeper] Recovered %d stale jobs: queue=%s", recovered, s.queue.Name())
	}

	if n, err := s.queue.PendingLen(ctx); err == nil {
		metrics.QueuePending.WithLabelValues(s.queue.Name()).Set(float64(n))
	}
	if n, err := s.queue.ProcessingLen(ctx); err == nil {
		metrics.QueueProcessing.WithLabelValues(s.queue.Name()).Set(float64(n))
	}
}
