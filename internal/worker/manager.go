package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"optima/recsync/internal/business"
	"optima/recsync/internal/domains"
	"optima/recsync/internal/framework"
	"optima/recsync/pkg/config"
	"optima/recsync/pkg/infra/mysql"
	redisinfra "optima/recsync/pkg/infra/redis"
	"optima/recsync/pkg/logger"
	"optima/recsync/pkg/pipeline"
	"optima/recsync/pkg/queue"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx         context.Context
	cfg         *config.Config
	redisClient *redis.Client
	dao         *mysql.RecommendDAO
	service     *business.RecommendService
	workers     []Worker
	sweepers    []*Sweeper
	closing     *atomic.Bool
	shutdownCh  chan struct{}
	wg          sync.WaitGroup
	logger      logger.Logger
}

// NewManagerInstance 创建 Manager：装配基础设施与业务依赖
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	// 初始化 Redis 客户端（队列与通知共用连接池）
	redisClient, err := redisinfra.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	// 初始化 MySQL DAO
	dao, err := mysql.NewRecommendDAO(cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommend dao: %w", err)
	}

	// 装配推荐服务
	pubsub := redisinfra.NewPubSub(redisClient)
	service := business.NewRecommendService(
		dao,
		pubsub,
		pipeline.NewContentPipeline(pipeline.ContentConfig{}),
		cfg.Notify.Channel,
		log,
	)

	log.Infof(ctx, "[Manager] Initialized with notify_channel: %s", cfg.Notify.Channel)

	return &ManagerInstance{
		ctx:         ctx,
		cfg:         cfg,
		redisClient: redisClient,
		dao:         dao,
		service:     service,
		closing:     atomic.NewBool(false),
		shutdownCh:  make(chan struct{}),
		workers:     make([]Worker, 0),
		logger:      log,
	}, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	// 3. 启动恢复扫描
	for _, sweeper := range m.sweepers {
		sweeper.Start(m.ctx)
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 4. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		// 1. 停止恢复扫描
		for _, sweeper := range m.sweepers {
			sweeper.Stop()
		}
		for _, sweeper := range m.sweepers {
			sweeper.Wait()
		}

		// 2. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 3. 等待所有 Worker 退出
		m.wg.Wait()

		// 4. 释放基础设施连接
		if err := m.dao.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] Close dao error: %v", err)
		}
		if err := m.redisClient.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] Close redis error: %v", err)
		}

		// 5. 关闭信号通道
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker 与恢复扫描器
func (m *ManagerInstance) loadWorkers() error {
	sweptQueues := make(map[string]bool)

	// 遍历配置中的所有 Worker
	for _, workerCfg := range m.cfg.Workers {
		// 创建消费配置
		consumerCfg := &framework.ConsumerConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Consumer.Threads,
			Rate:         workerCfg.Consumer.Rate,
			ErrorBackoff: workerCfg.Consumer.ErrorBackoff,
		}

		// 创建队列适配器
		q := queue.NewRedisQueue(m.redisClient, workerCfg.QueueName)

		// 获取处理函数
		factory, ok := domains.HandlerMap[workerCfg.Handler]
		if !ok {
			return fmt.Errorf("handler not found: %s", workerCfg.Handler)
		}
		handler := factory(&domains.Deps{
			Log:              m.logger,
			RecommendService: m.service,
		})

		// 创建 Worker 实例
		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			consumerCfg,
			q, // JobSource
			handler,
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)

		// 每个队列至多一个恢复扫描器
		if m.cfg.Recovery.Enabled && !sweptQueues[workerCfg.QueueName] {
			sweptQueues[workerCfg.QueueName] = true
			m.sweepers = append(m.sweepers,
				NewSweeper(q, m.cfg.Recovery.Interval, m.cfg.Recovery.MinAge, m.logger))
		}
	}

	return nil
}
