package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Recovery RecoveryConfig `mapstructure:"recovery"`
	Workers  []WorkerConfig `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MetricsConfig 指标暴露配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"` // 如 :9100
}

// NotifyConfig 完成通知配置
type NotifyConfig struct {
	Channel string `mapstructure:"channel"` // Redis 发布频道
}

// RecoveryConfig 滞留任务恢复扫描配置
type RecoveryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"` // 扫描周期
	MinAge   time.Duration `mapstructure:"min_age"`  // 入队超过该时长才重投
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name      string         `mapstructure:"name"`
	QueueName string         `mapstructure:"queue_name"`
	Handler   string         `mapstructure:"handler"` // HandlerMap 中注册的处理器名
	Consumer  ConsumerConfig `mapstructure:"consumer"`
}

// ConsumerConfig 消费循环配置
type ConsumerConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发消费循环数
	Rate         time.Duration `mapstructure:"rate"`          // 消费限速（两次出队的最小间隔，0 不限速）
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// 默认值
const (
	defaultNotifyChannel    = "idp_recommendation_complete"
	defaultMetricsAddr      = ":9100"
	defaultErrorBackoff     = 1 * time.Second
	defaultRecoveryInterval = 1 * time.Minute
	defaultRecoveryMinAge   = 10 * time.Minute
)

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults 补全可选字段默认值
func (c *Config) applyDefaults() {
	if c.Notify.Channel == "" {
		c.Notify.Channel = defaultNotifyChannel
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = defaultMetricsAddr
	}
	if c.Recovery.Interval <= 0 {
		c.Recovery.Interval = defaultRecoveryInterval
	}
	if c.Recovery.MinAge <= 0 {
		c.Recovery.MinAge = defaultRecoveryMinAge
	}

	for i := range c.Workers {
		w := &c.Workers[i]
		if w.Consumer.Threads <= 0 {
			w.Consumer.Threads = 1
		}
		if w.Consumer.ErrorBackoff <= 0 {
			w.Consumer.ErrorBackoff = defaultErrorBackoff
		}
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	for _, w := range c.Workers {
		if w.Name == "" {
			return fmt.Errorf("worker name is required")
		}
		if w.QueueName == "" {
			return fmt.Errorf("worker %s: queue_name is required", w.Name)
		}
		if w.Handler == "" {
			return fmt.Errorf("worker %s: handler is required", w.Name)
		}
	}
	return nil
}
