package framework

import "time"

// ConsumerConfig Consumer 配置
type ConsumerConfig struct {
	QueueName    string        // 队列名称
	Concurrency  int           // 消费协程数（每协程内部严格串行）
	Rate         time.Duration // 速率限制（单协程最小消费间隔，0 不限速）
	ErrorBackoff time.Duration // 失败退避时间
}
