package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"optima/recsync/pkg/config"
	redisinfra "optima/recsync/pkg/infra/redis"
	"optima/recsync/pkg/model"
	"optima/recsync/pkg/queue"
)

var (
	configPath = flag.String("config", "./config/worker.yaml", "配置文件路径")
	userID     = flag.String("user", "", "用户 ID")
	idpID      = flag.String("idp", "", "IDP ID")
	count      = flag.Int("count", 1, "投递数量")
)

// 手工投递推荐任务到队列（联调/压测用）
func main() {
	flag.Parse()

	if *userID == "" || *idpID == "" {
		fmt.Println("usage: enqueue -user <user_id> -idp <idp_id> [-count N] [-config path]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.Workers) == 0 {
		fmt.Println("❌ No worker configured")
		os.Exit(1)
	}
	queueName := cfg.Workers[0].QueueName

	client, err := redisinfra.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		fmt.Printf("❌ Failed to connect to redis: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	q := queue.NewRedisQueue(client, queueName)
	ctx := context.Background()

	for i := 0; i < *count; i++ {
		env := &model.Envelope{
			Data: &model.EnvelopeData{
				UserID: *userID,
				IDPID:  *idpID,
			},
		}
		raw, err := env.Encode()
		if err != nil {
			fmt.Printf("❌ Failed to encode envelope: %v\n", err)
			os.Exit(1)
		}
		if err := q.Enqueue(ctx, raw); err != nil {
			fmt.Printf("❌ Failed to enqueue: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Enqueued job: queue=%s job_id=%s user=%s idp=%s\n",
			queueName, env.JobID, *userID, *idpID)
	}
}
