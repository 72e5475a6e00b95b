package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"optima/recsync/internal/business"
	"optima/recsync/pkg/config"
	"optima/recsync/pkg/infra/mysql"
	redisinfra "optima/recsync/pkg/infra/redis"
	"optima/recsync/pkg/logger"
	"optima/recsync/pkg/pipeline"
)

var (
	configPath   = flag.String("config", "./config/worker.yaml", "配置文件路径")
	testcasePath = flag.String("testcase", "./internal/domains/testcase/recommend.json", "测试用例路径")
	skipDB       = flag.Bool("skip-db", false, "跳过数据库操作（仅测试排序管线）")
)

// TestCase 测试用例结构
type TestCase struct {
	UserID string `json:"user_id"`
	IDPID  string `json:"idp_id"`
}

func main() {
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("  FastTest - RECSYNC Worker 快速测试工具")
	fmt.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Config loaded: %s\n", cfg.App.Name)

	// 2. 加载测试用例
	testCases, err := loadTestCases(*testcasePath)
	if err != nil {
		fmt.Printf("❌ Failed to load test cases: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded %d test cases from %s\n", len(testCases), *testcasePath)

	// 3. 初始化依赖（根据 skip-db 参数决定）
	var recommendService *business.RecommendService
	if *skipDB {
		fmt.Println("⚠️  Skip-DB mode: Database and Redis operations disabled")
		recommendService = nil
	} else {
		// 完整模式：初始化数据库和 Redis
		zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
		if err != nil {
			fmt.Printf("❌ Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer zapLogger.Sync()

		dao, err := mysql.NewRecommendDAO(cfg.MySQL.DSN)
		if err != nil {
			fmt.Printf("❌ Failed to create RecommendDAO: %v\n", err)
			os.Exit(1)
		}
		defer dao.Close()

		redisClient, err := redisinfra.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			fmt.Printf("❌ Failed to create Redis client: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		recommendService = business.NewRecommendService(
			dao,
			redisinfra.NewPubSub(redisClient),
			pipeline.NewContentPipeline(pipeline.ContentConfig{}),
			cfg.Notify.Channel,
			zapLogger,
		)
		fmt.Println("✅ Database and Redis initialized")
	}

	// 4. 执行测试用例
	fmt.Println("\n========================================")
	fmt.Println("  Running Test Cases")
	fmt.Println("========================================")

	successCount := 0
	failureCount := 0

	for i, tc := range testCases {
		fmt.Printf("\n[Test %d/%d] UserID=%s, IDPID=%s\n", i+1, len(testCases), tc.UserID, tc.IDPID)
		fmt.Println("----------------------------------------")

		startTime := time.Now()

		if *skipDB {
			// Skip-DB 模式：只跑排序管线
			err = runTestCaseSkipDB()
		} else {
			// 完整模式：测试完整推荐流程
			err = runTestCaseFull(recommendService, tc)
		}

		duration := time.Since(startTime)

		if err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
			fmt.Printf("⏱️  Duration: %v\n", duration)
			failureCount++
		} else {
			fmt.Printf("✅ PASSED\n")
			fmt.Printf("⏱️  Duration: %v\n", duration)
			successCount++
		}
	}

	// 5. 输出测试汇总
	fmt.Println("\n========================================")
	fmt.Println("  Test Summary")
	fmt.Println("========================================")
	fmt.Printf("Total: %d\n", len(testCases))
	fmt.Printf("Passed: %d ✅\n", successCount)
	fmt.Printf("Failed: %d ❌\n", failureCount)

	if failureCount > 0 {
		os.Exit(1)
	}
}

// loadTestCases 从 JSON 文件加载测试用例
func loadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testcase file: %w", err)
	}

	var testCases []TestCase
	if err := json.Unmarshal(data, &testCases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal testcase: %w", err)
	}

	return testCases, nil
}

// runTestCaseSkipDB 运行测试用例（跳过数据库，内置演示数据跑排序管线）
func runTestCaseSkipDB() error {
	p := pipeline.NewContentPipeline(pipeline.ContentConfig{})

	skills := []pipeline.Skill{
		{ID: "s1", Name: "Go Programming", Category: "engineering"},
		{ID: "s2", Name: "Go Concurrency", Category: "engineering"},
		{ID: "s3", Name: "Public Speaking", Category: "communication"},
	}
	resources := []pipeline.Resource{
		{ID: "r1", Title: "Go in Practice", Type: "course", SkillID: "s1", Skill: &skills[0]},
		{ID: "r2", Title: "Concurrency Patterns", Type: "video", SkillID: "s2", Skill: &skills[1]},
		{ID: "r3", Title: "Speak with Confidence", Type: "book", SkillID: "s3", Skill: &skills[2]},
	}
	userSkills := []pipeline.UserSkill{{SkillID: "s1", Level: 2}}
	gaps := []pipeline.SkillGap{{SkillID: "s1", Gap: 0.5, CurrentLevel: 2, TargetLevel: 5}}

	mapping := p.BuildSkillMapping(skills)
	matrix := p.BuildSimilarityMatrix(skills)
	features := p.PrepareResourceFeatures(resources)
	ranked := p.Rank(resources, userSkills, gaps, features, matrix, mapping)

	if len(ranked) == 0 {
		return fmt.Errorf("pipeline returned no results")
	}

	fmt.Printf("  Ranked Resources: %d\n", len(ranked))
	for _, item := range ranked {
		fmt.Printf("    - %s score=%.4f", item.Resource.Title, item.Score)
		if item.Reason != "" {
			fmt.Printf(" reason=%q", item.Reason)
		}
		fmt.Println()
	}

	return nil
}

// runTestCaseFull 运行测试用例（完整模式：推荐 + 数据库 + Redis）
func runTestCaseFull(recommendService *business.RecommendService, tc TestCase) error {
	ctx := context.Background()

	err := recommendService.Execute(ctx, &business.RecommendInput{
		UserID: tc.UserID,
		IDPID:  tc.IDPID,
	})
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	fmt.Println("  ✓ Recommendations written")
	fmt.Println("  ✓ Redis notification sent")

	return nil
}
