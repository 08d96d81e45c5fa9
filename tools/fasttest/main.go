package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bitleak/lmstfy/client"

	"oip/ratesync/internal/business/engine"
	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/domains"
	"oip/ratesync/internal/domains/common"
	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/pkg/config"
	"oip/ratesync/pkg/infra/redis"
	"oip/ratesync/pkg/lmstfyx"
	"oip/ratesync/pkg/logger"
)

var (
	configPath   = flag.String("config", "", "配置文件路径（为空使用 mock 引擎）")
	testcasePath = flag.String("testcase", "./tools/fasttest/testcase/rate_quote.json", "测试用例路径")
	withRedis    = flag.Bool("with-redis", false, "发送 Redis 完成通知")
)

// TestCase 测试用例结构
type TestCase struct {
	Name         string            `json:"name"`
	Data         job.RateQuoteData `json:"data"`
	ExpectAction string            `json:"expect_action"` // success/bury/release
}

// stdoutPublisher 回调打印到标准输出，替代 lmstfy 回调队列
type stdoutPublisher struct{}

func (stdoutPublisher) PublishJSON(queue string, v interface{}) error {
	data, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("  Callback -> %s:\n  %s\n", queue, data)
	return nil
}

func main() {
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("  FastTest - RATESYNC Worker 快速测试工具")
	fmt.Println("========================================")

	// 1. 加载配置
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Printf("❌ Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	fmt.Printf("✅ Config loaded: %s (primary=%s, legacy=%s)\n", cfg.App.Name, cfg.Engines.Primary.Mode, cfg.Engines.Legacy.Mode)

	// 2. 加载测试用例
	testCases, err := loadTestCases(*testcasePath)
	if err != nil {
		fmt.Printf("❌ Failed to load test cases: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded %d test cases from %s\n", len(testCases), *testcasePath)

	// 3. 初始化依赖
	deps, cleanup, err := buildDeps(cfg)
	if err != nil {
		fmt.Printf("❌ Failed to init deps: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	proc := domains.GetProcess(deps.Logger, deps)

	// 4. 执行测试用例
	fmt.Println("\n========================================")
	fmt.Println("  Running Test Cases")
	fmt.Println("========================================")

	successCount := 0
	failureCount := 0

	for i, tc := range testCases {
		fmt.Printf("\n[Test %d/%d] %s\n", i+1, len(testCases), tc.Name)
		fmt.Println("----------------------------------------")

		startTime := time.Now()
		err := runTestCase(proc, i, tc)
		duration := time.Since(startTime)

		if err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
			failureCount++
		} else {
			fmt.Printf("✅ PASSED\n")
			successCount++
		}
		fmt.Printf("⏱️  Duration: %v\n", duration)
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

func buildDeps(cfg *config.Config) (*common.Deps, func(), error) {
	cleanup := func() {}

	log, err := logger.NewZapLoggerWithOutput(cfg.App.LogLevel, "stderr")
	if err != nil {
		return nil, cleanup, err
	}

	primary, legacy, err := engine.NewPair(cfg.Engines)
	if err != nil {
		return nil, cleanup, err
	}

	deps := &common.Deps{
		Service:        rating.NewService(primary, legacy, log),
		Catalog:        engine.NewStaticCatalog(cfg.Rating.Carriers),
		Callback:       stdoutPublisher{},
		CallbackQueue:  "fasttest_callback",
		DefaultTimeout: cfg.Rating.Timeout,
		Logger:         log,
	}

	if *withRedis {
		ps, err := redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = ps.Close() }
		deps.Notifier = ps
		deps.NotifyChannel = cfg.Redis.Channel
		fmt.Println("✅ Redis notifier initialized")
	}

	return deps, cleanup, nil
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

// runTestCase 构造标准 Job 并走完整 GetProcess 流程
func runTestCase(proc lmstfyx.Proc, i int, tc TestCase) error {
	meta := job.Meta{
		RequestID:  fmt.Sprintf("fasttest-%d", i+1),
		ActionType: job.ActionRateQuote,
		ID:         tc.Name,
	}
	standardJob, err := job.NewJob(meta, tc.Data)
	if err != nil {
		return err
	}
	data, err := json.Marshal(standardJob)
	if err != nil {
		return err
	}

	resp := proc(context.Background(), &client.Job{
		ID:    meta.RequestID,
		Queue: "fasttest",
		Data:  data,
	})

	fmt.Printf("  Action: %s\n", resp.Action)
	if tc.ExpectAction != "" && resp.Action.String() != tc.ExpectAction {
		return fmt.Errorf("expect action %s, got %s", tc.ExpectAction, resp.Action)
	}
	return nil
}
