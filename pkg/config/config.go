package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 引擎模式
const (
	EngineModeHTTP = "http"
	EngineModeMock = "mock"
)

// Config 全局配置（worker / apiserver / ratecli 共用）
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Server  ServerConfig   `mapstructure:"server"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Engines EnginesConfig  `mapstructure:"engines"`
	Rating  RatingConfig   `mapstructure:"rating"`
	Workers []WorkerConfig `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin 模式：debug/release/test
}

// MySQLConfig MySQL 配置（承运商目录，DSN 为空时使用固定目录）
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"` // 询价完成通知频道
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// EnginesConfig 主引擎 / 旧引擎配置
type EnginesConfig struct {
	Primary EngineConfig `mapstructure:"primary"`
	Legacy  EngineConfig `mapstructure:"legacy"`
}

// EngineConfig 单个费率引擎配置
type EngineConfig struct {
	Mode     string        `mapstructure:"mode"` // http | mock
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	APIKey   string        `mapstructure:"api_key"`
	Carriers []string      `mapstructure:"carriers"` // mock 模式下可报价的承运商
}

// RatingConfig 询价配置
type RatingConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`  // 多承运商聚合总超时
	Carriers []string      `mapstructure:"carriers"` // 固定承运商目录（未配置 MySQL 时使用）

	// apiserver 异步询价
	JobQueue      string `mapstructure:"job_queue"`      // rate_quote 任务队列，为空时关闭 /jobs
	CallbackQueue string `mapstructure:"callback_queue"` // 回调队列，为空使用 worker 默认值
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name          string           `mapstructure:"name"`
	QueueName     string           `mapstructure:"queue_name"`
	CallbackQueue string           `mapstructure:"callback_queue"` // 回调队列名称
	Subscriber    SubscriberConfig `mapstructure:"subscriber"`
	Processor     ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// Load 加载配置文件
// 环境变量 RATESYNC_* 覆盖文件配置，例如 RATESYNC_ENGINES_PRIMARY_BASE_URL
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("ratesync")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Default 未提供配置文件时的默认配置（mock 引擎，供 ratecli 本地使用）
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ratesync")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("redis.channel", "rate_quote_complete")
	v.SetDefault("engines.primary.mode", EngineModeMock)
	v.SetDefault("engines.primary.timeout", "10s")
	v.SetDefault("engines.legacy.mode", EngineModeMock)
	v.SetDefault("engines.legacy.timeout", "10s")
	v.SetDefault("rating.timeout", "15s")
}

// Validate 验证通用配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if err := c.Engines.Primary.validate("engines.primary"); err != nil {
		return err
	}
	if err := c.Engines.Legacy.validate("engines.legacy"); err != nil {
		return err
	}
	if c.Rating.Timeout < 0 {
		return fmt.Errorf("rating.timeout must not be negative")
	}
	return nil
}

// ValidateWorker 验证 worker 专用配置
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	for i, w := range c.Workers {
		if w.QueueName == "" {
			return fmt.Errorf("workers[%d].queue_name is required", i)
		}
		if w.Subscriber.Threads <= 0 || w.Processor.Threads <= 0 {
			return fmt.Errorf("workers[%d]: subscriber and processor threads must be positive", i)
		}
	}
	return nil
}

func (e EngineConfig) validate(path string) error {
	switch e.Mode {
	case EngineModeMock:
		return nil
	case EngineModeHTTP:
		if e.BaseURL == "" {
			return fmt.Errorf("%s.base_url is required in http mode", path)
		}
		return nil
	default:
		return fmt.Errorf("%s.mode must be %q or %q, got %q", path, EngineModeHTTP, EngineModeMock, e.Mode)
	}
}
