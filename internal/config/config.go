package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// AppConfig 聚合运行时配置，全部通过环境变量注入（支持 .env）。
type AppConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// DBDriver 取 sqlite 或 mysql；DBDSN 为对应驱动的连接串。
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"order_desk.db"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka 集群地址（逗号分隔）、Topic、消费者组
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"order-desk-events"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"order-desk-stock"`

	// Kafka 写入参数
	KafkaMaxAttempts  int           `env:"KAFKA_MAX_ATTEMPTS" envDefault:"5"`
	KafkaWriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
	KafkaBatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"20ms"`

	// Redis Stream：Relay 把 outbox 事件同时写入该流，供后台页面实时订阅。
	OrderEventStream string        `env:"ORDER_EVENT_STREAM" envDefault:"order_desk:order_events"`
	RelayInterval    time.Duration `env:"RELAY_INTERVAL" envDefault:"500ms"`

	// 转正接口限流（按管理员）
	PromoteRateLimit  int           `env:"PROMOTE_RATE_LIMIT" envDefault:"30"`
	PromoteRateWindow time.Duration `env:"PROMOTE_RATE_WINDOW" envDefault:"1s"`

	// 已转正的 pending id -> 订单号 记录保留时长
	PromotionStateTTL time.Duration `env:"PROMOTION_STATE_TTL" envDefault:"168h"`

	// 余额批量计算并发度
	BalanceConcurrency int `env:"BALANCE_CONCURRENCY" envDefault:"8"`

	// 多实例部署时每个进程的 snowflake 节点号（0-1023）
	NodeID int64 `env:"NODE_ID" envDefault:"1"`

	// 管理接口的简单令牌（身份由上游认证层负责）
	AdminToken string `env:"ADMIN_TOKEN" envDefault:"dev-admin-token"`
}

// Load 读取 .env（可选）与环境变量，并做取值校验。
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file, using process environment")
	}
	return Parse()
}

// Parse 只解析当前进程环境变量，测试里直接调用。
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate 校验解析后的配置。
func (cfg *AppConfig) Validate() error {
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", cfg.DBDriver)
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}

	brokers := make([]string, 0, len(cfg.KafkaBrokers))
	for _, b := range cfg.KafkaBrokers {
		if s := strings.TrimSpace(b); s != "" {
			brokers = append(brokers, s)
		}
	}
	cfg.KafkaBrokers = brokers
	if len(cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}
	if cfg.KafkaMaxAttempts <= 0 {
		return fmt.Errorf("KAFKA_MAX_ATTEMPTS must be > 0")
	}
	if cfg.KafkaWriteTimeout <= 0 || cfg.KafkaBatchTimeout <= 0 {
		return fmt.Errorf("KAFKA_WRITE_TIMEOUT and KAFKA_BATCH_TIMEOUT must be > 0")
	}
	if cfg.OrderEventStream == "" {
		return fmt.Errorf("ORDER_EVENT_STREAM must not be empty")
	}
	if cfg.RelayInterval <= 0 {
		return fmt.Errorf("RELAY_INTERVAL must be > 0")
	}
	if cfg.PromoteRateLimit <= 0 {
		return fmt.Errorf("PROMOTE_RATE_LIMIT must be > 0")
	}
	if cfg.PromoteRateWindow < time.Second {
		return fmt.Errorf("PROMOTE_RATE_WINDOW must be >= 1s")
	}
	if cfg.PromotionStateTTL <= 0 {
		return fmt.Errorf("PROMOTION_STATE_TTL must be > 0")
	}
	if cfg.BalanceConcurrency <= 0 {
		return fmt.Errorf("BALANCE_CONCURRENCY must be > 0")
	}
	if cfg.NodeID < 0 || cfg.NodeID > 1023 {
		return fmt.Errorf("NODE_ID must be within [0, 1023]")
	}
	if cfg.AdminToken == "" {
		return fmt.Errorf("ADMIN_TOKEN must not be empty")
	}
	return nil
}
