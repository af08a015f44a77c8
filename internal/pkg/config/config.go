// internal/pkg/config/config.go
package config

import (
	"log"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 聚合了 checkout-service 运行所需的全部配置。
// 配置来源: YAML 文件 (CONFIG_FILE 环境变量指定路径) + 环境变量覆盖。
type Config struct {
	App struct {
		Port int `yaml:"port"`
		// SettingsCacheTTLSeconds 是店铺设置缓存的有效期。
		// 设为 0 可完全关闭缓存（测试场景）。
		SettingsCacheTTLSeconds int `yaml:"settingsCacheTTLSeconds"`
	} `yaml:"app"`

	Proxy struct {
		// SharedSecret 是店面代理签名校验使用的共享密钥。
		SharedSecret string `yaml:"sharedSecret"`
	} `yaml:"proxy"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers       []string `yaml:"brokers"`
			PurchaseTopic string   `yaml:"purchaseTopic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		OrderAPI struct {
			Endpoint       string `yaml:"endpoint"`
			AccessToken    string `yaml:"accessToken"`
			TimeoutSeconds int    `yaml:"timeoutSeconds"`
		} `yaml:"orderApi"`
		RiskAPI struct {
			Endpoint       string `yaml:"endpoint"`
			TimeoutSeconds int    `yaml:"timeoutSeconds"`
		} `yaml:"riskApi"`
	} `yaml:"infra"`
}

var current atomic.Pointer[Config]

// Init 加载配置。必须在服务启动最早期调用一次。
func Init() {
	cfg := defaultConfig()

	if path := getEnv("CONFIG_FILE", "configs/checkout-service.yaml"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				log.Fatalf("FATAL: invalid config file %s: %v", path, err)
			}
		}
	}

	// 环境变量覆盖（便于容器部署时注入敏感项）
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.Mysql.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("PROXY_SHARED_SECRET"); v != "" {
		cfg.Proxy.SharedSecret = v
	}
	if v := os.Getenv("ORDER_API_ACCESS_TOKEN"); v != "" {
		cfg.Infra.OrderAPI.AccessToken = v
	}

	current.Store(cfg)
}

// GetCurrentConfig 返回当前生效的配置。
func GetCurrentConfig() *Config {
	if c := current.Load(); c != nil {
		return c
	}
	// 未显式 Init 时（例如单元测试）退化为默认值
	c := defaultConfig()
	current.Store(c)
	return c
}

// SettingsCacheTTL 以 time.Duration 形式返回设置缓存的 TTL。
func (c *Config) SettingsCacheTTL() time.Duration {
	return time.Duration(c.App.SettingsCacheTTLSeconds) * time.Second
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Port = 8090
	cfg.App.SettingsCacheTTLSeconds = 120
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	cfg.Infra.Kafka.PurchaseTopic = "checkout-purchase-events"
	cfg.Infra.OrderAPI.TimeoutSeconds = 10
	cfg.Infra.RiskAPI.TimeoutSeconds = 5
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
