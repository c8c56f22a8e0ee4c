// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"sync/atomic"

	"merx/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Config 是整个服务的配置结构，来源于本地 yaml 文件，
// 并可选地由 Nacos 配置中心热更新覆盖。
type Config struct {
	App struct {
		Port         int `yaml:"port"`
		FeatureFlags struct {
			// EnableStockEvents 控制提交成功后是否向 Kafka 发布库存变更事件
			EnableStockEvents bool `yaml:"enableStockEvents"`
			// HotProducts 列出走 Redis 快速路径的热点商品ID
			HotProducts []string `yaml:"hotProducts"`
		} `yaml:"featureFlags"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers     []string `yaml:"brokers"`
			EventsTopic string   `yaml:"eventsTopic"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		UserService struct {
			BaseURL string `yaml:"baseURL"`
		} `yaml:"userService"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
			DataID      string `yaml:"dataId"`
		} `yaml:"nacos"`
	} `yaml:"infra"`
}

var currentConfig atomic.Value // *Config

// GetCurrentConfig 返回当前生效的配置快照。
// 配置可能被 Nacos 热更新替换，调用方不应长期持有返回值。
func GetCurrentConfig() *Config {
	if c, ok := currentConfig.Load().(*Config); ok {
		return c
	}
	return &Config{}
}

// Init 从本地文件加载配置。文件路径通过 CONFIG_PATH 环境变量指定，
// 默认为 ./configs/config.yaml。
func Init() {
	path := getEnv("CONFIG_PATH", "configs/config.yaml")

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Logger.Warn().Err(err).Str("path", path).Msg("config file not readable, using defaults")
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		logger.Logger.Fatal().Err(err).Str("path", path).Msg("invalid config file")
	}

	currentConfig.Store(cfg)
}

// applyRemoteConfig 解析并替换来自 Nacos 的配置内容。
func applyRemoteConfig(content string) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		logger.Logger.Error().Err(err).Msg("ignoring invalid remote config from nacos")
		return
	}
	currentConfig.Store(cfg)
	logger.Logger.Info().Msg("configuration reloaded from nacos")
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Port = 8080
	cfg.App.FeatureFlags.EnableStockEvents = true
	cfg.Infra.Mysql.Host = "localhost"
	cfg.Infra.Mysql.Port = 3306
	cfg.Infra.Mysql.User = "root"
	cfg.Infra.Mysql.Database = "merx"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.EventsTopic = "shop-events"
	cfg.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.UserService.BaseURL = "http://localhost:8081"
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", "")
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", "")
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", "DEFAULT_GROUP")
	return cfg
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
