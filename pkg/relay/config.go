// Package relay 实现日志中转服务
//
// 游戏客户端将 game_start / game_data 事件 POST 到本服务，
// 服务再写入 OpenSearch 对应索引。同时提供静态文件、状态检查以及
// 仅限内网访问的 /metrics。
package relay

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 中转服务配置
type Config struct {
	Port          int              `yaml:"port"`
	StaticDir     string           `yaml:"staticDir"` // 静态文件目录，为空则不提供
	OpenSearch    OpenSearchConfig `yaml:"openSearch"`
	PrivateIP     string           `yaml:"privateIP"`  // 本机内网地址，允许访问 /metrics
	AllowedIPs    []string         `yaml:"allowedIPs"` // 额外允许访问 /metrics 的地址前缀
	DetectGateway bool             `yaml:"detectGateway"`
	// TrustProxy 为 true 时按 X-Forwarded-For / X-Real-IP 识别客户端地址，
	// 仅在服务部署于可信反向代理之后时开启
	TrustProxy            bool    `yaml:"trustProxy"`
	ForwardTimeoutSeconds float64 `yaml:"forwardTimeoutSeconds"`
}

// OpenSearchConfig OpenSearch 连接配置
type OpenSearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Port:                  3001,
		StaticDir:             "public",
		AllowedIPs:            []string{"127.0.0.1", "::1"},
		DetectGateway:         true,
		ForwardTimeoutSeconds: 10,
	}
}

// LoadConfig 从 YAML 文件加载配置，未出现的字段保留默认值
// path 为空时只使用默认值
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read relay config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse relay config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置
//
// 支持：PORT、OPENSEARCH_ENDPOINT、OPENSEARCH_USERNAME、OPENSEARCH_PASSWORD、EC2_PRIVATE_IP
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := lookup("OPENSEARCH_ENDPOINT"); ok && v != "" {
		c.OpenSearch.Endpoint = v
	}
	if v, ok := lookup("OPENSEARCH_USERNAME"); ok && v != "" {
		c.OpenSearch.Username = v
	}
	if v, ok := lookup("OPENSEARCH_PASSWORD"); ok && v != "" {
		c.OpenSearch.Password = v
	}
	if v, ok := lookup("EC2_PRIVATE_IP"); ok && v != "" {
		c.PrivateIP = v
	}
	return nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", c.Port)
	}
	if c.OpenSearch.Endpoint == "" {
		return fmt.Errorf("openSearch.endpoint is required")
	}
	if c.ForwardTimeoutSeconds <= 0 {
		return fmt.Errorf("forwardTimeoutSeconds must be positive, got %v", c.ForwardTimeoutSeconds)
	}
	return nil
}

// Addr 返回监听地址
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
