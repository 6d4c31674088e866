// Package config 提供 udpchat 的统一配置管理
//
// 本包采用分段配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，提供 Default*Config 与 Validate
//   - 支持从 JSON 加载（Duration 使用 "500ms" 形式）
//   - 支持 UDPCHAT_* 环境变量覆盖
//
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Server.Port = 5000
//
//	cfg, err := config.LoadFile("udpchat.json")
//	config.ApplyEnv(cfg)
package config

import "fmt"

// 端口范围（服务端与客户端监听端口都受此约束）
const (
	MinPort = 1024
	MaxPort = 65535
)

// Config 是 udpchat 的完整配置结构
//
// 配置按照功能模块组织：
//   - Server: 目录服务器（监听、群消息宽限期、发送池）
//   - Client: 客户端（名称、服务器地址、重试参数、收件箱）
//   - Transport: UDP 传输（读缓冲、入站限速）
//   - Log: 日志
//   - Metrics: 指标
type Config struct {
	// Server 服务端配置
	Server ServerConfig `json:"server"`

	// Client 客户端配置
	Client ClientConfig `json:"client"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Client:    DefaultClientConfig(),
		Transport: DefaultTransportConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// Server 与 Client 段只在对应角色启动时校验（见 ValidateServer / ValidateClient），
// 这里校验两种角色共享的部分。
func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateServer 以服务端角色校验配置
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

// ValidateClient 以客户端角色校验配置
func (c *Config) ValidateClient() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.Client.Validate()
}

// ValidatePort 校验端口范围
func ValidatePort(field string, port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%s must be in [%d, %d], got %d", field, MinPort, MaxPort, port)
	}
	return nil
}
