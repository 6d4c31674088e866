package config

import (
	"errors"
	"time"
)

// ServerConfig 目录服务器配置
type ServerConfig struct {
	// ListenIP 监听 IP
	ListenIP string `json:"listen_ip"`

	// Port 监听端口
	Port int `json:"port"`

	// GracePeriod 群消息确认宽限期，超时未确认的成员被移出群组
	GracePeriod Duration `json:"grace_period"`

	// Workers 发送池 worker 数量
	Workers int `json:"workers"`

	// QueueSize 发送池队列长度，队列满时丢弃任务
	QueueSize int `json:"queue_size"`
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenIP:    "127.0.0.1",
		Port:        0,
		GracePeriod: Duration(500 * time.Millisecond),
		Workers:     8,
		QueueSize:   1024,
	}
}

// Validate 验证服务端配置
func (c ServerConfig) Validate() error {
	if c.ListenIP == "" {
		return errors.New("server listen ip is required")
	}
	if err := ValidatePort("server port", c.Port); err != nil {
		return err
	}
	if c.GracePeriod <= 0 {
		return errors.New("server grace period must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("server workers must be positive")
	}
	if c.QueueSize <= 0 {
		return errors.New("server queue size must be positive")
	}
	return nil
}
