package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dep2p/go-udpchat/pkg/types"
)

// ClientConfig 客户端配置
type ClientConfig struct {
	// Name 客户端名称（永久唯一，不能是 "server"，不能包含 ';'）
	Name string `json:"name"`

	// ServerIP 服务器 IP（点分十进制或 localhost）
	ServerIP string `json:"server_ip"`

	// ServerPort 服务器端口
	ServerPort int `json:"server_port"`

	// ListenIP 本地监听 IP
	ListenIP string `json:"listen_ip"`

	// ListenPort 本地监听端口
	ListenPort int `json:"listen_port"`

	// AckTimeout 每次尝试等待确认的时间
	AckTimeout Duration `json:"ack_timeout"`

	// MaxAttempts 每个请求的最大尝试次数
	MaxAttempts int `json:"max_attempts"`

	// InboxSize 群组模式下缓存私聊消息的上限，满时丢弃最早的消息
	InboxSize int `json:"inbox_size"`
}

// DefaultClientConfig 返回默认客户端配置
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerIP:    "127.0.0.1",
		ListenIP:    "127.0.0.1",
		AckTimeout:  Duration(500 * time.Millisecond),
		MaxAttempts: 5,
		InboxSize:   1000,
	}
}

// Validate 验证客户端配置
func (c ClientConfig) Validate() error {
	if err := types.ValidateClientName(c.Name); err != nil {
		return fmt.Errorf("client name: %w", err)
	}
	if err := ValidateServerIP(c.ServerIP); err != nil {
		return err
	}
	if err := ValidatePort("server port", c.ServerPort); err != nil {
		return err
	}
	if err := ValidatePort("client port", c.ListenPort); err != nil {
		return err
	}
	if c.AckTimeout <= 0 {
		return errors.New("client ack timeout must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("client max attempts must be positive")
	}
	if c.InboxSize <= 0 {
		return errors.New("client inbox size must be positive")
	}
	return nil
}

// ValidateServerIP 校验服务器 IP：IPv4 点分十进制或 localhost
func ValidateServerIP(ip string) error {
	if ip == "localhost" {
		return nil
	}
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return fmt.Errorf("invalid server ip %q", ip)
	}
	return nil
}

// ResolveHost 将 localhost 映射为回环地址
func ResolveHost(ip string) string {
	if ip == "localhost" {
		return "127.0.0.1"
	}
	return ip
}
