package client

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-udpchat/config"
)

// Config 客户端配置
type Config struct {
	// Name 客户端名称
	Name string

	// ServerIP 服务器 IP（localhost 会被解析为 127.0.0.1）
	ServerIP string

	// ServerPort 服务器端口
	ServerPort int

	// AckTimeout 每次尝试等待确认的时间
	AckTimeout time.Duration

	// MaxAttempts 每个请求的最大尝试次数
	MaxAttempts int

	// InboxSize 收件箱容量
	InboxSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ServerIP:    "127.0.0.1",
		AckTimeout:  500 * time.Millisecond,
		MaxAttempts: 5,
		InboxSize:   1000,
	}
}

// ConfigFromUnified 从统一配置创建客户端配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Name:        cfg.Client.Name,
		ServerIP:    cfg.Client.ServerIP,
		ServerPort:  cfg.Client.ServerPort,
		AckTimeout:  cfg.Client.AckTimeout.Duration(),
		MaxAttempts: cfg.Client.MaxAttempts,
		InboxSize:   cfg.Client.InboxSize,
	}
}

// ServerAddr 返回服务器地址
func (c Config) ServerAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP(config.ResolveHost(c.ServerIP)), Port: c.ServerPort}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.AckTimeout <= 0 {
		c.AckTimeout = def.AckTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InboxSize <= 0 {
		c.InboxSize = def.InboxSize
	}
	if c.ServerIP == "" {
		c.ServerIP = def.ServerIP
	}
	return c
}

// Option 客户端选项
type Option func(*Client)

// WithClock 设置等待确认使用的时钟
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// WithOutput 设置控制台输出
func WithOutput(w io.Writer) Option {
	return func(c *Client) {
		if w != nil {
			c.out = w
		}
	}
}

// WithColor 启用或关闭控制台着色
func WithColor(enabled bool) Option {
	return func(c *Client) {
		c.color = enabled
	}
}

func defaultOutput() io.Writer {
	return os.Stdout
}
