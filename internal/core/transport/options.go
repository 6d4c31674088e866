package transport

import (
	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/ratelimit"
)

// MaxDatagramSize IPv4 下单个 UDP 数据报的最大载荷
const MaxDatagramSize = 65507

// Config 传输配置
type Config struct {
	// ListenIP 监听 IP
	ListenIP string

	// Port 监听端口，0 表示由系统分配（测试用）
	Port int

	// ReadBufferSize 读缓冲大小，同时也是本端发送的数据报上限
	ReadBufferSize int
}

// maxDatagram 返回收发数据报的大小上限
func (c Config) maxDatagram() int {
	return min(c.ReadBufferSize, MaxDatagramSize)
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ListenIP:       "127.0.0.1",
		ReadBufferSize: 64 * 1024,
	}
}

// ServerConfigFromUnified 以服务端角色从统一配置创建传输配置
func ServerConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		ListenIP:       cfg.Server.ListenIP,
		Port:           cfg.Server.Port,
		ReadBufferSize: cfg.Transport.ReadBufferSize,
	}
}

// ClientConfigFromUnified 以客户端角色从统一配置创建传输配置
func ClientConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		ListenIP:       cfg.Client.ListenIP,
		Port:           cfg.Client.ListenPort,
		ReadBufferSize: cfg.Transport.ReadBufferSize,
	}
}

// Option 传输选项
type Option func(*Transport)

// WithLimiter 设置入站限速器，nil 表示不限速
func WithLimiter(l *ratelimit.SourceLimiter) Option {
	return func(t *Transport) {
		if l != nil {
			t.limiter = l
		}
	}
}

// WithReporter 设置指标 Reporter
func WithReporter(r metrics.Reporter) Option {
	return func(t *Transport) {
		if r != nil {
			t.reporter = r
		}
	}
}

// WithName 设置日志中使用的名称
func WithName(name string) Option {
	return func(t *Transport) {
		t.name = name
	}
}
