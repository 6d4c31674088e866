package coordinator

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/server/delivery"
)

// Config 协调器配置
type Config struct {
	// GracePeriod 群消息确认宽限期
	GracePeriod time.Duration

	// Workers 发送池 worker 数量
	Workers int

	// QueueSize 发送池队列长度
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		GracePeriod: 500 * time.Millisecond,
		Workers:     8,
		QueueSize:   1024,
	}
}

// ConfigFromUnified 从统一配置创建协调器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		GracePeriod: cfg.Server.GracePeriod.Duration(),
		Workers:     cfg.Server.Workers,
		QueueSize:   cfg.Server.QueueSize,
	}
}

// Option 协调器选项
type Option func(*Coordinator)

// WithClock 设置投递引擎使用的时钟
func WithClock(clk clock.Clock) Option {
	return func(c *Coordinator) {
		c.clk = clk
	}
}

// WithReporter 设置指标 Reporter
func WithReporter(r metrics.Reporter) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithEvictionObserver 订阅宽限期驱逐报告
func WithEvictionObserver(fn func(delivery.EvictionReport)) Option {
	return func(c *Coordinator) {
		c.observer = fn
	}
}
