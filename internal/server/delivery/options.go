package delivery

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/core/metrics"
)

// Config 投递配置
type Config struct {
	// GracePeriod 确认宽限期
	GracePeriod time.Duration

	// Port 服务端监听端口，写入 grp_msg 信封
	Port int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		GracePeriod: 500 * time.Millisecond,
	}
}

// ConfigFromUnified 从统一配置创建投递配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		GracePeriod: cfg.Server.GracePeriod.Duration(),
		Port:        cfg.Server.Port,
	}
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 设置时钟（测试中使用 clock.NewMock()）
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		e.clk = clk
	}
}

// WithObserver 设置驱逐报告的观察者
func WithObserver(fn func(EvictionReport)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithReporter 设置指标 Reporter
func WithReporter(r metrics.Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}
