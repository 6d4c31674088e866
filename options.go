package udpchat

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/server/delivery"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（WithConfig），为空时使用默认配置
	base *config.Config

	// 覆盖项，按调用顺序在基础配置之上应用
	edits []func(*config.Config)

	// 客户端控制台输出
	output io.Writer

	// 服务端驱逐报告订阅
	observer func(delivery.EvictionReport)

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

func newOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// config 合成最终配置
func (o *options) config() *config.Config {
	var cfg *config.Config
	if o.base != nil {
		cfg = o.base.Clone()
	} else {
		cfg = config.NewConfig()
	}
	for _, edit := range o.edits {
		edit(cfg)
	}
	return cfg
}

func (o *options) edit(fn func(*config.Config)) {
	o.edits = append(o.edits, fn)
}

// ============================================================================
//                              通用选项
// ============================================================================

// WithConfig 使用完整配置作为基础，其余选项在其上覆盖
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return config.ErrNilConfig
		}
		o.base = cfg
		return nil
	}
}

// WithRateLimit 设置每个来源地址的入站限速（每秒数据报数），0 表示不限速
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) error {
		if perSecond < 0 || burst < 0 {
			return fmt.Errorf("invalid rate limit: %v/%d", perSecond, burst)
		}
		o.edit(func(c *config.Config) {
			c.Transport.RateLimit = perSecond
			if burst > 0 {
				c.Transport.RateBurst = burst
			}
		})
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}

// ============================================================================
//                              服务端选项
// ============================================================================

// WithServerPort 设置服务器监听端口
func WithServerPort(port int) Option {
	return func(o *options) error {
		if err := config.ValidatePort("server port", port); err != nil {
			return err
		}
		o.edit(func(c *config.Config) { c.Server.Port = port })
		return nil
	}
}

// WithServerListenIP 设置服务器监听 IP
func WithServerListenIP(ip string) Option {
	return func(o *options) error {
		o.edit(func(c *config.Config) { c.Server.ListenIP = ip })
		return nil
	}
}

// WithGracePeriod 设置群消息确认宽限期
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("invalid grace period: %s", d)
		}
		o.edit(func(c *config.Config) { c.Server.GracePeriod = config.Duration(d) })
		return nil
	}
}

// WithWorkers 设置服务端发送池 worker 数量
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("invalid worker count: %d", n)
		}
		o.edit(func(c *config.Config) { c.Server.Workers = n })
		return nil
	}
}

// WithMetricsAddr 在 addr 上暴露 /metrics，空字符串表示不暴露
func WithMetricsAddr(addr string) Option {
	return func(o *options) error {
		o.edit(func(c *config.Config) { c.Metrics.ListenAddr = addr })
		return nil
	}
}

// WithEvictionObserver 订阅群成员驱逐报告
func WithEvictionObserver(fn func(delivery.EvictionReport)) Option {
	return func(o *options) error {
		o.observer = fn
		return nil
	}
}

// ============================================================================
//                              客户端选项
// ============================================================================

// WithClientName 设置客户端名称
func WithClientName(name string) Option {
	return func(o *options) error {
		o.edit(func(c *config.Config) { c.Client.Name = name })
		return nil
	}
}

// WithServer 设置服务器地址（点分十进制 IP 或 localhost）
func WithServer(ip string, port int) Option {
	return func(o *options) error {
		if err := config.ValidateServerIP(ip); err != nil {
			return err
		}
		o.edit(func(c *config.Config) {
			c.Client.ServerIP = ip
			c.Client.ServerPort = port
		})
		return nil
	}
}

// WithClientPort 设置客户端监听端口
func WithClientPort(port int) Option {
	return func(o *options) error {
		if err := config.ValidatePort("client port", port); err != nil {
			return err
		}
		o.edit(func(c *config.Config) { c.Client.ListenPort = port })
		return nil
	}
}

// WithAckTimeout 设置客户端每次尝试等待确认的时间
func WithAckTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("invalid ack timeout: %s", d)
		}
		o.edit(func(c *config.Config) { c.Client.AckTimeout = config.Duration(d) })
		return nil
	}
}

// WithMaxAttempts 设置客户端每个请求的最大尝试次数
func WithMaxAttempts(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("invalid max attempts: %d", n)
		}
		o.edit(func(c *config.Config) { c.Client.MaxAttempts = n })
		return nil
	}
}

// WithOutput 设置客户端控制台输出（设置后关闭着色）
func WithOutput(w io.Writer) Option {
	return func(o *options) error {
		o.output = w
		return nil
	}
}
