package coordinator

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/server/delivery"
)

// Params 协调器依赖参数
type Params struct {
	fx.In

	Transport  *transport.Transport
	UnifiedCfg *config.Config                `optional:"true"`
	Reporter   metrics.Reporter              `optional:"true"`
	Observer   func(delivery.EvictionReport) `optional:"true"`
}

// Module 是 coordinator 的 Fx 模块
var Module = fx.Module("coordinator",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// NewFromParams 从参数创建协调器
func NewFromParams(p Params) (*Coordinator, error) {
	opts := []Option{WithReporter(p.Reporter)}
	if p.Observer != nil {
		opts = append(opts, WithEvictionObserver(p.Observer))
	}
	return New(ConfigFromUnified(p.UnifiedCfg), p.Transport, opts...)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, c *Coordinator) {
	lc.Append(fx.Hook{
		OnStart: c.Start,
		OnStop:  c.Stop,
	})
}
