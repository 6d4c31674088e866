package transport

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/ratelimit"
)

// Params 传输依赖参数
type Params struct {
	fx.In

	Config     Config
	UnifiedCfg *config.Config   `optional:"true"`
	Reporter   metrics.Reporter `optional:"true"`
}

// Module 返回 Fx 模块
//
// 调用方需要通过 fx.Supply 提供角色对应的 Config
// （ServerConfigFromUnified 或 ClientConfigFromUnified）。
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(
			NewFromParams,
			func(t *Transport) Sender { return t },
		),
		fx.Invoke(registerLifecycle),
	)
}

// NewFromParams 从参数绑定 Transport
func NewFromParams(p Params) (*Transport, error) {
	limiter, err := ratelimit.New(ratelimit.ConfigFromUnified(p.UnifiedCfg))
	if err != nil {
		return nil, err
	}
	return Listen(p.Config, WithLimiter(limiter), WithReporter(p.Reporter))
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, t *Transport) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return t.Close()
		},
	})
}
