package metrics

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-udpchat/config"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool

	// ListenAddr /metrics 端点地址，空表示不暴露
	ListenAddr string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled: true,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:    cfg.Metrics.Enabled,
		ListenAddr: cfg.Metrics.ListenAddr,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewReporterFromParams),
	fx.Invoke(registerEndpoint),
)

// NewReporterFromParams 从参数创建 Reporter
//
// 关闭指标时返回 NopReporter。
func NewReporterFromParams(p Params) Reporter {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled {
		return NopReporter{}
	}
	return NewCounter()
}

type endpointInput struct {
	fx.In

	LC         fx.Lifecycle
	Reporter   Reporter
	UnifiedCfg *config.Config `optional:"true"`
}

// registerEndpoint 按配置挂载 /metrics 端点的生命周期
func registerEndpoint(in endpointInput) error {
	cfg := ConfigFromUnified(in.UnifiedCfg)
	if !cfg.Enabled || cfg.ListenAddr == "" {
		return nil
	}

	ep, err := NewEndpoint(cfg.ListenAddr, in.Reporter)
	if err != nil {
		return err
	}
	in.LC.Append(fx.Hook{
		OnStart: ep.Start,
		OnStop:  ep.Stop,
	})
	return nil
}
