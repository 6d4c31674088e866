package udpchat

import (
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/client"
	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/server/coordinator"
	"github.com/dep2p/go-udpchat/internal/server/delivery"
	"github.com/dep2p/go-udpchat/pkg/lib/log"
)

var fxLogger = log.Logger("udpchat/fx")

// buildServerApp 构建服务端 Fx 应用
//
// 加载顺序（按依赖）：Metrics → Transport → Coordinator
func buildServerApp(cfg *config.Config, o *options, srv *Server) (*fx.App, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Supply(transport.ServerConfigFromUnified(cfg)),

		metrics.Module,
		transport.Module(),
		coordinator.Module,
	}
	if o.observer != nil {
		observer := o.observer
		modules = append(modules, fx.Provide(func() func(delivery.EvictionReport) { return observer }))
	}
	modules = append(modules, o.userFxOptions...)
	modules = append(modules,
		fx.Populate(&srv.coord, &srv.reporter),
		fx.WithLogger(newFxEventLogger(cfg)),
	)

	fxLogger.Debug("构建服务端应用", "port", cfg.Server.Port, "metrics", cfg.Metrics.ListenAddr)
	return fx.New(modules...), nil
}

// buildClientApp 构建客户端 Fx 应用
//
// 加载顺序（按依赖）：Transport → Client
func buildClientApp(cfg *config.Config, o *options, out **client.Client) (*fx.App, error) {
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Supply(transport.ClientConfigFromUnified(cfg)),

		transport.Module(),
		client.Module,
	}
	if o.output != nil {
		w := o.output
		modules = append(modules, fx.Provide(fx.Annotated{
			Name:   "client_output",
			Target: func() io.Writer { return w },
		}))
	}
	modules = append(modules, o.userFxOptions...)
	modules = append(modules,
		fx.Populate(out),
		fx.WithLogger(newFxEventLogger(cfg)),
	)

	fxLogger.Debug("构建客户端应用", "name", cfg.Client.Name, "port", cfg.Client.ListenPort)
	return fx.New(modules...), nil
}

// newFxEventLogger 返回 Fx 事件日志构造函数
//
// 只有 fx 组件或全局级别为 debug 时输出 Fx 事件，否则静默。
func newFxEventLogger(cfg *config.Config) func() fxevent.Logger {
	return func() fxevent.Logger {
		if fxDebugEnabled(cfg) {
			if l, err := zap.NewDevelopment(); err == nil {
				return &fxevent.ZapLogger{Logger: l.Named("fx")}
			}
		}
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
}

func fxDebugEnabled(cfg *config.Config) bool {
	level, components, err := log.ParseLevelSpec(cfg.Log.Level)
	if err != nil {
		return false
	}
	if l, ok := components["fx"]; ok {
		return l <= slog.LevelDebug
	}
	return level <= slog.LevelDebug
}
