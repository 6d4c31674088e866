package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-udpchat/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Endpoint 暴露 /metrics 的 HTTP 端点
type Endpoint struct {
	registry *prometheus.Registry
	server   *http.Server
	listener net.Listener
}

// NewEndpoint 创建端点并注册 Collector 与 Go 运行时指标
func NewEndpoint(addr string, r Reporter) (*Endpoint, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(r)); err != nil {
		return nil, fmt.Errorf("register collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &Endpoint{
		registry: reg,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Registry 返回底层注册表
func (e *Endpoint) Registry() *prometheus.Registry {
	return e.registry
}

// Start 开始监听
func (e *Endpoint) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", e.server.Addr)
	if err != nil {
		return fmt.Errorf("listen metrics: %w", err)
	}
	e.listener = ln

	go func() {
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("指标端点退出", "error", err)
		}
	}()
	logger.Info("指标端点已启动", "addr", ln.Addr().String())
	return nil
}

// Addr 返回实际监听地址
func (e *Endpoint) Addr() string {
	if e.listener == nil {
		return e.server.Addr
	}
	return e.listener.Addr().String()
}

// Stop 关闭端点
func (e *Endpoint) Stop(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
