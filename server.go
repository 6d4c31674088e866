package udpchat

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/fx"

	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/server/coordinator"
	"github.com/dep2p/go-udpchat/pkg/types"
)

// Server 运行中的目录服务器
type Server struct {
	app      *fx.App
	coord    *coordinator.Coordinator
	reporter metrics.Reporter
	ip       string

	mu      sync.Mutex
	stopped bool
}

// StartServer 创建并启动目录服务器
//
// 示例:
//
//	srv, err := udpchat.StartServer(ctx,
//	    udpchat.WithServerPort(5000),
//	    udpchat.WithMetricsAddr("127.0.0.1:9100"),
//	)
func StartServer(ctx context.Context, opts ...Option) (*Server, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg := o.config()

	srv := &Server{ip: cfg.Server.ListenIP}
	app, err := buildServerApp(cfg, o, srv)
	if err != nil {
		return nil, err
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build server: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return nil, fmt.Errorf("start server: %w", err)
	}
	srv.app = app

	fxLogger.Info("服务器已上线", "id", srv.coord.ID(), "addr", srv.Addr().String())
	return srv, nil
}

// Stop 停止服务器并释放端口
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrAlreadyStopped
	}
	s.stopped = true
	s.mu.Unlock()

	return s.app.Stop(ctx)
}

// ID 返回服务器实例 ID
func (s *Server) ID() string {
	return s.coord.ID()
}

// Port 返回监听端口
func (s *Server) Port() int {
	return s.coord.Port()
}

// Addr 返回监听地址
func (s *Server) Addr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP(s.ip), Port: s.coord.Port()}
}

// Directory 返回客户端目录快照
func (s *Server) Directory() types.Directory {
	return s.coord.Directory().Snapshot()
}

// Groups 返回群组表快照
func (s *Server) Groups() map[string][]string {
	return s.coord.Groups().Snapshot()
}

// PendingAcks 返回仍在宽限期内等待确认的群消息数
func (s *Server) PendingAcks() int {
	return s.coord.Engine().Pending()
}

// Stats 返回流量与事件统计
func (s *Server) Stats() metrics.Stats {
	return s.reporter.Snapshot()
}
