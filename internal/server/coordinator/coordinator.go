// Package coordinator 实现目录服务器的请求分发
//
// 协调器持有唯一的接收循环（transport.Serve），按消息类型把请求路由到
// 目录、群组表和投递引擎，再通过发送池异步回复。接收循环从不等待发送。
//
// 服务端发出的信封统一使用名称 "server" 和服务端的监听端口；
// 回复地址为请求数据报的来源 IP 加上信封中的监听端口。
package coordinator

import (
	"context"
	"net"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/taskpool"
	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/internal/server/delivery"
	"github.com/dep2p/go-udpchat/internal/server/directory"
	"github.com/dep2p/go-udpchat/internal/server/group"
	"github.com/dep2p/go-udpchat/pkg/lib/log"
	"github.com/dep2p/go-udpchat/pkg/types"
)

var logger = log.Logger("server/coordinator")

// Conn 协调器使用的数据报连接
type Conn interface {
	transport.Sender
	Serve(ctx context.Context, h transport.Handler) error
	Port() int
	Close() error
}

// Coordinator 目录服务器
type Coordinator struct {
	id       string
	cfg      Config
	conn     Conn
	port     int
	clk      clock.Clock
	reporter metrics.Reporter
	observer func(delivery.EvictionReport)

	dir    *directory.Directory
	groups *group.Table
	engine *delivery.Engine
	pool   *taskpool.Pool

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan error
}

// New 创建协调器
func New(cfg Config, conn Conn, opts ...Option) (*Coordinator, error) {
	if conn == nil {
		return nil, ErrNilConn
	}

	c := &Coordinator{
		id:       uuid.NewString(),
		cfg:      cfg,
		conn:     conn,
		port:     conn.Port(),
		clk:      clock.New(),
		reporter: metrics.NopReporter{},
		dir:      directory.New(),
		groups:   group.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.pool = taskpool.New("server-send",
		taskpool.Config{Workers: cfg.Workers, QueueSize: cfg.QueueSize},
		taskpool.WithDropHook(func(string) { c.reporter.LogDropped(metrics.DropQueueFull) }),
	)

	engineOpts := []delivery.Option{
		delivery.WithClock(c.clk),
		delivery.WithReporter(c.reporter),
	}
	if c.observer != nil {
		engineOpts = append(engineOpts, delivery.WithObserver(c.observer))
	}
	c.engine = delivery.New(
		delivery.Config{GracePeriod: cfg.GracePeriod, Port: c.port},
		c.dir, c.groups, conn, c.pool,
		engineOpts...,
	)

	return c, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 启动接收循环
func (c *Coordinator) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}

	// 不使用传入的 ctx：Fx OnStart 的 ctx 在返回后会被取消
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan error, 1)
	c.started = true

	go func() {
		c.done <- c.conn.Serve(ctx, c.Handle)
	}()

	logger.Info("服务端已启动", "id", c.id, "port", c.port, "gracePeriod", c.cfg.GracePeriod)
	return nil
}

// Stop 停止接收循环，关闭投递引擎、发送池与连接
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.started = false
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()

	var err error
	select {
	case serveErr := <-done:
		err = multierr.Append(err, serveErr)
	case <-ctx.Done():
		err = multierr.Append(err, ctx.Err())
	}

	err = multierr.Combine(err, c.engine.Close(), c.pool.Close(), c.conn.Close())
	logger.Info("服务端已停止", "id", c.id, "error", err)
	return err
}

// ID 返回服务端实例 ID
func (c *Coordinator) ID() string {
	return c.id
}

// Port 返回监听端口
func (c *Coordinator) Port() int {
	return c.port
}

// Directory 返回目录（只读用途）
func (c *Coordinator) Directory() *directory.Directory {
	return c.dir
}

// Groups 返回群组表（只读用途）
func (c *Coordinator) Groups() *group.Table {
	return c.groups
}

// Engine 返回投递引擎
func (c *Coordinator) Engine() *delivery.Engine {
	return c.engine
}

// ============================================================================
//                              发送
// ============================================================================

// reply 异步回复一条消息
func (c *Coordinator) reply(to *net.UDPAddr, m envelope.Message) {
	env, err := envelope.Build(c.port, types.ServerName, m)
	if err != nil {
		logger.Warn("构造应答失败", "type", m.Type(), "error", err)
		return
	}
	_ = c.pool.Submit(m.Type().String(), func() error {
		return c.conn.Send(to, env)
	})
}

// ack 回复 ack，info 为空字符串时不带载荷
func (c *Coordinator) ack(to *net.UDPAddr, info string) {
	c.reply(to, envelope.Ack{Info: info, HasInfo: info != ""})
}

// broadcastTable 向所有在线客户端广播目录快照
//
// 快照与地址列表在同一把锁内取得。
func (c *Coordinator) broadcastTable() {
	snap, addrs := c.dir.BroadcastSet()

	env, err := envelope.Build(c.port, types.ServerName, envelope.Table{Directory: snap})
	if err != nil {
		logger.Warn("构造目录广播失败", "error", err)
		return
	}
	for _, addr := range addrs {
		_ = c.pool.Submit("table", func() error {
			return c.conn.Send(addr, env)
		})
	}

	c.reporter.LogEvent(metrics.EventTableBroadcast, 1)
	logger.Debug("目录已广播", "online", len(addrs), "table", snap)
}
