package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/ratelimit"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/pkg/lib/log"
)

var logger = log.Logger("core/transport")

// Datagram 解码后的入站数据报
type Datagram struct {
	// Envelope 信封
	Envelope envelope.Envelope

	// From 数据报来源地址
	From *net.UDPAddr

	// Size 原始字节数
	Size int
}

// ReplyAddr 回复地址：来源 IP + 信封中的监听端口
func (d Datagram) ReplyAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: d.From.IP, Port: d.Envelope.Port, Zone: d.From.Zone}
}

// Handler 数据报处理函数，在接收循环中同步调用
type Handler func(Datagram)

// Sender 发送信封的能力
type Sender interface {
	Send(to *net.UDPAddr, e envelope.Envelope) error
}

// Transport UDP 传输
type Transport struct {
	name     string
	cfg      Config
	conn     *net.UDPConn
	limiter  ratelimit.Limiter
	reporter metrics.Reporter

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ Sender = (*Transport)(nil)

// Listen 绑定 UDP socket
func Listen(cfg Config, opts ...Option) (*Transport, error) {
	ip := net.ParseIP(cfg.ListenIP)
	if cfg.ListenIP != "" && ip == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidListenAddr, cfg.ListenIP)
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = DefaultConfig().ReadBufferSize
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: cfg.Port})
	if err != nil {
		return nil, fmt.Errorf("listen udp %s:%d: %w", cfg.ListenIP, cfg.Port, err)
	}

	t := &Transport{
		name:     "udp",
		cfg:      cfg,
		conn:     conn,
		reporter: metrics.NopReporter{},
	}
	for _, opt := range opts {
		opt(t)
	}

	logger.Debug("UDP 传输已绑定", "name", t.name, "addr", conn.LocalAddr().String())
	return t, nil
}

// LocalAddr 返回本地地址
func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Port 返回实际监听端口
func (t *Transport) Port() int {
	return t.LocalAddr().Port
}

// Send 编码并发送信封
func (t *Transport) Send(to *net.UDPAddr, e envelope.Envelope) error {
	if to == nil {
		return ErrNilAddress
	}
	if t.closed.Load() {
		return ErrClosed
	}

	data, err := envelope.Encode(e)
	if err != nil {
		return err
	}
	if len(data) > t.cfg.maxDatagram() {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrDatagramTooLarge, e.Type, len(data), t.cfg.maxDatagram())
	}

	n, err := t.conn.WriteToUDP(data, to)
	if err != nil {
		t.reporter.LogDropped(metrics.DropSendError)
		return fmt.Errorf("send %s to %s: %w", e.Type, to, err)
	}
	t.reporter.LogSentDatagram(n)
	return nil
}

// Serve 运行接收循环，直到 ctx 取消或传输关闭
//
// ctx 取消或 Close 导致的退出返回 nil。
func (t *Transport) Serve(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() {
		// 让阻塞中的 ReadFromUDP 立即返回
		_ = t.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	// 多留一个字节：读满说明数据报超过上限，已被截断
	limit := t.cfg.maxDatagram()
	buf := make([]byte, limit+1)
	for {
		n, from, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || t.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("read udp: %w", err)
		}

		t.reporter.LogRecvDatagram(n)

		if n > limit {
			t.reporter.LogDropped(metrics.DropTruncated)
			logger.Debug("数据报超过读缓冲，丢弃", "from", from.String(), "limit", limit)
			continue
		}

		if t.limiter != nil && !t.limiter.Allow(from.IP.String()) {
			t.reporter.LogDropped(metrics.DropRateLimited)
			logger.Debug("来源超出限速，丢弃数据报", "from", from.String())
			continue
		}

		e, err := envelope.Decode(buf[:n])
		if err != nil {
			t.reporter.LogDropped(metrics.DropMalformed)
			logger.Debug("丢弃格式错误的数据报", "from", from.String(), "error", err)
			continue
		}

		h(Datagram{Envelope: e, From: from, Size: n})
	}
}

// Close 关闭 socket，可重复调用
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		t.closeErr = t.conn.Close()
		logger.Debug("UDP 传输已关闭", "name", t.name)
	})
	return t.closeErr
}
