package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/pkg/lib/log"
	"github.com/dep2p/go-udpchat/pkg/types"
)

var logger = log.Logger("client")

// Conn 客户端使用的数据报连接
type Conn interface {
	transport.Sender
	Serve(ctx context.Context, h transport.Handler) error
	Port() int
	Close() error
}

// Client 聊天客户端
type Client struct {
	id     string
	cfg    Config
	conn   Conn
	port   int
	server *net.UDPAddr
	clk    clock.Clock

	out     io.Writer
	color   bool
	console *Console

	slots *SlotTable
	inbox *Inbox

	mu    sync.RWMutex
	group string
	table types.Directory

	running atomic.Bool
}

// New 创建客户端
func New(cfg Config, conn Conn, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	cfg = cfg.normalized()

	c := &Client{
		id:     uuid.NewString(),
		cfg:    cfg,
		conn:   conn,
		port:   conn.Port(),
		server: cfg.ServerAddr(),
		clk:    clock.New(),
		out:    defaultOutput(),
		color:  true,
		table:  make(types.Directory),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.console = NewConsole(c.out, c.color)
	c.slots = NewSlotTable(c.clk)
	c.inbox = NewInbox(cfg.InboxSize)
	return c, nil
}

// ============================================================================
//                              状态访问
// ============================================================================

// Name 返回客户端名称
func (c *Client) Name() string {
	return c.cfg.Name
}

// Port 返回本地监听端口
func (c *Client) Port() int {
	return c.port
}

// Group 返回当前群组，不在群组模式时为空
func (c *Client) Group() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.group
}

// Table 返回目录镜像副本
func (c *Client) Table() types.Directory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Clone()
}

// Inbox 返回收件箱
func (c *Client) Inbox() *Inbox {
	return c.inbox
}

func (c *Client) lookup(name string) (types.ClientRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.table[name]
	return rec, ok
}

func (c *Client) enterGroup(group string) {
	c.mu.Lock()
	c.group = group
	c.mu.Unlock()
	c.console.SetGroup(group)
}

func (c *Client) exitGroup() {
	c.enterGroup("")
}

func (c *Client) prefix() string {
	return groupPrefix(c.Group())
}

// flushInbox 输出并清空收件箱
func (c *Client) flushInbox() {
	for _, m := range c.inbox.Drain() {
		c.console.Println("%s: %s", m.Sender, m.Text)
	}
}

// ============================================================================
//                              会话
// ============================================================================

// Run 运行一个会话：启动监听，注册，然后逐行执行 in 中的命令
//
// in 读到 EOF 或 ctx 取消时返回 nil；会话因注销、注册被拒或服务端无响应
// 而结束时返回 *SessionEnded。
func (c *Client) Run(ctx context.Context, in io.Reader) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.conn.Serve(gctx, c.handle)
	})
	g.Go(func() error {
		defer cancel()
		return c.session(gctx, in)
	})

	err := g.Wait()
	logger.Info("会话结束", "id", c.id, "name", c.cfg.Name, "error", err)
	return err
}

func (c *Client) session(ctx context.Context, in io.Reader) error {
	lines := readLines(ctx, in)

	c.console.Println("Client start listening")
	logger.Info("客户端已启动", "id", c.id, "name", c.cfg.Name, "port", c.port, "server", c.server.String())

	if err := c.register(ctx); err != nil {
		return err
	}

	for {
		c.console.Prompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := c.Execute(ctx, line); err != nil {
				return err
			}
		}
	}
}

// maxLineSize 单行输入上限，超过数据报上限的消息由发送端拒绝
const maxLineSize = 1 << 20

// readLines 在后台逐行读取 in
//
// 阻塞在 in 上的读取无法被取消；会话结束后该 goroutine 随 in 关闭而退出。
func readLines(ctx context.Context, in io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			logger.Warn("读取输入失败", "error", err)
		}
	}()
	return out
}
