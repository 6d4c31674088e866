package delivery

import (
	"fmt"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/timer"
	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/pkg/lib/log"
	"github.com/dep2p/go-udpchat/pkg/types"
)

var logger = log.Logger("server/delivery")

// Engine 群消息投递与确认引擎
type Engine struct {
	cfg      Config
	book     AddressBook
	groups   Membership
	sender   transport.Sender
	pool     Submitter
	clk      clock.Clock
	timers   *timer.Scheduler
	reporter metrics.Reporter
	observer func(EvictionReport)

	mu      sync.Mutex
	pending map[Key]*pendingAck
	lastTS  int64
	closed  bool
}

// New 创建引擎
func New(cfg Config, book AddressBook, groups Membership, sender transport.Sender, pool Submitter, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		book:     book,
		groups:   groups,
		sender:   sender,
		pool:     pool,
		clk:      clock.New(),
		reporter: metrics.NopReporter{},
		pending:  make(map[Key]*pendingAck),
		lastTS:   -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.GracePeriod <= 0 {
		e.cfg.GracePeriod = DefaultConfig().GracePeriod
	}
	e.timers = timer.New(e.clk)
	return e
}

// Publish 登记并扇出一条群消息
//
// recipients 由调用方在群组锁内取得（当前成员去掉发送者）。
// 没有接收者时不登记也不发送。
func (e *Engine) Publish(sender, group, text string, recipients []string) (Key, error) {
	if len(recipients) == 0 {
		return Key{}, ErrNoRecipients
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Key{}, ErrClosed
	}
	key := Key{Sender: sender, Timestamp: e.stampLocked()}
	acks := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		acks[r] = false
	}
	e.pending[key] = &pendingAck{
		group:     group,
		acks:      acks,
		createdAt: e.clk.Now(),
	}
	e.mu.Unlock()

	e.timers.Schedule(key.String(), e.cfg.GracePeriod, func() {
		e.expire(key)
	})

	msg := envelope.GroupMessage{Sender: sender, Timestamp: key.Timestamp, Text: text}
	env, err := envelope.Build(e.cfg.Port, types.ServerName, msg)
	if err != nil {
		// 条目已登记，宽限期到期后接收者会被当作未确认处理
		return key, fmt.Errorf("build grp_msg: %w", err)
	}

	for _, r := range recipients {
		addr, ok := e.book.Lookup(r)
		if !ok {
			logger.Warn("接收者没有已知地址", "group", group, "recipient", r)
			continue
		}
		if err := e.pool.Submit("grp_msg", func() error {
			return e.sender.Send(addr, env)
		}); err != nil {
			logger.Debug("群消息发送任务未提交", "recipient", r, "error", err)
		}
	}

	e.reporter.LogEvent(metrics.EventGroupMessage, 1)
	logger.Debug("群消息已扇出", "key", key.String(), "group", group, "recipients", len(recipients))
	return key, nil
}

// HandleAck 记录接收者对群消息的确认
func (e *Engine) HandleAck(sender, timestamp, member string) AckResult {
	key := Key{Sender: sender, Timestamp: timestamp}

	e.mu.Lock()
	p, ok := e.pending[key]
	if !ok {
		e.mu.Unlock()
		e.reporter.LogEvent(metrics.EventAckLate, 1)
		logger.Debug("迟到的确认", "key", key.String(), "member", member)
		return AckLate
	}
	if _, ok := p.acks[member]; !ok {
		e.mu.Unlock()
		logger.Debug("非接收者的确认", "key", key.String(), "member", member)
		return AckUnexpected
	}
	p.acks[member] = true

	complete := true
	for _, acked := range p.acks {
		if !acked {
			complete = false
			break
		}
	}
	if complete {
		delete(e.pending, key)
	}
	e.mu.Unlock()

	if complete {
		e.timers.Cancel(key.String())
		logger.Debug("群消息已全部确认", "key", key.String())
	}
	e.reporter.LogEvent(metrics.EventAckRecorded, 1)
	return AckRecorded
}

// expire 宽限期到期：删除条目，移出未确认的接收者
func (e *Engine) expire(key Key) {
	e.mu.Lock()
	p, ok := e.pending[key]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.pending, key)
	e.mu.Unlock()

	var unacked []string
	for member, acked := range p.acks {
		if !acked {
			unacked = append(unacked, member)
		}
	}
	if len(unacked) == 0 {
		return
	}
	sort.Strings(unacked)

	evicted := e.groups.Evict(p.group, unacked)
	report := EvictionReport{
		Key:     key,
		Group:   p.group,
		Unacked: unacked,
		Evicted: evicted,
	}

	e.reporter.LogEvent(metrics.EventMemberEvicted, len(evicted))
	logger.Info("未确认成员已移出群组",
		"key", key.String(),
		"group", p.group,
		"unacked", unacked,
		"evicted", evicted,
		"waited", e.clk.Since(p.createdAt))

	if e.observer != nil {
		e.observer(report)
	}
}

// stampLocked 生成严格递增的时间戳 <秒>.<纳秒>
func (e *Engine) stampLocked() string {
	ns := e.clk.Now().UnixNano()
	if ns <= e.lastTS {
		ns = e.lastTS + 1
	}
	e.lastTS = ns
	return fmt.Sprintf("%d.%09d", ns/1e9, ns%1e9)
}

// Pending 待确认条目数
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Close 取消全部定时器并丢弃待确认条目
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	n := len(e.pending)
	e.pending = make(map[Key]*pendingAck)
	e.mu.Unlock()

	e.timers.Stop()
	logger.Debug("投递引擎已关闭", "dropped", n)
	return nil
}
