package client

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Reply 对端或服务端的确认内容
type Reply struct {
	// Info ack 载荷
	Info string

	// HasInfo ack 是否携带载荷
	HasInfo bool
}

// slot 单个对端的待确认请求
type slot struct {
	acked bool
	reply Reply
	ready chan struct{}
}

// SlotTable 按对端名称索引的确认槽
//
// 请求引擎在首次发送前 Arm，重试期间保持不变，解释结果后 Take 复位；
// 监听方收到 ack 时调用 Ack。未 Arm 的名称上的 ack 被忽略。
type SlotTable struct {
	mu    sync.Mutex
	clk   clock.Clock
	slots map[string]*slot
}

// NewSlotTable 创建确认槽表
func NewSlotTable(clk clock.Clock) *SlotTable {
	if clk == nil {
		clk = clock.New()
	}
	return &SlotTable{
		clk:   clk,
		slots: make(map[string]*slot),
	}
}

// Arm 为 name 准备一个新的槽，覆盖旧状态
func (t *SlotTable) Arm(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[name] = &slot{ready: make(chan struct{})}
}

// Ack 记录来自 name 的确认，返回槽是否处于等待状态
func (t *SlotTable) Ack(name string, r Reply) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[name]
	if !ok || s.acked {
		return false
	}
	s.acked = true
	s.reply = r
	close(s.ready)
	return true
}

// Wait 在 d 时间内等待 name 的确认
//
// 槽已确认时立即返回。ctx 取消时返回 false。
func (t *SlotTable) Wait(ctx context.Context, name string, d time.Duration) (Reply, bool) {
	t.mu.Lock()
	s, ok := t.slots[name]
	t.mu.Unlock()
	if !ok {
		return Reply{}, false
	}

	timer := t.clk.Timer(d)
	defer timer.Stop()

	select {
	case <-s.ready:
		t.mu.Lock()
		defer t.mu.Unlock()
		return s.reply, true
	case <-timer.C:
		return Reply{}, false
	case <-ctx.Done():
		return Reply{}, false
	}
}

// Take 取出并复位 name 的槽
func (t *SlotTable) Take(name string) (Reply, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[name]
	if !ok {
		return Reply{}, false
	}
	delete(t.slots, name)
	return s.reply, s.acked
}

// Armed 返回 name 的槽是否在等待
func (t *SlotTable) Armed(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[name]
	return ok && !s.acked
}
