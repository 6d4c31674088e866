package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
)

// Counter 并发安全的指标计数器
type Counter struct {
	datagramsIn  atomic.Int64
	datagramsOut atomic.Int64
	bytesIn      atomic.Int64
	bytesOut     atomic.Int64

	rateIn  *RateMeter
	rateOut *RateMeter

	mu      sync.Mutex
	dropped map[DropReason]int64
	events  map[Event]int64
}

// NewCounter 创建计数器
func NewCounter() *Counter {
	return NewCounterWithClock(clock.New())
}

// NewCounterWithClock 使用指定时钟创建计数器（测试用）
func NewCounterWithClock(clk clock.Clock) *Counter {
	return &Counter{
		rateIn:  NewRateMeterWithClock(clk),
		rateOut: NewRateMeterWithClock(clk),
		dropped: make(map[DropReason]int64),
		events:  make(map[Event]int64),
	}
}

// LogSentDatagram 记录出站数据报
func (c *Counter) LogSentDatagram(size int) {
	c.datagramsOut.Add(1)
	c.bytesOut.Add(int64(size))
	c.rateOut.Add(int64(size))
}

// LogRecvDatagram 记录入站数据报
func (c *Counter) LogRecvDatagram(size int) {
	c.datagramsIn.Add(1)
	c.bytesIn.Add(int64(size))
	c.rateIn.Add(int64(size))
}

// LogDropped 记录丢弃
func (c *Counter) LogDropped(reason DropReason) {
	c.mu.Lock()
	c.dropped[reason]++
	c.mu.Unlock()
}

// LogEvent 记录业务事件
func (c *Counter) LogEvent(e Event, n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	c.events[e] += int64(n)
	c.mu.Unlock()
}

// Snapshot 返回当前快照
func (c *Counter) Snapshot() Stats {
	s := Stats{
		DatagramsIn:  c.datagramsIn.Load(),
		DatagramsOut: c.datagramsOut.Load(),
		BytesIn:      c.bytesIn.Load(),
		BytesOut:     c.bytesOut.Load(),
		RateIn:       c.rateIn.Rate(),
		RateOut:      c.rateOut.Rate(),
	}

	c.mu.Lock()
	s.Dropped = make(map[DropReason]int64, len(c.dropped))
	for k, v := range c.dropped {
		s.Dropped[k] = v
	}
	s.Events = make(map[Event]int64, len(c.events))
	for k, v := range c.events {
		s.Events[k] = v
	}
	c.mu.Unlock()

	return s
}

// Reset 清零
func (c *Counter) Reset() {
	c.datagramsIn.Store(0)
	c.datagramsOut.Store(0)
	c.bytesIn.Store(0)
	c.bytesOut.Store(0)
	c.rateIn.Reset()
	c.rateOut.Reset()

	c.mu.Lock()
	c.dropped = make(map[DropReason]int64)
	c.events = make(map[Event]int64)
	c.mu.Unlock()
}
