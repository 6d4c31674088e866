// Package timer 提供按键管理的一次性定时器
//
// 同一个键同时只有一个定时器：重新调度会替换旧定时器，
// 被替换或取消的定时器即使已经触发也不会再执行回调。
// 时间来源是 benbjohnson/clock，测试中可用 clock.NewMock() 推进时间。
package timer

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler 键控定时器调度器
type Scheduler struct {
	clk clock.Clock

	mu      sync.Mutex
	timers  map[string]*entry
	gen     uint64
	stopped bool
}

type entry struct {
	timer *clock.Timer
	gen   uint64
}

// New 创建调度器，clk 为 nil 时使用真实时钟
func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		clk:    clk,
		timers: make(map[string]*entry),
	}
}

// Clock 返回调度器使用的时钟
func (s *Scheduler) Clock() clock.Clock {
	return s.clk
}

// Schedule 在 d 之后执行 fn，替换同键的旧定时器
//
// 调度器已停止时返回 false。
func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if old, ok := s.timers[key]; ok {
		old.timer.Stop()
	}

	s.gen++
	gen := s.gen
	t := s.clk.AfterFunc(d, func() {
		if s.claim(key, gen) {
			fn()
		}
	})
	s.timers[key] = &entry{timer: t, gen: gen}
	return true
}

// claim 触发时检查定时器仍是该键的当前定时器，并将其移除
func (s *Scheduler) claim(key string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timers[key]
	if !ok || e.gen != gen {
		return false
	}
	delete(s.timers, key)
	return true
}

// Cancel 取消定时器，键不存在时返回 false
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timers[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.timers, key)
	return true
}

// Pending 尚未触发的定时器数量
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop 取消全部定时器，之后的 Schedule 不再生效
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, key)
	}
}
