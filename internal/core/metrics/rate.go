package metrics

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// RateMeter - 速率计算器
// ============================================================================

// windowSize 滑动窗口桶数（每桶 1 秒）
const windowSize = 60

// RateMeter 速率计算器（基于滑动窗口）
//
// 使用 60 个 1 秒桶来计算最近 60 秒的平均速率。
type RateMeter struct {
	clk clock.Clock

	mu       sync.RWMutex
	buckets  [windowSize]int64
	lastIdx  int
	lastTime time.Time
}

// NewRateMeter 创建速率计算器
func NewRateMeter() *RateMeter {
	return NewRateMeterWithClock(clock.New())
}

// NewRateMeterWithClock 使用指定时钟创建速率计算器
func NewRateMeterWithClock(clk clock.Clock) *RateMeter {
	return &RateMeter{
		clk:      clk,
		lastTime: clk.Now(),
	}
}

// Add 添加字节数到当前桶
func (r *RateMeter) Add(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advanceLocked()
	r.buckets[r.lastIdx] += n
}

// advanceLocked 按流逝的整秒数推进窗口，清空跳过的桶
func (r *RateMeter) advanceLocked() {
	now := r.clk.Now()
	elapsed := now.Sub(r.lastTime)
	if elapsed < time.Second {
		return
	}

	seconds := int(elapsed / time.Second)
	if seconds >= windowSize {
		r.buckets = [windowSize]int64{}
		r.lastIdx = 0
	} else {
		for i := 0; i < seconds; i++ {
			r.lastIdx = (r.lastIdx + 1) % windowSize
			r.buckets[r.lastIdx] = 0
		}
	}
	r.lastTime = r.lastTime.Add(time.Duration(seconds) * time.Second)
}

// Rate 返回平均速率（字节/秒）
func (r *RateMeter) Rate() float64 {
	return float64(r.Total()) / windowSize
}

// Total 返回窗口内的总量
func (r *RateMeter) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advanceLocked()
	var total int64
	for _, v := range r.buckets {
		total += v
	}
	return total
}

// Reset 重置速率计算器
func (r *RateMeter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = [windowSize]int64{}
	r.lastIdx = 0
	r.lastTime = r.clk.Now()
}
