// Package ratelimit 提供按来源的入站限速
//
// 每个来源 IP 一个令牌桶（golang.org/x/time/rate），
// 令牌桶保存在容量有限的 LRU 中，长时间不活跃的来源会被淘汰。
package ratelimit

import (
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-udpchat/config"
)

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("ratelimit: invalid config")

// Limiter 按来源限速接口
type Limiter interface {
	// Allow 报告来源是否还有令牌
	Allow(source string) bool
}

// Config 限速配置
type Config struct {
	// Rate 每个来源每秒允许的数据报数，0 表示不限速
	Rate float64

	// Burst 突发容量
	Burst int

	// CacheSize 最多跟踪的来源数量
	CacheSize int
}

// DefaultConfig 返回默认配置（不限速）
func DefaultConfig() Config {
	return Config{
		Rate:      0,
		Burst:     64,
		CacheSize: 4096,
	}
}

// ConfigFromUnified 从统一配置创建限速配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Rate:      cfg.Transport.RateLimit,
		Burst:     cfg.Transport.RateBurst,
		CacheSize: cfg.Transport.LimiterCacheSize,
	}
}

// Enabled 是否启用限速
func (c Config) Enabled() bool {
	return c.Rate > 0
}

// SourceLimiter 基于 LRU 的按来源令牌桶
type SourceLimiter struct {
	cfg Config

	// mu 保证同一来源的令牌桶只创建一次
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
}

var _ Limiter = (*SourceLimiter)(nil)

// New 创建限速器
//
// 未启用限速时返回 nil, nil；调用方以 nil 判断是否跳过限速。
func New(cfg Config) (*SourceLimiter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.Burst <= 0 || cfg.CacheSize <= 0 {
		return nil, ErrInvalidConfig
	}

	cache, err := lru.New[string, *rate.Limiter](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &SourceLimiter{cfg: cfg, buckets: cache}, nil
}

// Allow 消耗来源的一个令牌
func (l *SourceLimiter) Allow(source string) bool {
	return l.bucket(source).Allow()
}

// Tracked 当前跟踪的来源数量
func (l *SourceLimiter) Tracked() int {
	return l.buckets.Len()
}

func (l *SourceLimiter) bucket(source string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets.Get(source); ok {
		return b
	}
	b := rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst)
	l.buckets.Add(source, b)
	return b
}
