package config

import "errors"

// TransportConfig UDP 传输配置
type TransportConfig struct {
	// ReadBufferSize 单个数据报读缓冲大小
	ReadBufferSize int `json:"read_buffer_size"`

	// RateLimit 每个来源 IP 每秒允许的入站数据报数，0 表示不限速
	RateLimit float64 `json:"rate_limit"`

	// RateBurst 令牌桶突发容量
	RateBurst int `json:"rate_burst"`

	// LimiterCacheSize 限速器缓存的来源数量上限（LRU）
	LimiterCacheSize int `json:"limiter_cache_size"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ReadBufferSize:   64 * 1024,
		RateLimit:        0,
		RateBurst:        64,
		LimiterCacheSize: 4096,
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.ReadBufferSize < 512 {
		return errors.New("transport read buffer size must be at least 512")
	}
	if c.ReadBufferSize > 64*1024 {
		return errors.New("transport read buffer size must be at most 65536")
	}
	if c.RateLimit < 0 {
		return errors.New("transport rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return errors.New("transport rate burst must be positive when rate limit is set")
	}
	if c.RateLimit > 0 && c.LimiterCacheSize <= 0 {
		return errors.New("transport limiter cache size must be positive when rate limit is set")
	}
	return nil
}
