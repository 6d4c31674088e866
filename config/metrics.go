package config

import "errors"

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否收集指标
	Enabled bool `json:"enabled"`

	// ListenAddr Prometheus /metrics 端点地址，空表示不暴露
	ListenAddr string `json:"listen_addr"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: true,
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.ListenAddr != "" && !c.Enabled {
		return errors.New("metrics listen addr requires metrics to be enabled")
	}
	return nil
}
