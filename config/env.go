package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// 环境变量（均使用 UDPCHAT_ 前缀）
const (
	EnvPrefix = "UDPCHAT_"

	EnvServerPort   = "SERVER_PORT"
	EnvGracePeriod  = "GRACE_PERIOD"
	EnvAckTimeout   = "ACK_TIMEOUT"
	EnvMaxAttempts  = "MAX_ATTEMPTS"
	EnvInboxSize    = "INBOX_SIZE"
	EnvRateLimit    = "RATE_LIMIT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvLogFile      = "LOG_FILE"
	EnvMetricsAddr  = "METRICS_ADDR"
	EnvMetricsOn    = "METRICS"
	EnvWorkers      = "WORKERS"
	EnvServerListen = "SERVER_LISTEN_IP"
)

// ApplyEnv 应用环境变量覆盖
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 无法解析的值被忽略。
func ApplyEnv(cfg *Config) {
	applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *Config, getenv func(string) string) {
	get := func(key string) string {
		return strings.TrimSpace(getenv(EnvPrefix + key))
	}

	if v := get(EnvServerListen); v != "" {
		cfg.Server.ListenIP = v
	}
	if v, ok := atoi(get(EnvServerPort)); ok {
		cfg.Server.Port = v
	}
	if v, ok := duration(get(EnvGracePeriod)); ok {
		cfg.Server.GracePeriod = v
	}
	if v, ok := atoi(get(EnvWorkers)); ok {
		cfg.Server.Workers = v
	}

	if v, ok := duration(get(EnvAckTimeout)); ok {
		cfg.Client.AckTimeout = v
	}
	if v, ok := atoi(get(EnvMaxAttempts)); ok {
		cfg.Client.MaxAttempts = v
	}
	if v, ok := atoi(get(EnvInboxSize)); ok {
		cfg.Client.InboxSize = v
	}

	if v := get(EnvRateLimit); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Transport.RateLimit = f
		}
	}

	if v := get(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := get(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := get(EnvLogFile); v != "" {
		cfg.Log.File = v
	}

	if v := get(EnvMetricsOn); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := get(EnvMetricsAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}
}

// ============================================================================
//                              辅助函数
// ============================================================================

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func duration(s string) (Duration, bool) {
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	return Duration(d), err == nil
}

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
