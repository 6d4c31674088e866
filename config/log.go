package config

import (
	"fmt"

	"github.com/dep2p/go-udpchat/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 级别配置字符串，例如 "server/coordinator=debug,info"
	Level string `json:"level"`

	// Format 输出格式：text 或 json
	Format string `json:"format"`

	// File 日志文件，空表示 stderr
	File string `json:"file"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, _, err := log.ParseLevelSpec(c.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch c.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	return nil
}
