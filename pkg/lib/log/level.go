package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ParseFormat 解析输出格式，未知值按文本处理
func ParseFormat(name string) Format {
	if strings.EqualFold(strings.TrimSpace(name), "json") {
		return FormatJSON
	}
	return FormatText
}

// ParseLevelSpec 解析级别配置字符串
//
// 格式: 组件=级别,组件=级别,默认级别
// 未给出默认级别时使用 info。
func ParseLevelSpec(spec string) (slog.Level, map[string]slog.Level, error) {
	def := slog.LevelInfo
	components := make(map[string]slog.Level)

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if name, levelName, ok := strings.Cut(part, "="); ok {
			level, valid := ParseLevel(levelName)
			if !valid {
				return def, nil, fmt.Errorf("invalid log level %q for %q", levelName, name)
			}
			components[strings.TrimSpace(name)] = level
			continue
		}

		level, valid := ParseLevel(part)
		if !valid {
			return def, nil, fmt.Errorf("invalid log level %q", part)
		}
		def = level
	}

	return def, components, nil
}
