// Package log 提供 udpchat 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，提供简洁的日志 API：
//   - Logger(component) 返回懒加载 logger，每次调用都使用当前的 slog.Default()
//   - Setup 安装全局 handler，支持按组件配置级别
//
// 级别配置字符串格式（与 UDPCHAT_LOG_LEVEL 相同）：
//
//	组件=级别,组件=级别,默认级别
//	示例: server/coordinator=debug,client=warn,info
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// componentKey 组件属性名
const componentKey = "component"

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Options 日志安装选项
type Options struct {
	// Level 默认级别
	Level slog.Level

	// ComponentLevels 各组件的级别，覆盖默认级别
	ComponentLevels map[string]slog.Level

	// Format 输出格式
	Format Format

	// Output 输出目标，nil 表示 stderr
	Output io.Writer

	// AddSource 是否添加源码位置
	AddSource bool
}

// Setup 按选项安装全局 logger 并返回
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	// 底层 handler 放行所有配置中的最低级别，细粒度过滤交给 componentHandler
	floor := opts.Level
	for _, lvl := range opts.ComponentLevels {
		if lvl < floor {
			floor = lvl
		}
	}
	hopts := &slog.HandlerOptions{Level: floor, AddSource: opts.AddSource}

	var inner slog.Handler
	if opts.Format == FormatJSON {
		inner = slog.NewJSONHandler(out, hopts)
	} else {
		inner = slog.NewTextHandler(out, hopts)
	}

	levels := make(map[string]slog.Level, len(opts.ComponentLevels))
	for k, v := range opts.ComponentLevels {
		levels[k] = v
	}

	l := slog.New(&componentHandler{
		inner:    inner,
		fallback: opts.Level,
		levels:   levels,
	})
	slog.SetDefault(l)
	return l
}

// SetOutputWithLevel 同时设置日志输出目标和级别
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	Setup(Options{Level: level, Output: w})
}

// Discard 丢弃所有日志（测试用）
func Discard() {
	Setup(Options{Level: LevelError + 1, Output: io.Discard})
}

// ============================================================================
//                              componentHandler
// ============================================================================

// componentHandler 支持按组件控制级别的 slog.Handler
//
// 组件名来自 With("component", ...) 附加的属性。
type componentHandler struct {
	inner     slog.Handler
	fallback  slog.Level
	levels    map[string]slog.Level
	component string
}

// Enabled 检查是否启用指定级别
func (h *componentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	min := h.fallback
	if lvl, ok := h.levels[h.component]; ok && h.component != "" {
		min = lvl
	}
	return level >= min && h.inner.Enabled(ctx, level)
}

// Handle 处理日志记录
func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

// WithAttrs 添加属性，记录组件名
func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	component := h.component
	for _, a := range attrs {
		if a.Key == componentKey {
			component = a.Value.String()
		}
	}
	return &componentHandler{
		inner:     h.inner.WithAttrs(attrs),
		fallback:  h.fallback,
		levels:    h.levels,
		component: component,
	}
}

// WithGroup 添加组
func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{
		inner:     h.inner.WithGroup(name),
		fallback:  h.fallback,
		levels:    h.levels,
		component: h.component,
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时（例如 CLI 解析完参数后）切换日志输出目标。
//
// 使用方式：
//
//	var logger = log.Logger("server/coordinator")
//	logger.Info("服务已启动", "addr", addr)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) current() *slog.Logger {
	return slog.Default().With(componentKey, l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.current().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.current().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.current().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.current().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.current().DebugContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.current().With(args...)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}
