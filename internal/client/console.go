package client

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Console 客户端控制台输出
//
// 所有输出以 ">>> " 开头；群组模式下提示符为 ">>> (<group>) "。
// 异步到达的消息会打断已显示的提示符，输出后重新显示提示符。
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	prompted bool
	prefix   string

	promptColor *color.Color
	noticeColor *color.Color
	alertColor  *color.Color
}

// NewConsole 创建控制台
func NewConsole(w io.Writer, colored bool) *Console {
	c := &Console{
		w:           w,
		promptColor: color.New(color.FgCyan),
		noticeColor: color.New(color.FgYellow),
		alertColor:  color.New(color.FgRed, color.Bold),
	}
	if !colored {
		c.promptColor.DisableColor()
		c.noticeColor.DisableColor()
		c.alertColor.DisableColor()
	}
	return c
}

// SetGroup 设置提示符中的群组，空字符串表示离开群组模式
func (c *Console) SetGroup(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefix = groupPrefix(group)
}

// Prompt 显示提示符
func (c *Console) Prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promptColor.Fprint(c.w, ">>> "+c.prefix)
	c.prompted = true
}

// Println 输出一行
func (c *Console) Println(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakPromptLocked()
	fmt.Fprintf(c.w, ">>> "+format+"\n", args...)
}

// Alert 输出一行告警
func (c *Console) Alert(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakPromptLocked()
	c.alertColor.Fprintf(c.w, ">>> "+format+"\n", args...)
}

// Notice 输出异步到达的消息；若提示符已显示则重新显示
func (c *Console) Notice(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reprompt := c.prompted
	c.breakPromptLocked()
	c.noticeColor.Fprintf(c.w, ">>> "+format+"\n", args...)
	if reprompt {
		c.promptColor.Fprint(c.w, ">>> "+c.prefix)
		c.prompted = true
	}
}

func (c *Console) breakPromptLocked() {
	if c.prompted {
		fmt.Fprintln(c.w)
		c.prompted = false
	}
}

func groupPrefix(group string) string {
	if group == "" {
		return ""
	}
	return "(" + group + ") "
}
