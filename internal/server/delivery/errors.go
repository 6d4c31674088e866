package delivery

import "errors"

var (
	// ErrClosed 引擎已关闭
	ErrClosed = errors.New("delivery: engine closed")

	// ErrNoRecipients 没有接收者
	ErrNoRecipients = errors.New("delivery: no recipients")
)
