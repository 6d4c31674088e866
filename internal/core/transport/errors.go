package transport

import "errors"

var (
	// ErrClosed 传输已关闭
	ErrClosed = errors.New("transport: closed")

	// ErrNilAddress 目标地址为空
	ErrNilAddress = errors.New("transport: nil address")

	// ErrInvalidListenAddr 监听地址无效
	ErrInvalidListenAddr = errors.New("transport: invalid listen address")

	// ErrDatagramTooLarge 编码后的信封超过单个数据报的上限
	ErrDatagramTooLarge = errors.New("transport: datagram too large")
)
