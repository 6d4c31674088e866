package coordinator

import "errors"

var (
	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("coordinator: already started")

	// ErrNotStarted 未启动
	ErrNotStarted = errors.New("coordinator: not started")

	// ErrNilConn 传输为空
	ErrNilConn = errors.New("coordinator: conn is nil")
)
