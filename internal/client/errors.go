package client

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-udpchat/pkg/types"
)

var (
	// ErrNilConn 连接为空
	ErrNilConn = errors.New("client: nil conn")

	// ErrAlreadyRunning 会话已在运行
	ErrAlreadyRunning = errors.New("client: session already running")
)

// Reason 会话结束原因
type Reason string

const (
	// ReasonDeregistered 用户注销
	ReasonDeregistered Reason = "deregistered"
	// ReasonNameTaken 注册被拒：名称已占用
	ReasonNameTaken Reason = "name taken"
	// ReasonAddressTaken 注册被拒：地址已占用
	ReasonAddressTaken Reason = "address taken"
	// ReasonServerUnresponsive 服务端无响应
	ReasonServerUnresponsive Reason = "server unresponsive"
)

// SessionEnded 会话结束
//
// Run 以该错误返回终止原因；EOF 与上下文取消返回 nil。
type SessionEnded struct {
	Reason Reason
}

func (e *SessionEnded) Error() string {
	return fmt.Sprintf("session ended: %s", e.Reason)
}

// Unwrap 映射到领域错误
func (e *SessionEnded) Unwrap() error {
	switch e.Reason {
	case ReasonNameTaken:
		return types.ErrNameTaken
	case ReasonAddressTaken:
		return types.ErrAddressTaken
	case ReasonServerUnresponsive:
		return types.ErrServerUnresponsive
	default:
		return nil
	}
}

// Clean 是否为正常结束（注销）
func (e *SessionEnded) Clean() bool {
	return e.Reason == ReasonDeregistered
}

func ended(r Reason) *SessionEnded {
	return &SessionEnded{Reason: r}
}
