package udpchat

import (
	"errors"

	"github.com/dep2p/go-udpchat/internal/client"
)

// 公共错误定义
var (
	// ErrAlreadyStopped 服务器已停止
	ErrAlreadyStopped = errors.New("server already stopped")
)

// SessionEnded 客户端会话结束原因
type SessionEnded = client.SessionEnded

// Reason 会话结束原因
type Reason = client.Reason

// 会话结束原因
const (
	ReasonDeregistered       = client.ReasonDeregistered
	ReasonNameTaken          = client.ReasonNameTaken
	ReasonAddressTaken       = client.ReasonAddressTaken
	ReasonServerUnresponsive = client.ReasonServerUnresponsive
)

// ExitCode 将 RunClient / StartServer 的结果映射为进程退出码
//
// nil（输入结束或被中断）与注销返回 0，其余返回 1。
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *SessionEnded
	if errors.As(err, &se) && se.Clean() {
		return 0
	}
	return 1
}
