package delivery

import (
	"net"
	"time"

	"github.com/dep2p/go-udpchat/internal/core/taskpool"
	"github.com/dep2p/go-udpchat/pkg/types"
)

// Key 群消息标识
type Key struct {
	Sender    string
	Timestamp string
}

// String 返回 sender;timestamp 形式，与 ack 载荷一致
func (k Key) String() string {
	return k.Sender + types.Separator + k.Timestamp
}

// AckResult 处理 ack 的结果
type AckResult int

const (
	// AckRecorded 已记录
	AckRecorded AckResult = iota
	// AckLate 条目已不存在（宽限期已过或全部确认），空操作
	AckLate
	// AckUnexpected 确认者不是该消息的接收者
	AckUnexpected
)

// String 返回结果字符串
func (r AckResult) String() string {
	switch r {
	case AckRecorded:
		return "recorded"
	case AckLate:
		return "late"
	case AckUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// EvictionReport 宽限期到期时的处理结果
type EvictionReport struct {
	// Key 消息标识
	Key Key

	// Group 群组名称
	Group string

	// Unacked 未确认的接收者
	Unacked []string

	// Evicted 实际被移出群组的成员（已主动离开的不在其中）
	Evicted []string
}

// pendingAck 待确认条目
type pendingAck struct {
	group     string
	acks      map[string]bool
	createdAt time.Time
}

// AddressBook 查找接收者地址
type AddressBook interface {
	Lookup(name string) (*net.UDPAddr, bool)
}

// Membership 移出未确认的成员
type Membership interface {
	Evict(group string, names []string) []string
}

// Submitter 异步执行发送任务
type Submitter interface {
	Submit(name string, fn taskpool.Task) error
}
