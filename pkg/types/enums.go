package types

import "fmt"

// ============================================================================
//                              MsgType - 消息类型
// ============================================================================

// MsgType 线上信封中的消息类型
//
// 消息类型是封闭枚举，字符串形式直接出现在信封第 6 行。
type MsgType int

const (
	// MsgUnknown 未知类型
	MsgUnknown MsgType = iota

	// ─── 客户端 → 服务端 ───

	// MsgRegister 注册
	MsgRegister
	// MsgDeregister 注销
	MsgDeregister
	// MsgKick 举报无响应节点
	MsgKick
	// MsgCreateGroup 创建群组
	MsgCreateGroup
	// MsgListGroups 列出群组
	MsgListGroups
	// MsgJoinGroup 加入群组
	MsgJoinGroup
	// MsgListMembers 列出群成员
	MsgListMembers
	// MsgLeaveGroup 离开群组
	MsgLeaveGroup
	// MsgSendGroup 发送群消息
	MsgSendGroup

	// ─── 双向 ───

	// MsgAck 确认（可携带附加信息）
	MsgAck

	// ─── 服务端 → 客户端 ───

	// MsgRegAck 注册结果
	MsgRegAck
	// MsgTable 目录快照广播
	MsgTable
	// MsgGroupMessage 群消息扇出
	MsgGroupMessage

	// ─── 客户端 → 客户端 ───

	// MsgPrivateMessage 私聊消息
	MsgPrivateMessage
)

var msgTypeNames = map[MsgType]string{
	MsgRegister:       "reg",
	MsgDeregister:     "dereg",
	MsgKick:           "kick",
	MsgCreateGroup:    "create_group",
	MsgListGroups:     "list_groups",
	MsgJoinGroup:      "join_group",
	MsgListMembers:    "list_members",
	MsgLeaveGroup:     "leave_group",
	MsgSendGroup:      "send_group",
	MsgAck:            "ack",
	MsgRegAck:         "reg_ack",
	MsgTable:          "table",
	MsgGroupMessage:   "grp_msg",
	MsgPrivateMessage: "pri_msg",
}

var msgTypeByName = func() map[string]MsgType {
	m := make(map[string]MsgType, len(msgTypeNames))
	for t, name := range msgTypeNames {
		m[name] = t
	}
	return m
}()

// String 返回线上字符串表示
func (t MsgType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseMsgType 解析线上字符串
func ParseMsgType(s string) (MsgType, error) {
	if t, ok := msgTypeByName[s]; ok {
		return t, nil
	}
	return MsgUnknown, fmt.Errorf("%w: %q", ErrUnknownMsgType, s)
}

// IsServerBound 是否为发往服务端的请求类型
func (t MsgType) IsServerBound() bool {
	return t >= MsgRegister && t <= MsgSendGroup
}
