package envelope

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-udpchat/pkg/types"
)

// Message 按消息类型区分的具体消息
type Message interface {
	// Type 返回消息类型
	Type() types.MsgType

	// payload 返回载荷以及是否携带
	payload() (string, bool)
}

// ============================================================================
//                              客户端 → 服务端
// ============================================================================

// Register 注册请求
type Register struct{}

// Deregister 注销请求
type Deregister struct{}

// Kick 报告某个客户端无响应
type Kick struct {
	Target string
}

// CreateGroup 创建群组
type CreateGroup struct {
	Group string
}

// ListGroups 列出群组
type ListGroups struct{}

// JoinGroup 加入群组
type JoinGroup struct {
	Group string
}

// ListMembers 列出群成员
type ListMembers struct {
	Group string
}

// LeaveGroup 离开群组
type LeaveGroup struct {
	Group string
}

// SendGroup 发送群消息，载荷为 group;text
type SendGroup struct {
	Group string
	Text  string
}

func (Register) Type() types.MsgType    { return types.MsgRegister }
func (Deregister) Type() types.MsgType  { return types.MsgDeregister }
func (Kick) Type() types.MsgType        { return types.MsgKick }
func (CreateGroup) Type() types.MsgType { return types.MsgCreateGroup }
func (ListGroups) Type() types.MsgType  { return types.MsgListGroups }
func (JoinGroup) Type() types.MsgType   { return types.MsgJoinGroup }
func (ListMembers) Type() types.MsgType { return types.MsgListMembers }
func (LeaveGroup) Type() types.MsgType  { return types.MsgLeaveGroup }
func (SendGroup) Type() types.MsgType   { return types.MsgSendGroup }

func (Register) payload() (string, bool)      { return "", false }
func (Deregister) payload() (string, bool)    { return "", false }
func (m Kick) payload() (string, bool)        { return m.Target, true }
func (m CreateGroup) payload() (string, bool) { return m.Group, true }
func (ListGroups) payload() (string, bool)    { return "", false }
func (m JoinGroup) payload() (string, bool)   { return m.Group, true }
func (m ListMembers) payload() (string, bool) { return m.Group, true }
func (m LeaveGroup) payload() (string, bool)  { return m.Group, true }
func (m SendGroup) payload() (string, bool) {
	return m.Group + types.Separator + m.Text, true
}

// ============================================================================
//                              应答与推送
// ============================================================================

// Ack 确认
//
// 服务端的 ack 可能带有应答文本；客户端对群消息的 ack 载荷为 sender;timestamp。
type Ack struct {
	Info    string
	HasInfo bool
}

// GroupKey 将载荷解析为群消息标识 sender;timestamp
func (m Ack) GroupKey() (sender, timestamp string, ok bool) {
	if !m.HasInfo {
		return "", "", false
	}
	sender, timestamp, ok = strings.Cut(m.Info, types.Separator)
	if !ok || sender == "" || timestamp == "" {
		return "", "", false
	}
	return sender, timestamp, true
}

// RegAck 注册应答
type RegAck struct {
	Result string
}

// Table 目录广播
type Table struct {
	Directory types.Directory
}

// GroupMessage 服务端转发的群消息，载荷为 sender;timestamp;text
type GroupMessage struct {
	Sender    string
	Timestamp string
	Text      string
}

// PrivateMessage 客户端之间的私聊消息
type PrivateMessage struct {
	Text string
}

func (Ack) Type() types.MsgType            { return types.MsgAck }
func (RegAck) Type() types.MsgType         { return types.MsgRegAck }
func (Table) Type() types.MsgType          { return types.MsgTable }
func (GroupMessage) Type() types.MsgType   { return types.MsgGroupMessage }
func (PrivateMessage) Type() types.MsgType { return types.MsgPrivateMessage }

func (m Ack) payload() (string, bool)    { return m.Info, m.HasInfo }
func (m RegAck) payload() (string, bool) { return m.Result, true }
func (m Table) payload() (string, bool) {
	// Directory 的编码不会失败；Build 在此之前已单独处理
	s, _ := types.EncodeDirectory(m.Directory)
	return s, true
}
func (m GroupMessage) payload() (string, bool) {
	return strings.Join([]string{m.Sender, m.Timestamp, m.Text}, types.Separator), true
}
func (m PrivateMessage) payload() (string, bool) { return m.Text, true }

// ============================================================================
//                              Parse / Build
// ============================================================================

// Parse 将原始信封解析为具体消息
func Parse(e Envelope) (Message, error) {
	need := func() error {
		if !e.HasPayload {
			return fmt.Errorf("%w: %s requires payload", ErrMalformedEnvelope, e.Type)
		}
		return nil
	}

	switch e.Type {
	case types.MsgRegister:
		return Register{}, nil
	case types.MsgDeregister:
		return Deregister{}, nil
	case types.MsgListGroups:
		return ListGroups{}, nil

	case types.MsgKick:
		if err := need(); err != nil {
			return nil, err
		}
		return Kick{Target: e.Payload}, nil
	case types.MsgCreateGroup:
		if err := need(); err != nil {
			return nil, err
		}
		return CreateGroup{Group: e.Payload}, nil
	case types.MsgJoinGroup:
		if err := need(); err != nil {
			return nil, err
		}
		return JoinGroup{Group: e.Payload}, nil
	case types.MsgListMembers:
		if err := need(); err != nil {
			return nil, err
		}
		return ListMembers{Group: e.Payload}, nil
	case types.MsgLeaveGroup:
		if err := need(); err != nil {
			return nil, err
		}
		return LeaveGroup{Group: e.Payload}, nil

	case types.MsgSendGroup:
		if err := need(); err != nil {
			return nil, err
		}
		group, text, ok := strings.Cut(e.Payload, types.Separator)
		if !ok {
			return nil, fmt.Errorf("%w: send_group payload without separator", ErrMalformedEnvelope)
		}
		return SendGroup{Group: group, Text: text}, nil

	case types.MsgAck:
		return Ack{Info: e.Payload, HasInfo: e.HasPayload}, nil

	case types.MsgRegAck:
		if err := need(); err != nil {
			return nil, err
		}
		return RegAck{Result: e.Payload}, nil

	case types.MsgTable:
		if err := need(); err != nil {
			return nil, err
		}
		dir, err := types.DecodeDirectory(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		return Table{Directory: dir}, nil

	case types.MsgGroupMessage:
		if err := need(); err != nil {
			return nil, err
		}
		parts := strings.SplitN(e.Payload, types.Separator, 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: grp_msg payload has %d fields", ErrMalformedEnvelope, len(parts))
		}
		return GroupMessage{Sender: parts[0], Timestamp: parts[1], Text: parts[2]}, nil

	case types.MsgPrivateMessage:
		if err := need(); err != nil {
			return nil, err
		}
		return PrivateMessage{Text: e.Payload}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, e.Type)
	}
}

// Build 将具体消息封装为原始信封
func Build(port int, name string, m Message) (Envelope, error) {
	if m == nil {
		return Envelope{}, ErrNilMessage
	}
	if t, ok := m.(Table); ok {
		if _, err := types.EncodeDirectory(t.Directory); err != nil {
			return Envelope{}, fmt.Errorf("encode table: %w", err)
		}
	}

	payload, has := m.payload()
	e := Envelope{
		Port:       port,
		Name:       name,
		Type:       m.Type(),
		Payload:    payload,
		HasPayload: has,
	}
	if strings.ContainsAny(payload, "\r\n") {
		return Envelope{}, fmt.Errorf("%w: %s payload", ErrInvalidField, e.Type)
	}
	return e, nil
}

// Marshal 直接将具体消息编码为数据报字节
func Marshal(port int, name string, m Message) ([]byte, error) {
	e, err := Build(port, name, m)
	if err != nil {
		return nil, err
	}
	return Encode(e)
}
