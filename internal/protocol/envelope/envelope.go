package envelope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dep2p/go-udpchat/pkg/types"
)

// 信封标签行
const (
	labelPort = "port:"
	labelName = "name"
	labelType = "type:"
	labelMsg  = "msg:"
)

// 行数
const (
	linesBare    = 6
	linesPayload = 8
)

// Envelope 原始信封
type Envelope struct {
	// Port 发送方监听端口（接收方据此回复）
	Port int

	// Name 发送方名称，服务端为 "server"
	Name string

	// Type 消息类型
	Type types.MsgType

	// Payload 载荷
	Payload string

	// HasPayload 是否携带载荷（空载荷与无载荷不同）
	HasPayload bool
}

// New 创建不带载荷的信封
func New(port int, name string, t types.MsgType) Envelope {
	return Envelope{Port: port, Name: name, Type: t}
}

// WithPayload 创建带载荷的信封
func WithPayload(port int, name string, t types.MsgType, payload string) Envelope {
	return Envelope{Port: port, Name: name, Type: t, Payload: payload, HasPayload: true}
}

// Encode 编码为数据报字节
func Encode(e Envelope) ([]byte, error) {
	if strings.ContainsAny(e.Name, "\r\n") {
		return nil, fmt.Errorf("%w: name", ErrInvalidField)
	}
	if e.HasPayload && strings.ContainsAny(e.Payload, "\r\n") {
		return nil, fmt.Errorf("%w: payload", ErrInvalidField)
	}

	lines := []string{
		labelPort, strconv.Itoa(e.Port),
		labelName, e.Name,
		labelType, e.Type.String(),
	}
	if e.HasPayload {
		lines = append(lines, labelMsg, e.Payload)
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// Decode 从数据报字节解码
//
// 行数必须是 6 或 8，端口行必须是整数；标签行不做校验。
// 未知的类型字符串不算格式错误，解码为 MsgUnknown，由调用方丢弃。
func Decode(data []byte) (Envelope, error) {
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	if len(lines) != linesBare && len(lines) != linesPayload {
		return Envelope{}, fmt.Errorf("%w: %d lines", ErrMalformedEnvelope, len(lines))
	}

	port, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: port %q", ErrMalformedEnvelope, lines[1])
	}

	t, _ := types.ParseMsgType(lines[5])
	e := Envelope{
		Port: port,
		Name: lines[3],
		Type: t,
	}
	if len(lines) == linesPayload {
		e.Payload = lines[7]
		e.HasPayload = true
	}
	return e, nil
}

// String 返回便于日志输出的简要描述
func (e Envelope) String() string {
	if e.HasPayload {
		return fmt.Sprintf("%s from %s:%d (%d bytes)", e.Type, e.Name, e.Port, len(e.Payload))
	}
	return fmt.Sprintf("%s from %s:%d", e.Type, e.Name, e.Port)
}
