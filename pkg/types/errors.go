// Package types 定义 udpchat 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              协议相关错误
// ============================================================================

var (
	// ErrMalformedEnvelope 信封格式错误（行数不符或端口不是整数），直接丢弃
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrUnknownMsgType 未知消息类型
	ErrUnknownMsgType = errors.New("unknown message type")

	// ErrInvalidName 名称非法
	ErrInvalidName = errors.New("invalid name")

	// ErrUnexpectedReply 无法识别的应答载荷
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// ============================================================================
//                              注册相关错误
// ============================================================================

var (
	// ErrNameTaken 名称已被注册过（无论是否在线）
	ErrNameTaken = errors.New("name taken")

	// ErrAddressTaken (IP, port) 已被在线客户端占用
	ErrAddressTaken = errors.New("address taken")
)

// ============================================================================
//                              群组相关错误
// ============================================================================

var (
	// ErrGroupExists 群组已存在
	ErrGroupExists = errors.New("group already exists")

	// ErrGroupNotFound 群组不存在
	ErrGroupNotFound = errors.New("group not found")

	// ErrNotAMember 不是群组成员
	ErrNotAMember = errors.New("not a member")
)

// ============================================================================
//                              可靠性相关错误
// ============================================================================

var (
	// ErrAckTimeout 等待确认超时
	ErrAckTimeout = errors.New("ack timeout")

	// ErrPeerUnresponsive 对端客户端无响应
	ErrPeerUnresponsive = errors.New("peer unresponsive")

	// ErrServerUnresponsive 服务端无响应（对客户端会话是致命的）
	ErrServerUnresponsive = errors.New("server unresponsive")
)
