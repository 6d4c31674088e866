package types

// 服务端放在 ack / reg_ack 载荷中的应答文本
//
// 逻辑拒绝一律通过应答载荷返回，而不是传输层错误。
const (
	// ReplyRegistered 注册成功
	ReplyRegistered = "Successfully registered."
	// ReplyNameTaken 名称已被占用（包括已下线的历史名称）
	ReplyNameTaken = "Name taken."
	// ReplyAddressTaken (IP, port) 已被在线客户端占用
	ReplyAddressTaken = "(IP, port) combination taken."

	// ReplyCreated 群组已创建
	ReplyCreated = "created"
	// ReplyExists 群组已存在
	ReplyExists = "exists"
	// ReplyInvalidName 群组名称非法
	ReplyInvalidName = "invalid name"

	// ReplyJoined 已加入群组
	ReplyJoined = "joined"
	// ReplyNotExists 群组不存在
	ReplyNotExists = "not exists"

	// ReplyNotInGroup 请求者已不在群组中（通常是因为之前未确认群消息而被驱逐）
	ReplyNotInGroup = "already not in group"
)

// RegistrationError 将 reg_ack 载荷映射为错误，成功返回 nil
func RegistrationError(reply string) error {
	switch reply {
	case ReplyRegistered:
		return nil
	case ReplyNameTaken:
		return ErrNameTaken
	case ReplyAddressTaken:
		return ErrAddressTaken
	default:
		return ErrUnexpectedReply
	}
}
