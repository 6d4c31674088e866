package envelope

import (
	"errors"

	"github.com/dep2p/go-udpchat/pkg/types"
)

var (
	// ErrMalformedEnvelope 信封格式错误
	ErrMalformedEnvelope = types.ErrMalformedEnvelope

	// ErrUnknownType 未知消息类型
	ErrUnknownType = types.ErrUnknownMsgType

	// ErrInvalidField 字段包含换行，无法编码
	ErrInvalidField = errors.New("envelope: field contains newline")

	// ErrNilMessage 消息为空
	ErrNilMessage = errors.New("envelope: message is nil")
)
