package directory

import "github.com/dep2p/go-udpchat/pkg/types"

var (
	// ErrNameTaken 名称已注册过（无论是否在线）
	ErrNameTaken = types.ErrNameTaken

	// ErrAddressTaken (IP, port) 被在线客户端占用
	ErrAddressTaken = types.ErrAddressTaken
)
