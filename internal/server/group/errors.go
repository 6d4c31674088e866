package group

import "github.com/dep2p/go-udpchat/pkg/types"

var (
	// ErrGroupExists 群组已存在
	ErrGroupExists = types.ErrGroupExists

	// ErrGroupNotFound 群组不存在
	ErrGroupNotFound = types.ErrGroupNotFound

	// ErrNotAMember 不是群组成员
	ErrNotAMember = types.ErrNotAMember

	// ErrInvalidGroupName 群组名称非法
	ErrInvalidGroupName = types.ErrInvalidName
)
