package types

import (
	"fmt"
	"strings"
)

const (
	// ServerName 服务端在信封中使用的保留名称
	ServerName = "server"

	// Separator 名称列表与群消息载荷的分隔符
	Separator = ";"
)

// ValidateClientName 校验客户端名称
//
// 名称不能为空、不能是保留名称 "server"，不能包含分隔符、空白或换行。
func ValidateClientName(name string) error {
	if name == ServerName {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return validateToken(name)
}

// ValidateGroupName 校验群组名称
func ValidateGroupName(name string) error {
	return validateToken(name)
}

func validateToken(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.Contains(name, Separator) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, Separator)
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	return nil
}

// JoinNames 用分隔符拼接名称列表
func JoinNames(names []string) string {
	return strings.Join(names, Separator)
}

// SplitNames 拆分名称列表，空串返回 nil
func SplitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, Separator)
}
