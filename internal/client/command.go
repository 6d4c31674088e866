package client

import (
	"errors"
	"strings"

	"github.com/dep2p/go-udpchat/pkg/types"
)

var (
	// ErrInvalidCommand 无法识别或在当前模式下不允许的命令
	ErrInvalidCommand = errors.New("invalid command")

	// ErrGroupNameSeparator 群组名称包含分隔符
	ErrGroupNameSeparator = errors.New("group name contains separator")
)

// CommandKind 用户命令类型
type CommandKind int

const (
	// CmdSend send <name> <text...>
	CmdSend CommandKind = iota + 1
	// CmdDereg dereg <own-name>
	CmdDereg
	// CmdCreateGroup create_group <group>
	CmdCreateGroup
	// CmdListGroups list_groups
	CmdListGroups
	// CmdJoinGroup join_group <group>
	CmdJoinGroup
	// CmdSendGroup send_group <text...>
	CmdSendGroup
	// CmdListMembers list_members
	CmdListMembers
	// CmdLeaveGroup leave_group
	CmdLeaveGroup
)

var commandNames = map[CommandKind]string{
	CmdSend:        "send",
	CmdDereg:       "dereg",
	CmdCreateGroup: "create_group",
	CmdListGroups:  "list_groups",
	CmdJoinGroup:   "join_group",
	CmdSendGroup:   "send_group",
	CmdListMembers: "list_members",
	CmdLeaveGroup:  "leave_group",
}

func (k CommandKind) String() string {
	if s, ok := commandNames[k]; ok {
		return s
	}
	return "unknown"
}

// Command 解析后的用户命令
type Command struct {
	Kind CommandKind

	// Target 私聊目标
	Target string

	// Group 群组名称；群组模式下的命令取当前群组
	Group string

	// Text 消息正文，单词之间以单个空格连接
	Text string
}

// ParseCommand 解析一行用户输入
//
// self 为本客户端名称，group 为当前所在群组（空表示不在群组模式）。
// 群组模式下只允许 send_group、list_members、leave_group 与 dereg。
func ParseCommand(line, self, group string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrInvalidCommand
	}
	inGroup := group != ""
	args := fields[1:]

	switch fields[0] {
	case "send":
		if inGroup || len(args) < 1 {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: CmdSend, Target: args[0], Text: strings.Join(args[1:], " ")}, nil

	case "dereg":
		if len(args) < 1 || args[0] != self {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: CmdDereg, Target: self}, nil

	case "create_group":
		if inGroup || len(args) < 1 {
			return Command{}, ErrInvalidCommand
		}
		if strings.Contains(args[0], types.Separator) {
			return Command{}, ErrGroupNameSeparator
		}
		return Command{Kind: CmdCreateGroup, Group: args[0]}, nil

	case "list_groups":
		if inGroup {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: CmdListGroups}, nil

	case "join_group":
		if inGroup || len(args) < 1 {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: CmdJoinGroup, Group: args[0]}, nil

	case "send_group":
		if !inGroup {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: CmdSendGroup, Group: group, Text: strings.Join(args, " ")}, nil

	case "list_members":
		if !inGroup {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: CmdListMembers, Group: group}, nil

	case "leave_group":
		if !inGroup {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: CmdLeaveGroup, Group: group}, nil
	}

	return Command{}, ErrInvalidCommand
}
