// Package group 实现服务端的群组表
//
// 群组表记录 group → 成员集合，所有读写由一把 RWMutex 串行化。
// 群组创建后永不删除，即使成员为空。
//
// 群消息投递依赖两个原子操作：
//   - Recipients：读取当前成员、确认发送者仍是成员、返回其余成员
//   - Evict：移除未确认的成员，已不在群中的成员被忽略
package group

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dep2p/go-udpchat/pkg/lib/log"
	"github.com/dep2p/go-udpchat/pkg/types"
)

var logger = log.Logger("server/group")

// Table 群组表
type Table struct {
	mu     sync.RWMutex
	groups map[string]map[string]struct{}
}

// New 创建空群组表
func New() *Table {
	return &Table{
		groups: make(map[string]map[string]struct{}),
	}
}

// Create 创建群组
func (t *Table) Create(name string) error {
	if err := types.ValidateGroupName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGroupName, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.groups[name]; ok {
		return fmt.Errorf("%w: %s", ErrGroupExists, name)
	}
	t.groups[name] = make(map[string]struct{})
	logger.Debug("群组已创建", "group", name, "groups", len(t.groups))
	return nil
}

// List 返回排序后的群组名称
func (t *Table) List() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.groups))
	for name := range t.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Join 加入群组，重复加入是幂等的
func (t *Table) Join(group, member string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.groups[group]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}
	members[member] = struct{}{}
	logger.Debug("成员加入群组", "group", group, "member", member, "members", len(members))
	return nil
}

// ListMembers 返回排序后的成员列表，请求者必须是当前成员
//
// 群组不存在时同样返回 ErrNotAMember。
func (t *Table) ListMembers(group, requester string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members, ok := t.groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: group %s not found", ErrNotAMember, group)
	}
	if _, ok := members[requester]; !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotAMember, requester, group)
	}
	return sortedMembers(members, ""), nil
}

// Leave 离开群组
func (t *Table) Leave(group, member string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.groups[group]
	if !ok {
		return fmt.Errorf("%w: group %s not found", ErrNotAMember, group)
	}
	if _, ok := members[member]; !ok {
		return fmt.Errorf("%w: %s in %s", ErrNotAMember, member, group)
	}
	delete(members, member)
	logger.Debug("成员离开群组", "group", group, "member", member, "members", len(members))
	return nil
}

// Recipients 返回群消息的接收者（当前成员去掉发送者）
//
// 发送者已不在群中（例如此前未确认群消息而被驱逐）时返回 ErrNotAMember。
func (t *Table) Recipients(group, sender string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members, ok := t.groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: group %s not found", ErrNotAMember, group)
	}
	if _, ok := members[sender]; !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotAMember, sender, group)
	}
	return sortedMembers(members, sender), nil
}

// Evict 移除成员，返回实际被移除的名称
func (t *Table) Evict(group string, names []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.groups[group]
	if !ok {
		return nil
	}

	removed := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := members[name]; ok {
			delete(members, name)
			removed = append(removed, name)
		}
	}
	if len(removed) > 0 {
		logger.Debug("成员被移出群组", "group", group, "removed", removed, "members", len(members))
	}
	return removed
}

// IsMember 报告 member 是否在 group 中
func (t *Table) IsMember(group, member string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.groups[group][member]
	return ok
}

// Snapshot 返回整张群组表的副本（调试日志用）
func (t *Table) Snapshot() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string][]string, len(t.groups))
	for name, members := range t.groups {
		out[name] = sortedMembers(members, "")
	}
	return out
}

func sortedMembers(members map[string]struct{}, exclude string) []string {
	out := make([]string, 0, len(members))
	for m := range members {
		if m != exclude {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
