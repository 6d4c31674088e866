// Package directory 实现服务端的客户端目录
//
// 目录记录 name → (IP, 监听端口, 在线状态)。规则：
//   - 名称永久占用：记录只会被置为离线，永不删除，同名永不能再注册
//   - (IP, port) 只与在线记录冲突，离线客户端的地址可以被复用
//   - 注册时的两项检查与插入在同一把锁内完成
//
// 所有读写都由一把 RWMutex 串行化；对外只返回快照副本。
package directory

import (
	"fmt"
	"net"
	"sync"

	"github.com/dep2p/go-udpchat/pkg/lib/log"
	"github.com/dep2p/go-udpchat/pkg/types"
)

var logger = log.Logger("server/directory")

// Directory 客户端目录
type Directory struct {
	mu      sync.RWMutex
	records map[string]types.ClientRecord
}

// New 创建空目录
func New() *Directory {
	return &Directory{
		records: make(map[string]types.ClientRecord),
	}
}

// Register 注册客户端
//
// 名称与所有历史记录比较，(IP, port) 只与在线记录比较。
func (d *Directory) Register(name, ip string, port int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.records[name]; ok {
		return fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	for _, rec := range d.records {
		if rec.Online && rec.IP == ip && rec.Port == port {
			return fmt.Errorf("%w: %s:%d held by %s", ErrAddressTaken, ip, port, rec.Name)
		}
	}

	d.records[name] = types.ClientRecord{
		Name:   name,
		IP:     ip,
		Port:   port,
		Online: true,
	}
	logger.Debug("客户端已注册", "name", name, "ip", ip, "port", port, "total", len(d.records))
	return nil
}

// Deregister 将客户端置为离线
//
// 未知或已离线时返回 false。
func (d *Directory) Deregister(name string) bool {
	return d.setOffline(name, "注销")
}

// Evict 因对端报告无响应而将客户端置为离线
//
// 语义与 Deregister 相同，只是来源不同。
func (d *Directory) Evict(name string) bool {
	return d.setOffline(name, "驱逐")
}

func (d *Directory) setOffline(name, reason string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.records[name]
	if !ok || !rec.Online {
		return false
	}
	rec.Online = false
	d.records[name] = rec
	logger.Debug("客户端已离线", "name", name, "reason", reason)
	return true
}

// Snapshot 返回目录的深拷贝
func (d *Directory) Snapshot() types.Directory {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

// BroadcastSet 在同一把锁内取快照与在线客户端地址
func (d *Directory) BroadcastSet() (types.Directory, []*net.UDPAddr) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := d.snapshotLocked()
	addrs := make([]*net.UDPAddr, 0, len(d.records))
	for _, name := range snap.Names() {
		if rec := snap[name]; rec.Online {
			addrs = append(addrs, rec.Addr())
		}
	}
	return snap, addrs
}

// Lookup 返回客户端最后已知的监听地址
//
// 离线客户端仍返回地址：群消息照常发给它，由确认超时触发驱逐。
func (d *Directory) Lookup(name string) (*net.UDPAddr, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[name]
	if !ok {
		return nil, false
	}
	return rec.Addr(), true
}

// IsOnline 报告客户端是否在线
func (d *Directory) IsOnline(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records[name].Online
}

// Len 返回记录总数（含离线）
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

func (d *Directory) snapshotLocked() types.Directory {
	out := make(types.Directory, len(d.records))
	for name, rec := range d.records {
		out[name] = rec
	}
	return out
}
