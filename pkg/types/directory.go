package types

import (
	"encoding/json"
	"fmt"
	"net"
	"sort"
)

// ClientRecord 目录中的一条客户端记录
//
// 首次注册时创建；注销或被驱逐后 Online 置为 false；记录永不删除，
// 同名也永不重建。
type ClientRecord struct {
	// Name 客户端名称（永久唯一）
	Name string `json:"-"`

	// IP 注册时的来源 IP
	IP string `json:"ip"`

	// Port 客户端监听端口
	Port int `json:"port"`

	// Online 是否在线
	Online bool `json:"online"`
}

// Addr 返回客户端的监听地址
func (r ClientRecord) Addr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP(r.IP), Port: r.Port}
}

// Directory 目录快照：name → ClientRecord
//
// 服务端广播、客户端整体替换本地镜像都使用该类型。
type Directory map[string]ClientRecord

// Clone 深拷贝
func (d Directory) Clone() Directory {
	out := make(Directory, len(d))
	for name, rec := range d {
		out[name] = rec
	}
	return out
}

// Names 返回排序后的名称列表
func (d Directory) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Online 返回在线客户端数量
func (d Directory) Online() int {
	n := 0
	for _, rec := range d {
		if rec.Online {
			n++
		}
	}
	return n
}

// MarshalJSON 序列化为 {"name": {"ip":..,"port":..,"online":..}}
func (d Directory) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]ClientRecord(d))
}

// UnmarshalJSON 反序列化，并把 map 键回填到 Name 字段
func (d *Directory) UnmarshalJSON(data []byte) error {
	var raw map[string]ClientRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode directory: %w", err)
	}
	out := make(Directory, len(raw))
	for name, rec := range raw {
		rec.Name = name
		out[name] = rec
	}
	*d = out
	return nil
}

// EncodeDirectory 编码为单行 JSON，作为 table 消息载荷
func EncodeDirectory(d Directory) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode directory: %w", err)
	}
	return string(data), nil
}

// DecodeDirectory 解码 table 消息载荷
func DecodeDirectory(s string) (Directory, error) {
	var d Directory
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, err
	}
	return d, nil
}
