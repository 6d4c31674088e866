package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNilConfig 配置为空
var ErrNilConfig = errors.New("config is nil")

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "server": {"port": 5000, "grace_period": "500ms"},
//	  "client": {"ack_timeout": "500ms", "max_attempts": 5},
//	  "log": {"level": "server/delivery=debug,info"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromJSON(data)
}

// ToJSON 将配置序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	if c == nil {
		return nil, ErrNilConfig
	}
	return json.MarshalIndent(c, "", "  ")
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
