package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 支持 JSON 字符串的 time.Duration 包装
//
// JSON 中可写 "500ms"、"2s"，也接受纳秒整数。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Duration(n)
		return nil
	}

	return fmt.Errorf("duration must be a string like \"500ms\" or nanoseconds")
}

// MarshalJSON 实现 json.Marshaler，输出 "500ms" 形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 返回字符串表示
func (d Duration) String() string {
	return time.Duration(d).String()
}
