package client

import (
	"io"

	"go.uber.org/fx"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/core/transport"
)

// Params 客户端依赖参数
type Params struct {
	fx.In

	Transport  *transport.Transport
	UnifiedCfg *config.Config `optional:"true"`
	Output     io.Writer      `name:"client_output" optional:"true"`
}

// Module 客户端 Fx 模块
//
// 会话本身由调用方通过 Client.Run 驱动，不挂在生命周期上。
var Module = fx.Module("client",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建客户端
func NewFromParams(p Params) (*Client, error) {
	opts := []Option{WithOutput(p.Output)}
	if p.Output != nil {
		opts = append(opts, WithColor(false))
	}
	return New(ConfigFromUnified(p.UnifiedCfg), p.Transport, opts...)
}
