package udpchat

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-udpchat/internal/client"
)

// stopTimeout 客户端应用的停止超时
const stopTimeout = 5 * time.Second

// RunClient 运行一个客户端会话，直到 in 结束、ctx 取消或会话终止
//
// 会话因注销、注册被拒或服务器无响应结束时返回 *SessionEnded，
// 可用 ExitCode 映射为进程退出码。
//
// 示例:
//
//	err := udpchat.RunClient(ctx, os.Stdin,
//	    udpchat.WithClientName("alice"),
//	    udpchat.WithServer("127.0.0.1", 5000),
//	    udpchat.WithClientPort(6000),
//	)
//	os.Exit(udpchat.ExitCode(err))
func RunClient(ctx context.Context, in io.Reader, opts ...Option) (err error) {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	cfg := o.config()

	var c *client.Client
	app, err := buildClientApp(cfg, o, &c)
	if err != nil {
		return err
	}
	if err := app.Err(); err != nil {
		return fmt.Errorf("build client: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		err = multierr.Append(err, app.Stop(stopCtx))
	}()

	return c.Run(ctx, in)
}
