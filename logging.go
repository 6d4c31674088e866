package udpchat

import (
	"io"
	"os"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/pkg/lib/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging 按日志配置安装全局日志
//
// cfg.File 非空时以追加模式写入该文件，否则写入 fallback。
// 返回的 Closer 在进程退出前关闭日志文件。
func SetupLogging(cfg config.LogConfig, fallback io.Writer) (io.Closer, error) {
	level, components, err := log.ParseLevelSpec(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := fallback
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out, closer = f, f
	}

	log.Setup(log.Options{
		Level:           level,
		ComponentLevels: components,
		Format:          log.ParseFormat(cfg.Format),
		Output:          out,
	})
	return closer, nil
}
