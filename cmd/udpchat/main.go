package main

import (
	"errors"
	"fmt"
	"os"

	udpchat "github.com/dep2p/go-udpchat"
)

func main() {
	root := newRootCmd()
	err := root.Execute()

	// 会话结束原因已经输出到控制台
	var ended *udpchat.SessionEnded
	if err != nil && !errors.As(err, &ended) {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(udpchat.ExitCode(err))
}
