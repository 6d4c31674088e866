package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/pkg/types"
)

type clientArgs struct {
	name       string
	serverIP   string
	serverPort int
	clientPort int
}

// parsePort 解析端口参数，范围 1024-65535
func parsePort(what, s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s port number %q", what, s)
	}
	if err := config.ValidatePort(what+" port", port); err != nil {
		return 0, fmt.Errorf("invalid %s port number: %w", what, err)
	}
	return port, nil
}

func parseServerArgs(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: udpchat server <port>")
	}
	return parsePort("server", args[0])
}

func parseClientArgs(args []string) (clientArgs, error) {
	if len(args) != 4 {
		return clientArgs{}, errors.New("usage: udpchat client <name> <server-ip> <server-port> <client-port>")
	}

	var out clientArgs
	var err error

	if err = types.ValidateClientName(args[0]); err != nil {
		return clientArgs{}, fmt.Errorf("invalid username %q: %w", args[0], err)
	}
	out.name = args[0]

	if err = config.ValidateServerIP(args[1]); err != nil {
		return clientArgs{}, fmt.Errorf("invalid server ip address: %w", err)
	}
	out.serverIP = args[1]

	if out.serverPort, err = parsePort("server", args[2]); err != nil {
		return clientArgs{}, err
	}
	if out.clientPort, err = parsePort("client", args[3]); err != nil {
		return clientArgs{}, err
	}
	return out, nil
}
