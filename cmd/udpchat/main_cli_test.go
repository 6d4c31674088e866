package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	udpchat "github.com/dep2p/go-udpchat"
)

func freePort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestParseClientArgs(t *testing.T) {
	got, err := parseClientArgs([]string{"alice", "localhost", "5000", "6000"})
	require.NoError(t, err)
	assert.Equal(t, clientArgs{name: "alice", serverIP: "localhost", serverPort: 5000, clientPort: 6000}, got)

	bad := [][]string{
		{"alice", "127.0.0.1", "5000"},
		{"server", "127.0.0.1", "5000", "6000"},
		{"a;b", "127.0.0.1", "5000", "6000"},
		{"alice", "300.1.1.1", "5000", "6000"},
		{"alice", "example.com", "5000", "6000"},
		{"alice", "127.0.0.1", "80", "6000"},
		{"alice", "127.0.0.1", "5000", "70000"},
		{"alice", "127.0.0.1", "five", "6000"},
	}
	for _, args := range bad {
		_, err := parseClientArgs(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestParseServerArgs(t *testing.T) {
	port, err := parseServerArgs([]string{"5000"})
	require.NoError(t, err)
	assert.Equal(t, 5000, port)

	for _, args := range [][]string{nil, {"1023"}, {"65536"}, {"x"}, {"5000", "6000"}} {
		_, err := parseServerArgs(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udpchat.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log":{"level":"warn","format":"json"},"client":{"max_attempts":7}}`), 0o644))
	t.Setenv("UDPCHAT_LOG_FORMAT", "text")
	t.Setenv("UDPCHAT_MAX_ATTEMPTS", "9")

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"server"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--log-level", "debug"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 9, cfg.Client.MaxAttempts)
}

func TestRootCmd_InvalidArgs(t *testing.T) {
	for _, args := range [][]string{
		{"server"},
		{"server", "99"},
		{"client", "server", "127.0.0.1", "5000", "6000"},
		{"server", "5000", "--log-level", "loud"},
	} {
		root := newRootCmd()
		root.SetArgs(args)
		root.SetOut(&bytes.Buffer{})
		err := root.Execute()
		assert.Error(t, err, "args %v", args)
		assert.Equal(t, 1, udpchat.ExitCode(err))
	}
}

func TestClientCmd_Session(t *testing.T) {
	srv, err := udpchat.StartServer(context.Background(), udpchat.WithServerPort(freePort(t)))
	require.NoError(t, err)
	defer srv.Stop(context.Background())

	logFile := filepath.Join(t.TempDir(), "client.log")
	out := &bytes.Buffer{}

	root := newRootCmd()
	root.SetArgs([]string{
		"client", "alice", "127.0.0.1", strconv.Itoa(srv.Port()), strconv.Itoa(freePort(t)),
		"--log-file", logFile,
	})
	root.SetIn(strings.NewReader("create_group g1\nlist_groups\ndereg alice\n"))
	root.SetOut(out)

	done := make(chan error, 1)
	go func() { done <- root.Execute() }()

	select {
	case err = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("client did not exit")
	}
	assert.Equal(t, 0, udpchat.ExitCode(err))

	text := out.String()
	assert.Contains(t, text, ">>> Group g1 created by Server.")
	assert.Contains(t, text, ">>> Available group chats:\n>>> g1")
	assert.Contains(t, text, ">>> You are Offline. Bye.")

	_, err = os.Stat(logFile)
	assert.NoError(t, err)
}
