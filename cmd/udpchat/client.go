package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	udpchat "github.com/dep2p/go-udpchat"
)

// defaultClientLogFile 客户端默认日志文件，保持控制台干净
const defaultClientLogFile = "udpchat-client.log"

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client <name> <server-ip> <server-port> <client-port>",
		Short: "Run an interactive chat client",
		Long: `Run an interactive chat client.

Commands:
  send <name> <message>     private message to another client
  dereg <own-name>          go offline and exit
  create_group <group>      create a group chat
  list_groups               list group chats
  join_group <group>        enter a group chat
  send_group <message>      (group mode) message the group
  list_members              (group mode) list group members
  leave_group               (group mode) leave the group chat`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseClientArgs(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Client.Name = parsed.name
			cfg.Client.ServerIP = parsed.serverIP
			cfg.Client.ServerPort = parsed.serverPort
			cfg.Client.ListenPort = parsed.clientPort
			if cfg.Log.File == "" {
				cfg.Log.File = defaultClientLogFile
			}

			closer, err := udpchat.SetupLogging(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []udpchat.Option{udpchat.WithConfig(cfg)}
			if out := cmd.OutOrStdout(); out != os.Stdout {
				opts = append(opts, udpchat.WithOutput(out))
			}
			return udpchat.RunClient(runCtx, cmd.InOrStdin(), opts...)
		},
	}
	return cmd
}
