package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	udpchat "github.com/dep2p/go-udpchat"
	"github.com/dep2p/go-udpchat/config"
)

const shutdownTimeout = 5 * time.Second

func newServerCmd() *cobra.Command {
	var metricsAddr string
	var gracePeriod time.Duration

	cmd := &cobra.Command{
		Use:   "server <port>",
		Short: "Run the directory server",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parseServerArgs(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Server.Port = port
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.ListenAddr = metricsAddr
			}
			if cmd.Flags().Changed("grace-period") {
				cfg.Server.GracePeriod = config.Duration(gracePeriod)
			}

			closer, err := udpchat.SetupLogging(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := udpchat.StartServer(runCtx, udpchat.WithConfig(cfg))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), ">>> Server is online (%s)\n", srv.Addr())

			<-runCtx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Stop(stopCtx)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus /metrics on this address (e.g. 127.0.0.1:9100)")
	cmd.Flags().DurationVar(&gracePeriod, "grace-period", 500*time.Millisecond, "How long group members have to ack a group message")
	return cmd
}
