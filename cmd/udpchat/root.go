package main

import (
	"github.com/spf13/cobra"

	"github.com/dep2p/go-udpchat/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "udpchat",
		Short:         "UDP chat: directory server and interactive client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to a JSON config file")
	cmd.PersistentFlags().String("log-level", "", "Log level spec: [component=level,...]level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-format", "", "Log format: text|json")
	cmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")

	cmd.AddCommand(newServerCmd())
	cmd.AddCommand(newClientCmd())
	return cmd
}

// loadConfig 按 默认值 < 配置文件 < 环境变量 < 命令行参数 合成配置
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.ApplyEnv(cfg)

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File, _ = cmd.Flags().GetString("log-file")
	}
	if err := cfg.Log.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
