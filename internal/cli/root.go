// Package cli 定義 acctregistry 的 cobra 指令樹：serve、demo、version。
package cli

import (
	"github.com/spf13/cobra"

	"acctregistry/internal/logging"
)

// Version 於連結時以 -ldflags "-X acctregistry/internal/cli.Version=..." 注入。
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
}

// NewRootCommand 建立根指令並掛上所有子指令。
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "acctregistry",
		Short: "In-memory ordered account registry",
		Long: "acctregistry keeps labelled registries of bank accounts ordered by ID,\n" +
			"reuses freed IDs, and serves payments, medians and merges over HTTP.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLevel(opts.LogLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: search acctregistry.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewDemoCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("acctregistry %s\n", Version)
		},
	}
}
