// Command zsnapfree shows how much space destroying a set of ZFS snapshots
// would reclaim. Snapshots are marked interactively and the estimate comes
// from a `zfs destroy -np` dry run; nothing is ever destroyed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"zsnapfree/internal/config"
	"zsnapfree/internal/recompute"
	"zsnapfree/internal/zfs"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "zsnapfree [flags] <dataset>",
		Short: "Estimate the space reclaimed by destroying ZFS snapshots",
		Long: `zsnapfree lists the snapshots of a dataset and lets you mark the ones you
would like to destroy. Once input goes quiet it asks zfs for a dry-run
estimate of the space that destroying the marked snapshots would free.

On exit it prints the equivalent zfs destroy command. Nothing is destroyed.

When stdin or stdout is not a terminal, or with --batch, actions are read
from stdin one per line: first, last, prev, next, toggle, exit.`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd, cfg, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	f.String("zfs", zfs.DefaultPath, "zfs binary to run")
	f.Duration("idle", recompute.DefaultIdle, "quiet time after the last key before re-estimating")
	f.String("format", config.FormatText, "exit summary format: text, json or yaml")
	f.Bool("no-color", false, "disable colors")
	f.Bool("batch", false, "read actions from stdin instead of running the TUI")
	f.String("log-file", "", "write logs to this file")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.Bool("telemetry", false, "record traces and metrics")
	f.String("telemetry-file", "", "file receiving traces and metrics")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
