package main

import (
	"context"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/term"

	"zsnapfree/internal/batch"
	"zsnapfree/internal/config"
	"zsnapfree/internal/logging"
	"zsnapfree/internal/recompute"
	"zsnapfree/internal/report"
	"zsnapfree/internal/selection"
	"zsnapfree/internal/telemetry"
	"zsnapfree/internal/tui"
	"zsnapfree/internal/zfs"
)

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, dataset string) (err error) {
	log, closer, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := telemetry.Init(ctx, cfg.TelemetryConfig(), version); err != nil {
		return err
	}
	defer telemetry.Shutdown(context.Background())

	if cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	ctx, span := telemetry.Tracer("zsnapfree").Start(ctx, "session")
	span.SetAttributes(attribute.String("zfs.dataset", dataset))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tool := zfs.New(cfg.Tool, zfs.WithLogger(log))
	names, err := tool.ListSnapshots(ctx, dataset)
	if err != nil {
		return err
	}
	log.Info("listed snapshots", "dataset", dataset, "count", len(names))

	loop := recompute.New(dataset, selection.New(names), tool, recompute.Options{
		Idle:   cfg.Idle,
		Logger: log,
	})

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if cfg.Batch || !isTerminal(in) || !isTerminal(out) {
		log.Debug("running in batch mode")
		err = batch.Run(ctx, loop, in, cmd.ErrOrStderr(), log)
	} else {
		err = tui.Run(ctx, loop, log)
	}
	if err != nil {
		return err
	}

	// The summary reflects the final marks even if input ended mid-burst.
	if err := loop.Recompute(ctx); err != nil {
		return err
	}
	sum := report.New(dataset, loop.Result(), loop.EquivalentCommandLine())
	span.SetAttributes(
		attribute.Int("zsnapfree.destroys", sum.Count),
		attribute.Int64("zsnapfree.reclaim_bytes", int64(sum.Bytes)),
	)
	return report.Write(out, cfg.Format, sum)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
