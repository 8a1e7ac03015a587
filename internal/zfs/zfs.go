// Package zfs is the only place that runs the zfs command line tool. It
// lists snapshots and dry-runs destroys; it never destroys anything.
package zfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"zsnapfree/internal/snaprange"
	"zsnapfree/internal/telemetry"
)

// DefaultPath is the tool run when no override is configured.
const DefaultPath = "zfs"

const scopeName = "zsnapfree/zfs"

// Output is the captured result of one process run.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs a process to completion. The error is reserved for processes
// that could not be run at all; a non-zero exit is reported in Output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}

// Tool runs zfs subcommands and parses their machine readable output.
type Tool struct {
	Path   string
	Runner Runner
	Logger *slog.Logger

	tracer trace.Tracer
	calls  metric.Int64Counter
	errs   metric.Int64Counter
	dur    metric.Float64Histogram
}

// Option customizes a Tool.
type Option func(*Tool)

// WithRunner replaces the process runner, mostly for tests.
func WithRunner(r Runner) Option { return func(t *Tool) { t.Runner = r } }

// WithLogger sets the logger used for invocation traces.
func WithLogger(l *slog.Logger) Option { return func(t *Tool) { t.Logger = l } }

// New returns a Tool running the binary at path (DefaultPath when empty).
func New(path string, opts ...Option) *Tool {
	if path == "" {
		path = DefaultPath
	}
	t := &Tool{Path: path, Runner: ExecRunner{}}
	for _, o := range opts {
		o(t)
	}
	if t.Logger == nil {
		t.Logger = slog.New(slog.DiscardHandler)
	}
	m := telemetry.Meter(scopeName)
	t.calls, _ = m.Int64Counter("zsnapfree.zfs.invocations",
		metric.WithDescription("Total zfs invocations"),
	)
	t.errs, _ = m.Int64Counter("zsnapfree.zfs.errors",
		metric.WithDescription("zfs invocations that failed or produced unusable output"),
	)
	t.dur, _ = m.Float64Histogram("zsnapfree.zfs.duration",
		metric.WithDescription("zfs invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	t.tracer = telemetry.Tracer(scopeName)
	return t
}

// ListSnapshots returns the bare snapshot names of dataset in creation order.
func (t *Tool) ListSnapshots(ctx context.Context, dataset string) (names []string, err error) {
	args := []string{"list", "-Ht", "snapshot", dataset}
	ctx, done := t.start(ctx, "list", attribute.String("zfs.dataset", dataset))
	defer func() { done(err) }()

	out, err := t.run(ctx, ErrListFailed, args)
	if err != nil {
		return nil, err
	}
	names, err = ParseSnapshots(dataset, out.Stdout)
	if err != nil {
		return nil, err
	}
	t.Logger.Debug("listed snapshots", "dataset", dataset, "count", len(names))
	return names, nil
}

// Reclaim dry-runs a destroy of ranges and reports what zfs says would be
// destroyed and freed. ranges must not be empty.
func (t *Tool) Reclaim(ctx context.Context, dataset string, ranges []snaprange.Range) (res ReclaimResult, err error) {
	if len(ranges) == 0 {
		return ReclaimResult{}, ErrEmptySelection
	}
	target := dataset + "@" + snaprange.Selector(ranges)
	args := []string{"destroy", "-np", target}
	ctx, done := t.start(ctx, "destroy",
		attribute.String("zfs.dataset", dataset),
		attribute.Int("zfs.ranges", len(ranges)),
	)
	defer func() { done(err) }()

	out, err := t.run(ctx, ErrDryRunFailed, args)
	if err != nil {
		return ReclaimResult{}, err
	}
	res, err = ParseReclaim(out.Stdout)
	if err != nil {
		return ReclaimResult{}, fmt.Errorf("zfs destroy -np %s: %w", target, err)
	}
	t.Logger.Debug("dry-run destroy", "target", target, "destroys", len(res.Destroys), "bytes", res.Bytes)
	return res, nil
}

func (t *Tool) run(ctx context.Context, op error, args []string) (Output, error) {
	t.Logger.Debug("running zfs", "path", t.Path, "args", args)
	out, err := t.Runner.Run(ctx, t.Path, args...)
	if err != nil {
		return out, fmt.Errorf("%w: failed to run %s %s: %w", op, t.Path, strings.Join(args, " "), err)
	}
	if out.ExitCode != 0 {
		return out, &ProcessError{
			Op:       op,
			Args:     args,
			ExitCode: out.ExitCode,
			Stderr:   strings.TrimSpace(string(out.Stderr)),
		}
	}
	return out, nil
}

// start opens a span for one zfs subcommand and returns a func that ends it.
func (t *Tool) start(ctx context.Context, sub string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	all := append([]attribute.KeyValue{attribute.String("zfs.subcommand", sub)}, attrs...)
	ctx, span := t.tracer.Start(ctx, "zfs."+sub,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	began := time.Now()
	t.calls.Add(ctx, 1, metric.WithAttributes(all[0]))
	return ctx, func(err error) {
		t.dur.Record(ctx, float64(time.Since(began).Milliseconds()), metric.WithAttributes(all[0]))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			t.errs.Add(ctx, 1, metric.WithAttributes(all[0]))
		}
		span.End()
	}
}

// EquivalentCommandLine is the still non-destructive command an operator can
// run to reproduce the estimate for ranges.
func EquivalentCommandLine(dataset string, ranges []snaprange.Range) string {
	return fmt.Sprintf("zfs destroy -nv %s@%s", dataset, snaprange.Selector(ranges))
}
