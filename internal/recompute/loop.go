// Package recompute ties operator input to the reclaim estimate. Input only
// mutates the selection; the estimate is refreshed once input has been idle
// for a bounded interval, so a burst of toggles costs one dry run.
package recompute

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zsnapfree/internal/selection"
	"zsnapfree/internal/snaprange"
	"zsnapfree/internal/zfs"
)

// DefaultIdle is how long input must be quiet before a stale estimate is
// recomputed.
const DefaultIdle = 500 * time.Millisecond

// Action is one discrete operator input.
type Action int

const (
	First Action = iota
	Last
	Prev
	Next
	Toggle
	Exit
)

var actionNames = map[Action]string{
	First:  "first",
	Last:   "last",
	Prev:   "prev",
	Next:   "next",
	Toggle: "toggle",
	Exit:   "exit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

var actionAliases = map[string]Action{
	"first": First, "home": First, "g": First,
	"last": Last, "end": Last, "G": Last,
	"prev": Prev, "up": Prev, "k": Prev,
	"next": Next, "down": Next, "j": Next,
	"toggle": Toggle, "mark": Toggle, "space": Toggle, "x": Toggle,
	"exit": Exit, "quit": Exit, "q": Exit,
}

// ParseAction maps a textual token to an Action. Tokens are case
// sensitive only for the single-letter vi keys.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if a, ok := actionAliases[s]; ok {
		return a, nil
	}
	if a, ok := actionAliases[strings.ToLower(s)]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Estimator produces a reclaim estimate for a non-empty set of ranges.
// *zfs.Tool implements it.
type Estimator interface {
	Reclaim(ctx context.Context, dataset string, ranges []snaprange.Range) (zfs.ReclaimResult, error)
}

// Options tunes a Loop.
type Options struct {
	Idle   time.Duration // DefaultIdle when zero
	Logger *slog.Logger
}

// Loop owns the selection, the last estimate and the exit request. It is
// not safe for concurrent use; exactly one goroutine drives it.
type Loop struct {
	dataset string
	sel     *selection.Model
	est     Estimator
	idle    time.Duration
	log     *slog.Logger

	result     zfs.ReclaimResult
	generation uint64
	exit       bool
}

// New returns a loop over sel for dataset.
func New(dataset string, sel *selection.Model, est Estimator, opts Options) *Loop {
	if opts.Idle <= 0 {
		opts.Idle = DefaultIdle
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		dataset: dataset,
		sel:     sel,
		est:     est,
		idle:    opts.Idle,
		log:     opts.Logger,
	}
}

func (l *Loop) Dataset() string { return l.dataset }
func (l *Loop) Selection() *selection.Model { return l.sel }
func (l *Loop) Result() zfs.ReclaimResult { return l.result }
func (l *Loop) IdleInterval() time.Duration { return l.idle }
func (l *Loop) Exiting() bool { return l.exit }
func (l *Loop) Dirty() bool { return l.sel.Dirty() }

// Generation counts successful recomputes.
func (l *Loop) Generation() uint64 { return l.generation }

// EquivalentCommandLine is the dry-run command matching the current marks.
func (l *Loop) EquivalentCommandLine() string {
	return zfs.EquivalentCommandLine(l.dataset, l.sel.Ranges())
}

// Handle applies one input event. It never recomputes.
func (l *Loop) Handle(a Action) {
	switch a {
	case First:
		l.sel.First()
	case Last:
		l.sel.Last()
	case Prev:
		l.sel.Prev()
	case Next:
		l.sel.Next()
	case Toggle:
		l.sel.Toggle()
	case Exit:
		l.exit = true
	default:
		l.log.Warn("ignoring unknown action", "action", a)
		return
	}
	l.log.Debug("handled action", "action", a, "dirty", l.sel.Dirty())
}

// Idle is called when no input arrived for the idle interval. It refreshes
// the estimate only if the marks changed since the last refresh.
func (l *Loop) Idle(ctx context.Context) error {
	if !l.sel.Dirty() {
		return nil
	}
	return l.Recompute(ctx)
}

// Recompute refreshes the estimate from the current marks regardless of the
// dirty flag. Without marks it stores the zero result and runs nothing. On
// failure the previous result and the dirty flag are left as they were.
func (l *Loop) Recompute(ctx context.Context) error {
	ranges := l.sel.Ranges()
	if len(ranges) == 0 {
		l.store(zfs.ReclaimResult{})
		return nil
	}
	began := time.Now()
	res, err := l.est.Reclaim(ctx, l.dataset, ranges)
	if err != nil {
		l.log.Error("reclaim estimate failed", "dataset", l.dataset, "error", err)
		return fmt.Errorf("estimating reclaim for %s: %w", l.dataset, err)
	}
	l.log.Info("reclaim estimate", "dataset", l.dataset, "ranges", len(ranges),
		"destroys", len(res.Destroys), "bytes", res.Bytes, "took", time.Since(began))
	l.store(res)
	return nil
}

func (l *Loop) store(res zfs.ReclaimResult) {
	l.result = res
	l.generation++
	l.sel.MarkClean()
}

// Run drives the loop until an exit request, a closed events channel, a
// cancelled context or a failed estimate. Each iteration renders, then waits
// for the next event or the idle timeout. render may be nil.
func (l *Loop) Run(ctx context.Context, events <-chan Action, render func(*Loop)) error {
	timer := time.NewTimer(l.idle)
	defer timer.Stop()
	for !l.exit {
		if render != nil {
			render(l)
		}
		resetTimer(timer, l.idle)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a, ok := <-events:
			if !ok {
				l.exit = true
				continue
			}
			l.Handle(a)
		case <-timer.C:
			if err := l.Idle(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
