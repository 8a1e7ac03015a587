// Package batch drives the recompute loop from a line-oriented action
// stream, one action per line, for scripts and non-terminal stdin.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"zsnapfree/internal/recompute"
	"zsnapfree/pkg/utils"
)

// Run feeds actions read from r into loop until an exit action, end of
// input, a cancelled context or a failed estimate. A status line is written
// to w after every refreshed estimate. Blank lines and lines starting with
// '#' are skipped; unknown actions are logged and skipped.
func Run(ctx context.Context, loop *recompute.Loop, r io.Reader, w io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan recompute.Action)
	go read(ctx, r, events, log)

	var seen uint64
	var werr error
	render := func(l *recompute.Loop) {
		if l.Generation() == seen || werr != nil {
			return
		}
		seen = l.Generation()
		werr = writeStatus(w, l)
	}
	if err := loop.Run(ctx, events, render); err != nil {
		return err
	}
	return werr
}

func read(ctx context.Context, r io.Reader, events chan<- recompute.Action, log *slog.Logger) {
	defer close(events)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		a, err := recompute.ParseAction(text)
		if err != nil {
			log.Warn("skipping input", "line", line, "error", err)
			continue
		}
		select {
		case events <- a:
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Error("reading actions", "error", err)
	}
}

func writeStatus(w io.Writer, l *recompute.Loop) error {
	res := l.Result()
	_, err := fmt.Fprintf(w, "%d marked, destroying %d snapshots would reclaim %s (%s bytes)\n",
		l.Selection().MarkedCount(), len(res.Destroys), utils.HumanizeBytes(res.Bytes), utils.GroupDigits(res.Bytes))
	return err
}
