package zfs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrListFailed reports that `zfs list` could not run or exited non-zero.
	ErrListFailed = errors.New("listing snapshots failed")
	// ErrDryRunFailed reports that `zfs destroy -np` could not run or exited non-zero.
	ErrDryRunFailed = errors.New("dry-run destroy failed")
	// ErrUnexpectedOutput matches every protocol violation in zfs output.
	ErrUnexpectedOutput = errors.New("unexpected zfs output")
	// ErrIncompleteOutput reports a dry run that never printed a reclaim line.
	ErrIncompleteOutput = errors.New("incomplete output")
	// ErrMalformedOutput reports a reclaim line whose byte count is not a number.
	ErrMalformedOutput = errors.New("malformed output")
	// ErrEmptySelection is returned by Reclaim when called without ranges.
	ErrEmptySelection = errors.New("no snapshots selected")
)

// ProcessError is a zfs invocation that exited with a non-zero status.
type ProcessError struct {
	Op       error // ErrListFailed or ErrDryRunFailed
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%v: zfs %s exited with status %d", e.Op, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Op }

// ProtocolError is zfs output that does not follow the expected line format.
// Output holds the raw captured stdout for diagnosis.
type ProtocolError struct {
	Kind   error // ErrUnexpectedOutput, ErrIncompleteOutput or ErrMalformedOutput
	Detail string
	Output string
}

func (e *ProtocolError) Error() string {
	msg := e.Kind.Error()
	if e.Kind != ErrUnexpectedOutput {
		msg = ErrUnexpectedOutput.Error() + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Kind == ErrIncompleteOutput && e.Output != "" {
		msg += "\noutput was:\n" + e.Output
	}
	return msg
}

func (e *ProtocolError) Unwrap() []error {
	if e.Kind == ErrUnexpectedOutput {
		return []error{ErrUnexpectedOutput}
	}
	return []error{e.Kind, ErrUnexpectedOutput}
}
