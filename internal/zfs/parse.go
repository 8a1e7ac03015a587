package zfs

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

const (
	destroyPrefix = "destroy\t"
	reclaimPrefix = "reclaim\t"
)

// ReclaimResult is what a dry-run destroy reports: every snapshot that would
// go (including dependents that were not asked for) and the bytes freed.
// The zero value means nothing is selected or nothing was computed yet.
type ReclaimResult struct {
	Destroys []string
	Bytes    uint64
}

// ParseSnapshots extracts bare snapshot names from `zfs list -Ht snapshot`
// output. The first tab separated field of every line must be
// "<dataset>@<name>"; any other shape aborts the whole listing.
func ParseSnapshots(dataset string, stdout []byte) ([]string, error) {
	prefix := dataset + "@"
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(stdout))
	for sc.Scan() {
		line := sc.Text()
		full, _, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, &ProtocolError{
				Kind:   ErrUnexpectedOutput,
				Detail: fmt.Sprintf("line %q has no tab separator", line),
				Output: string(stdout),
			}
		}
		name, ok := strings.CutPrefix(full, prefix)
		if !ok {
			return nil, &ProtocolError{
				Kind:   ErrUnexpectedOutput,
				Detail: fmt.Sprintf("snapshot %q does not start with %q", full, prefix),
				Output: string(stdout),
			}
		}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading zfs list output: %w", err)
	}
	return names, nil
}

// ParseReclaim reads `zfs destroy -np` output. Parsing stops at the first
// reclaim line; anything after it is ignored. Lines that are neither destroy
// nor reclaim lines are skipped.
func ParseReclaim(stdout []byte) (ReclaimResult, error) {
	var destroys []string
	sc := bufio.NewScanner(bytes.NewReader(stdout))
	for sc.Scan() {
		line := sc.Text()
		if raw, ok := strings.CutPrefix(line, reclaimPrefix); ok {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return ReclaimResult{}, &ProtocolError{
					Kind:   ErrMalformedOutput,
					Detail: fmt.Sprintf("reclaim byte count %q is not a non-negative integer", raw),
					Output: string(stdout),
				}
			}
			return ReclaimResult{Destroys: destroys, Bytes: n}, nil
		}
		if name, ok := strings.CutPrefix(line, destroyPrefix); ok {
			destroys = append(destroys, name)
		}
	}
	if err := sc.Err(); err != nil {
		return ReclaimResult{}, fmt.Errorf("reading zfs destroy output: %w", err)
	}
	return ReclaimResult{}, &ProtocolError{
		Kind:   ErrIncompleteOutput,
		Detail: "missing 'reclaim' line",
		Output: strings.TrimSpace(string(stdout)),
	}
}
