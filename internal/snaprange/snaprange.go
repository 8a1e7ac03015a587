// Package snaprange compresses an ordered list of marked snapshots into the
// smallest list of inclusive ranges understood by `zfs destroy`.
package snaprange

import "strings"

// Item is one snapshot of a dataset in listing order.
type Item struct {
	Name   string
	Marked bool
}

// Kind tells a single snapshot apart from an inclusive span.
type Kind int

const (
	KindSingle Kind = iota
	KindSpan
)

// Range is either a single snapshot or an inclusive span of two or more
// consecutive snapshots. For KindSingle only From is set.
type Range struct {
	Kind Kind
	From string
	To   string
}

// Single returns a range naming exactly one snapshot.
func Single(name string) Range {
	return Range{Kind: KindSingle, From: name}
}

// Between returns an inclusive span from..to.
func Between(from, to string) Range {
	return Range{Kind: KindSpan, From: from, To: to}
}

// String renders the range in zfs selector syntax.
func (r Range) String() string {
	if r.Kind == KindSpan {
		return r.From + "%" + r.To
	}
	return r.From
}

// Compress returns the marked items as the fewest ordered ranges. Unmarked
// items only separate runs and are never named.
func Compress(items []Item) []Range {
	var out []Range
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if end == start {
			out = append(out, Single(items[start].Name))
		} else {
			out = append(out, Between(items[start].Name, items[end].Name))
		}
		start = -1
	}
	for i, it := range items {
		switch {
		case it.Marked && start < 0:
			start = i
		case !it.Marked:
			flush(i - 1)
		}
	}
	flush(len(items) - 1)
	return out
}

// Selector joins ranges into the comma separated form accepted after
// `<dataset>@`, e.g. "snap1,snap3%snap7".
func Selector(ranges []Range) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ",")
}
