// Package selection holds the snapshots of one dataset, which of them are
// marked for destruction, the cursor, and whether the reclaim estimate shown
// for the marks is stale.
package selection

import "zsnapfree/internal/snaprange"

// Model is the ordered snapshot list. Items are never reordered or removed.
type Model struct {
	items  []snaprange.Item
	cursor int // -1 when the list is empty
	dirty  bool
}

// New builds an unmarked model over names in listing order. The cursor
// starts on the first snapshot.
func New(names []string) *Model {
	items := make([]snaprange.Item, len(names))
	for i, n := range names {
		items[i] = snaprange.Item{Name: n}
	}
	m := &Model{items: items, cursor: -1}
	if len(items) > 0 {
		m.cursor = 0
	}
	return m
}

// Items returns a copy of the items for rendering.
func (m *Model) Items() []snaprange.Item {
	return append([]snaprange.Item(nil), m.items...)
}

func (m *Model) Len() int { return len(m.items) }

// Cursor returns the highlighted index; ok is false for an empty list.
func (m *Model) Cursor() (idx int, ok bool) {
	return m.cursor, m.cursor >= 0
}

func (m *Model) First() { m.moveTo(0) }

func (m *Model) Last() { m.moveTo(len(m.items) - 1) }

func (m *Model) Prev() { m.moveTo(m.cursor - 1) }

func (m *Model) Next() { m.moveTo(m.cursor + 1) }

func (m *Model) moveTo(i int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = min(max(i, 0), len(m.items)-1)
}

// Toggle flips the mark under the cursor and moves to the next item, so
// repeated toggles sweep forward. It always marks the estimate stale, even
// when the flip undoes an earlier one.
func (m *Model) Toggle() {
	if m.cursor < 0 {
		return
	}
	m.items[m.cursor].Marked = !m.items[m.cursor].Marked
	m.dirty = true
	m.Next()
}

// Dirty reports whether marks changed since the last MarkClean.
func (m *Model) Dirty() bool { return m.dirty }

// MarkClean records that an estimate for the current marks is in place.
func (m *Model) MarkClean() { m.dirty = false }

func (m *Model) MarkedCount() int {
	c := 0
	for _, it := range m.items {
		if it.Marked {
			c++
		}
	}
	return c
}

// Ranges compresses the current marks.
func (m *Model) Ranges() []snaprange.Range {
	return snaprange.Compress(m.items)
}
