package snaprange

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemsFrom(names string, marks ...bool) []Item {
	items := make([]Item, len(marks))
	for i, m := range marks {
		items[i] = Item{Name: string(names[i]), Marked: m}
	}
	return items
}

func TestCompress_ConsecutiveRuns(t *testing.T) {
	items := itemsFrom("abcdefghi", false, true, true, true, false, true, true, false, true)

	got := Compress(items)

	want := []Range{Between("b", "d"), Between("f", "g"), Single("i")}
	assert.Equal(t, want, got)
}

func TestCompress_EdgeCases(t *testing.T) {
	cases := []struct {
		name  string
		items []Item
		want  []Range
	}{
		{"empty", nil, nil},
		{"none marked", itemsFrom("abc", false, false, false), nil},
		{"all marked", itemsFrom("abcd", true, true, true, true), []Range{Between("a", "d")}},
		{"single item", itemsFrom("a", true), []Range{Single("a")}},
		{"leading single", itemsFrom("abc", true, false, false), []Range{Single("a")}},
		{"alternating", itemsFrom("abcde", true, false, true, false, true), []Range{Single("a"), Single("c"), Single("e")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Compress(c.items))
		})
	}
}

// Every mark pattern up to eight items: ranges are ordered, disjoint, name
// only marked items and cover exactly the marked set with one range per run.
func TestCompress_CoversExactlyMarked(t *testing.T) {
	const names = "abcdefgh"
	for n := 0; n <= len(names); n++ {
		for mask := 0; mask < 1<<n; mask++ {
			items := make([]Item, n)
			index := map[string]int{}
			runs := 0
			for i := 0; i < n; i++ {
				items[i] = Item{Name: string(names[i]), Marked: mask&(1<<i) != 0}
				index[items[i].Name] = i
				if items[i].Marked && (i == 0 || !items[i-1].Marked) {
					runs++
				}
			}

			ranges := Compress(items)
			require.Len(t, ranges, runs, "mask %b", mask)

			covered := make([]bool, n)
			last := -1
			for _, r := range ranges {
				from := index[r.From]
				to := from
				if r.Kind == KindSpan {
					to = index[r.To]
					require.Less(t, from, to, "mask %b: span must name two items", mask)
				}
				require.Greater(t, from, last, "mask %b: ranges out of order or overlapping", mask)
				for i := from; i <= to; i++ {
					require.True(t, items[i].Marked, "mask %b: range covers unmarked %s", mask, items[i].Name)
					covered[i] = true
				}
				last = to
			}
			for i := range items {
				assert.Equal(t, items[i].Marked, covered[i], "mask %b item %d", mask, i)
			}
		}
	}
}

func TestCompress_Idempotent(t *testing.T) {
	items := itemsFrom("abcdefg", true, true, false, true, false, true, true)
	first := Compress(items)
	second := Compress(items)
	assert.Equal(t, first, second)
	assert.Equal(t, Selector(first), Selector(second))
}

func TestSelector(t *testing.T) {
	got := Selector([]Range{Single("snap1"), Between("snap3", "snap7")})
	assert.Equal(t, "snap1,snap3%snap7", got)
	assert.Equal(t, "", Selector(nil))
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "x", Single("x").String())
	assert.Equal(t, "x%y", Between("x", "y").String())
	assert.Equal(t, "x%y", fmt.Sprint(Between("x", "y")))
}
