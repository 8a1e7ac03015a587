package utils

import "github.com/dustin/go-humanize"

// HumanizeBytes formats a byte count with binary units, e.g. 1536 -> "1.5 KiB".
func HumanizeBytes(b uint64) string {
	return humanize.IBytes(b)
}

// GroupDigits formats an exact byte count with thousands separators.
func GroupDigits(b uint64) string {
	if b > 1<<63-1 {
		return humanize.Comma(1<<63 - 1)
	}
	return humanize.Comma(int64(b))
}
