package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{10, "10 B"},
		{1024, "1.0 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{1024*1024*5 + 100, "5.0 MiB"},
		{1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HumanizeBytes(c.in), "HumanizeBytes(%d)", c.in)
	}
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "0", GroupDigits(0))
	assert.Equal(t, "1,234,567", GroupDigits(1234567))
}
