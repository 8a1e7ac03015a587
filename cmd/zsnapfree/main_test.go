package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zsnapfree/internal/report"
)

const standIn = `#!/bin/sh
echo "$@" >> "$0.calls"
case "$1" in
list)
	printf 'tank/fs@a\t0\ntank/fs@b\t0\ntank/fs@c\t0\n'
	;;
destroy)
	printf 'destroy\ttank/fs@a\ndestroy\ttank/fs@b\nreclaim\t2048\n'
	;;
*)
	echo "unexpected $1" >&2
	exit 2
	;;
esac
`

func setup(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stand-in zfs is a shell script")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	path := filepath.Join(t.TempDir(), "zfs")
	require.NoError(t, os.WriteFile(path, []byte(standIn), 0o755))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestBatchSession_TextSummary(t *testing.T) {
	tool := setup(t)
	out, _, err := execute(t, "toggle\ntoggle\nexit\n", "--batch", "--no-color", "--zfs", tool, "tank/fs")
	require.NoError(t, err)

	assert.Contains(t, out, "pretend to delete 2 snapshots")
	assert.Contains(t, out, "would reclaim 2.0 KiB")
	assert.Contains(t, out, "zfs destroy -nv tank/fs@a%b")

	calls, err := os.ReadFile(tool + ".calls")
	require.NoError(t, err)
	assert.Contains(t, string(calls), "list -Ht snapshot tank/fs")
	assert.Contains(t, string(calls), "destroy -np tank/fs@a%b")
}

func TestBatchSession_JSON(t *testing.T) {
	tool := setup(t)
	out, _, err := execute(t, "next\ntoggle\n", "--batch", "--format", "json", "--zfs", tool, "tank/fs")
	require.NoError(t, err)

	var sum report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "tank/fs", sum.Dataset)
	assert.Equal(t, uint64(2048), sum.Bytes)
	assert.Equal(t, "zfs destroy -nv tank/fs@b", sum.Command)
}

func TestBatchSession_NothingMarked(t *testing.T) {
	tool := setup(t)
	out, _, err := execute(t, "", "--batch", "--zfs", tool, "tank/fs")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing would be reclaimed")

	calls, err := os.ReadFile(tool + ".calls")
	require.NoError(t, err)
	assert.NotContains(t, string(calls), "destroy")
}

func TestListFailure(t *testing.T) {
	tool := setup(t)
	_, _, err := execute(t, "", "--batch", "--zfs", tool, "")
	require.Error(t, err)
}

func TestMissingTool(t *testing.T) {
	setup(t)
	_, _, err := execute(t, "", "--batch", "--zfs", filepath.Join(t.TempDir(), "nope"), "tank/fs")
	require.Error(t, err)
}

func TestArgs(t *testing.T) {
	setup(t)
	_, _, err := execute(t, "")
	assert.Error(t, err)
	_, _, err = execute(t, "", "a", "b")
	assert.Error(t, err)
}

func TestInvalidFormat(t *testing.T) {
	tool := setup(t)
	_, _, err := execute(t, "", "--batch", "--format", "xml", "--zfs", tool, "tank/fs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}
