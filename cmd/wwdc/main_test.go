package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wwdc-sessions/internal/events"
)

func writeYear(t *testing.T, root, year, body string) {
	t.Helper()
	dir := filepath.Join(root, year)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_sessions.yml"), []byte(body), 0o644))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvertCmd_Stdout(t *testing.T) {
	root := t.TempDir()
	writeYear(t, root, "2019", "\"204\":\n  :title: Introducing SwiftUI\n  :description: Declarative UI.\n  :track: App Frameworks\n")

	stdout, _, err := execute(t, "convert", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"2019"`)
	assert.Contains(t, stdout, `"url": "https://developer.apple.com/wwdc19/204"`)
	assert.NoError(t, events.Validate([]byte(stdout)))
}

func TestConvertCmd_OutputFile(t *testing.T) {
	root := t.TempDir()
	writeYear(t, root, "2021", "- [10132, {title: Meet async/await, description: d, track: Swift}]\n")
	out := filepath.Join(t.TempDir(), "sessions.json")

	stdout, _, err := execute(t, "convert", root, "-o", out, "--jobs", "2")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"10132"`)
}

func TestConvertCmd_BrokenYearExitsNonZero(t *testing.T) {
	root := t.TempDir()
	writeYear(t, root, "2019", "\"1\":\n  :title: ok\n  :description: ok\n  :track: ok\n")
	writeYear(t, root, "2020", "\"1\":\n  :title: missing track\n  :description: d\n")

	stdout, stderr, err := execute(t, "convert", root)
	require.Error(t, err)
	assert.Contains(t, stdout, `"2019"`)
	assert.NotContains(t, stdout, `"2020"`)
	assert.Contains(t, stderr, "skipping year")
}

func TestConvertCmd_BrokenYearNamedWithoutLogs(t *testing.T) {
	root := t.TempDir()
	writeYear(t, root, "2019", "\"1\":\n  :title: ok\n  :description: ok\n  :track: ok\n")
	writeYear(t, root, "2020", "\"1\":\n  :title: missing track\n  :description: d\n")
	bad := filepath.Join(root, "2020", "_sessions.yml")

	_, stderr, err := execute(t, "--log-level", "error", "convert", root)
	require.Error(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, err.Error(), "2020")
	assert.Contains(t, err.Error(), bad)
}

func TestConvertCmd_RequiresRoot(t *testing.T) {
	_, _, err := execute(t, "convert")
	assert.Error(t, err)
}

func TestConvertCmd_WatchNeedsOutput(t *testing.T) {
	_, _, err := execute(t, "convert", t.TempDir(), "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestConvertCmd_InvalidJobs(t *testing.T) {
	_, _, err := execute(t, "convert", t.TempDir(), "--jobs", "0")
	assert.Error(t, err)
}

func TestParseYearArg(t *testing.T) {
	y, err := parseYearArg("2021")
	require.NoError(t, err)
	assert.Equal(t, uint(2021), y)

	_, err = parseYearArg("21a")
	assert.Error(t, err)
}
