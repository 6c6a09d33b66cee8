package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	peopleFile   = "../query/testdata/people.json"
	queriesDir   = "../query/testdata/queries"
	scenarioDir  = "../harness/testdata/scenarios"
	scenarioGold = "../harness/testdata/golden"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"query", "validate", "explain", "import", "collections", "test"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "query", "--records", peopleFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "sieve.yaml", "output: json\nquery:\n  default_limit: 2\n")

	out, _, err := execute(t, "--config", cfg, "query", "--records", peopleFile)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["limit"])
	assert.Equal(t, float64(6), data["total"])
}

func TestRootCommand_FormatFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "sieve.yaml", "output: json\n")

	out, _, err := execute(t, "--config", cfg, "--format", "text", "query", "--records", peopleFile, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1/6 (6 total)")
}

func TestRootCommand_MissingConfig(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "collections")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_VerboseLogsToStderr(t *testing.T) {
	out, errOut, err := execute(t, "-v", "query", queriesDir+"/adults.yaml", "--records", peopleFile)
	require.NoError(t, err)
	assert.Contains(t, errOut, "running query in memory")
	assert.NotContains(t, out, "running query in memory")
}
