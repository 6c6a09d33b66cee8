package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCommand_Records(t *testing.T) {
	out, _, err := execute(t, "query", queriesDir+"/adults.yaml", "--records", peopleFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], `{"active":true,"address":{"city":"Berlin"},"age":65,"id":5`))
	assert.True(t, strings.HasPrefix(lines[1], `{"active":true,"address":{"city":"London"},"age":36,"id":1`))
	assert.Equal(t, "page 1/2 (3 total)", lines[2])
}

func TestQueryCommand_PageOverride(t *testing.T) {
	out, _, err := execute(t, "query", queriesDir+"/adults.yaml", "--records", peopleFile, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":6`)
	assert.Contains(t, out, "page 2/2 (3 total)")
}

func TestQueryCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "query", queriesDir+"/london.json", "--records", peopleFile)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	require.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(4), data["total"])
	assert.Len(t, data["data"], 4)
	assert.Equal(t, false, data["hasNext"])
}

func TestQueryCommand_SchemaError(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "query", queriesDir+"/bad_operator.yaml", "--records", peopleFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeSchema, resp.Error.Code)
}

func TestQueryCommand_MissingFiles(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"query file", []string{"query", "missing.yaml", "--records", peopleFile}},
		{"records file", []string{"query", "--records", "missing.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestQueryCommand_RecordsAndCollectionExclusive(t *testing.T) {
	_, _, err := execute(t, "query", "--records", peopleFile, "--collection", "people")
	require.Error(t, err)
}

func TestQueryCommand_StoreMatchesRecords(t *testing.T) {
	db := filepath.Join(t.TempDir(), "sieve.db")
	_, _, err := execute(t, "import", peopleFile, "--db", db, "--collection", "people")
	require.NoError(t, err)

	for _, name := range []string{"adults.yaml", "london.json", "nulls.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(queriesDir, name)
			want, _, err := execute(t, "query", path, "--records", peopleFile)
			require.NoError(t, err)

			pushed, _, err := execute(t, "query", path, "--db", db, "--collection", "people", "--pushdown")
			require.NoError(t, err)
			assert.Equal(t, want, pushed)

			memory, _, err := execute(t, "query", path, "--db", db, "--collection", "people", "--no-pushdown")
			require.NoError(t, err)
			assert.Equal(t, want, memory)
		})
	}
}

func TestQueryCommand_UnknownCollectionIsEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "sieve.db")
	out, _, err := execute(t, "query", "--db", db, "--collection", "nothing")
	require.NoError(t, err)
	assert.Equal(t, "page 1/0 (0 total)\n", out)
}
