package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/library"
)

func runCLI(t *testing.T, dbPath string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LIBRARY_LOG_LEVEL", "")
	t.Setenv("LIBRARY_DB_DRIVER", "")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--driver", library.DriverPureGo, "--db", dbPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCirculationCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, _, err := runCLI(t, db, "book", "add", "Dune", "--genre", "science")
	require.NoError(t, err)
	assert.Contains(t, out, "Book added with ID 1.")

	out, _, err = runCLI(t, db, "book", "borrow", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Book 'Dune' borrowed.")

	_, _, err = runCLI(t, db, "book", "borrow", "1")
	assert.ErrorIs(t, err, library.ErrBookNotAvailable)

	out, errOut, err := runCLI(t, db, "book", "return", "1", "--late")
	require.NoError(t, err, "a late return still succeeds")
	assert.Contains(t, errOut, "late")
	assert.Contains(t, out, "returned and available")

	out, _, err = runCLI(t, db, "book", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "SCIENCE")
	assert.Contains(t, out, "true")
}

func TestBookAddRejectsUnknownGenre(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	_, _, err := runCLI(t, db, "book", "add", "Odes", "--genre", "poetry")
	assert.ErrorIs(t, err, library.ErrInvalidArgument)
}

func TestMemberCommandsJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, _, err := runCLI(t, db, "member", "add", "Alice", "--level", "gold")
	require.NoError(t, err)

	out, _, err := runCLI(t, db, "--json", "member", "fee", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"member_id": 1, "fee": 500}`, out)

	out, _, err = runCLI(t, db, "--json", "member", "list")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": 1, "name": "Alice", "membership_level": "GOLD"}]`, out)
}

func TestSearchJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	_, _, err := runCLI(t, db, "book", "add", "A Brief History of Time", "-g", "SCIENCE")
	require.NoError(t, err)
	_, _, err = runCLI(t, db, "book", "add", "Steve Jobs", "-g", "biography")
	require.NoError(t, err)

	out, _, err := runCLI(t, db, "--json", "book", "search", "history")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": 1, "title": "A Brief History of Time", "genre": "SCIENCE", "available": true}]`, out)
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestTitleWidthForNonTerminal(t *testing.T) {
	assert.Equal(t, defaultTitleWidth, titleWidth(&bytes.Buffer{}))
}
