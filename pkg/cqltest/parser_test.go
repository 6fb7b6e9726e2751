package cqltest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFileSplitsStatements(t *testing.T) {
	content := `
-- a plain comment, not a directive
CREATE TABLE @KEYSPACE.users (id int PRIMARY KEY, name text);

INSERT INTO @KEYSPACE.users (id, name)
VALUES (1, 'ada');
`
	path := writeTestFile(t, "split.cql", content)
	cases, err := ParseFile(path, map[string]string{"@KEYSPACE": "ks1"})
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "CREATE TABLE ks1.users (id int PRIMARY KEY, name text);", cases[0].Stmt)
	assert.Equal(t, "INSERT INTO ks1.users (id, name) VALUES (1, 'ada');", cases[1].Stmt)
	assert.Equal(t, "split.cql#1", cases[0].Name)
	assert.Equal(t, "split.cql#2", cases[1].Name)
	assert.Equal(t, "split.cql", cases[0].File)
}

func TestParseFileDirectives(t *testing.T) {
	content := `
-- name: read ada back
-- expect: 1|ada
SELECT id, name FROM users WHERE id = 1;

-- expect-rows: 0
SELECT id FROM users WHERE id = 99;

-- expect-error
SELECT * FROM no_such_table;

SELECT now() FROM system.local;
`
	path := writeTestFile(t, "directives.cql", content)
	cases, err := ParseFile(path, nil)
	require.NoError(t, err)
	require.Len(t, cases, 4)

	assert.Equal(t, "read ada back", cases[0].Name)
	require.Len(t, cases[0].Expect, 1)
	assert.Equal(t, Row{"1", "ada"}, cases[0].Expect[0])
	assert.Equal(t, -1, cases[0].ExpectRows)

	assert.Nil(t, cases[1].Expect)
	assert.Equal(t, 0, cases[1].ExpectRows)

	assert.True(t, cases[2].ExpectErr)

	// Directives must not leak into the following statement.
	assert.False(t, cases[3].ExpectErr)
	assert.Nil(t, cases[3].Expect)
	assert.Equal(t, -1, cases[3].ExpectRows)
}

func TestParseFileMultipleExpectRows(t *testing.T) {
	content := `
-- expect: 1|ada
-- expect: 2|grace
SELECT id, name FROM users;
`
	path := writeTestFile(t, "multi.cql", content)
	cases, err := ParseFile(path, nil)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	require.Len(t, cases[0].Expect, 2)
	assert.Equal(t, Row{"1", "ada"}, cases[0].Expect[0])
	assert.Equal(t, Row{"2", "grace"}, cases[0].Expect[1])
}

func TestParseFileInlineComment(t *testing.T) {
	content := "SELECT id FROM users; -- trailing note\n"
	path := writeTestFile(t, "inline.cql", content)
	cases, err := ParseFile(path, nil)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "SELECT id FROM users;", cases[0].Stmt)
}

func TestParseFileBadExpectRows(t *testing.T) {
	content := "-- expect-rows: many\nSELECT 1;\n"
	path := writeTestFile(t, "bad.cql", content)
	_, err := ParseFile(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expect-rows")
}

func TestParseFileUnterminatedStatement(t *testing.T) {
	content := "SELECT id FROM users\n"
	path := writeTestFile(t, "open.cql", content)
	_, err := ParseFile(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated statement")
}

func TestParseFileEmpty(t *testing.T) {
	path := writeTestFile(t, "empty.cql", "\n-- nothing but comments\n")
	cases, err := ParseFile(path, nil)
	require.NoError(t, err)
	assert.Empty(t, cases)
}
