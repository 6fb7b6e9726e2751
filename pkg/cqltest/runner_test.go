package cqltest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn scripts per-statement results so the runner can be exercised
// without a live cluster.
type fakeConn struct {
	rows     map[string][]Row
	failing  map[string]error
	executed []string
	commits  int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		rows:    map[string][]Row{},
		failing: map[string]error{},
	}
}

func (c *fakeConn) Cursor() Cursor { return &fakeCursor{conn: c} }

func (c *fakeConn) Commit() error {
	c.commits++
	return nil
}

func (c *fakeConn) Rollback() error { return nil }

func (c *fakeConn) Close() {}

type fakeCursor struct {
	conn *fakeConn
	rows []Row
	pos  int
}

func (c *fakeCursor) Execute(stmt string) error {
	c.conn.executed = append(c.conn.executed, stmt)
	if err, bad := c.conn.failing[stmt]; bad {
		return err
	}
	c.rows = c.conn.rows[stmt]
	c.pos = 0
	return nil
}

func (c *fakeCursor) FetchOne() (Row, bool) {
	if c.pos >= len(c.rows) {
		return nil, false
	}
	row := c.rows[c.pos]
	c.pos++
	return row, true
}

func (c *fakeCursor) FetchAll() []Row { return c.rows }

func (c *fakeCursor) Close() {}

func writeSuite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return filepath.Join(dir, "*.cql")
}

func TestRunAllPassing(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"01_schema.cql": "CREATE TABLE t (id int PRIMARY KEY);\n",
		"02_data.cql":   "INSERT INTO t (id) VALUES (1);\nINSERT INTO t (id) VALUES (2);\n",
	})
	conn := newFakeConn()

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 3, report.OK)
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, "scylla", report.Suite)
	// Files run in sorted order, one commit per file.
	require.Len(t, conn.executed, 3)
	assert.Equal(t, "CREATE TABLE t (id int PRIMARY KEY);", conn.executed[0])
	assert.Equal(t, 2, conn.commits)
}

func TestRunExpectedRows(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"rows.cql": "-- name: read back\n-- expect: 1|ada\nSELECT id, name FROM t;\n",
	})
	conn := newFakeConn()
	conn.rows["SELECT id, name FROM t;"] = []Row{{"1", "ada"}}

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)
	assert.Equal(t, 1, report.OK)
	assert.Equal(t, 0, report.Errors)
}

func TestRunExpectedRowsTrailingWhitespace(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"pad.cql": "-- expect: 1|ok\nSELECT id, label FROM t;\n",
	})
	conn := newFakeConn()
	// A padded text column must still satisfy a trimmed expectation.
	conn.rows["SELECT id, label FROM t;"] = []Row{{"1", "ok \t"}}

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)
	assert.Equal(t, 1, report.OK)
	assert.Equal(t, 0, report.Errors)
}

func TestRunExpectedRowsMismatch(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"rows.cql": "-- expect: 1|ada\nSELECT id, name FROM t;\n",
	})
	conn := newFakeConn()
	conn.rows["SELECT id, name FROM t;"] = []Row{{"1", "grace"}}

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)
	require.Equal(t, 1, report.Errors)
	assert.Contains(t, report.Cases[0].Message, `got "grace", want "ada"`)
}

func TestRunExpectedRowCount(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"count.cql": "-- expect-rows: 2\nSELECT id FROM t;\n-- expect-rows: 1\nSELECT id FROM t;\n",
	})
	conn := newFakeConn()
	conn.rows["SELECT id FROM t;"] = []Row{{"1"}, {"2"}}

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.OK)
	require.Equal(t, 1, report.Errors)
	assert.Contains(t, report.Cases[1].Message, "got 2 rows, want 1")
}

func TestRunExpectError(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"err.cql": "-- expect-error\nSELECT * FROM nope;\n-- expect-error\nSELECT * FROM fine;\n",
	})
	conn := newFakeConn()
	conn.failing["SELECT * FROM nope;"] = errors.New("unconfigured table nope")

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)
	assert.Equal(t, 1, report.OK)
	require.Equal(t, 1, report.Errors)
	assert.Contains(t, report.Cases[1].Message, "expected an error")
}

func TestRunStatementFailure(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"fail.cql": "SELECT * FROM broken;\n",
	})
	conn := newFakeConn()
	conn.failing["SELECT * FROM broken;"] = errors.New("no host available")

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)
	require.Equal(t, 1, report.Errors)
	assert.Contains(t, report.Cases[0].Message, "no host available")
}

func TestRunParseErrorCountsAsCase(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"bad.cql":  "SELECT id FROM t\n", // missing semicolon
		"good.cql": "SELECT id FROM t;\n",
	})
	conn := newFakeConn()

	report, err := Run(glob, conn, nil, "scylla")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.OK)
	require.Equal(t, 1, report.Errors)
	assert.Equal(t, "bad.cql", report.Cases[0].File)
	assert.Contains(t, report.Cases[0].Message, "unterminated statement")
}

func TestRunNoMatchingFiles(t *testing.T) {
	_, err := Run(filepath.Join(t.TempDir(), "*.cql"), newFakeConn(), nil, "scylla")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no test files match")
}

func TestRunAppliesReplaces(t *testing.T) {
	glob := writeSuite(t, map[string]string{
		"repl.cql": "SELECT id FROM @KEYSPACE.t;\n",
	})
	conn := newFakeConn()

	_, err := Run(glob, conn, map[string]string{"@KEYSPACE": "smoke"}, "scylla")
	require.NoError(t, err)
	require.Len(t, conn.executed, 1)
	assert.Equal(t, "SELECT id FROM smoke.t;", conn.executed[0])
}

func TestCompareRows(t *testing.T) {
	ok, _ := compareRows([]Row{{"1", "a"}}, []Row{{"1", "a"}})
	assert.True(t, ok)

	ok, msg := compareRows([]Row{{"1"}}, []Row{{"1"}, {"2"}})
	assert.False(t, ok)
	assert.Contains(t, msg, "got 2 rows, want 1")

	ok, msg = compareRows([]Row{{"1", "a"}}, []Row{{"1"}})
	assert.False(t, ok)
	assert.Contains(t, msg, "columns")

	// Trailing whitespace on the actual cell is insignificant.
	ok, _ = compareRows([]Row{{"ok"}}, []Row{{"ok "}})
	assert.True(t, ok)

	// Leading whitespace still is.
	ok, _ = compareRows([]Row{{"ok"}}, []Row{{" ok"}})
	assert.False(t, ok)
}
