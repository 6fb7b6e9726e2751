package cqltest

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// Row is a single result row with every cell rendered to its text form,
// in column order.
type Row []string

// Cursor executes one statement at a time and exposes its result set.
type Cursor interface {
	Execute(stmt string) error
	FetchOne() (Row, bool)
	FetchAll() []Row
	Close()
}

// Conn hands out cursors over a live session. Commit and Rollback exist for
// callers written against transactional stores; ScyllaDB is auto-commit and
// non-transactional, so both are no-ops here.
type Conn interface {
	Cursor() Cursor
	Commit() error
	Rollback() error
	Close()
}

type scyllaConn struct {
	session *gocql.Session
}

// NewConn adapts a gocql session to the Conn interface.
func NewConn(session *gocql.Session) Conn {
	return &scyllaConn{session: session}
}

func (c *scyllaConn) Cursor() Cursor {
	return &scyllaCursor{session: c.session}
}

func (c *scyllaConn) Commit() error { return nil }

func (c *scyllaConn) Rollback() error { return nil }

func (c *scyllaConn) Close() {
	if c.session != nil {
		c.session.Close()
	}
}

type scyllaCursor struct {
	session *gocql.Session
	rows    []Row
	pos     int
}

// Execute runs the statement and buffers the full result set. Suites are
// expected to select small fixtures, never table scans.
func (c *scyllaCursor) Execute(stmt string) error {
	c.rows = nil
	c.pos = 0

	iter := c.session.Query(stmt).Iter()
	cols := iter.Columns()

	for {
		scanned := make(map[string]interface{}, len(cols))
		if !iter.MapScan(scanned) {
			break
		}
		row := make(Row, 0, len(cols))
		for _, col := range cols {
			row = append(row, formatCell(scanned[col.Name]))
		}
		c.rows = append(c.rows, row)
	}

	return iter.Close()
}

func (c *scyllaCursor) FetchOne() (Row, bool) {
	if c.pos >= len(c.rows) {
		return nil, false
	}
	row := c.rows[c.pos]
	c.pos++
	return row, true
}

func (c *scyllaCursor) FetchAll() []Row {
	return c.rows
}

func (c *scyllaCursor) Close() {
	c.rows = nil
	c.pos = 0
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case []byte:
		return fmt.Sprintf("0x%x", x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
