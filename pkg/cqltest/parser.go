package cqltest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Case is one executable statement from a test file together with the
// expectations declared in the directive comments above it.
type Case struct {
	Name       string
	File       string
	Stmt       string
	Expect     []Row // expected result rows, nil when not asserted
	ExpectRows int   // expected row count, -1 when not asserted
	ExpectErr  bool  // the statement must fail
}

const (
	directiveName       = "name:"
	directiveExpect     = "expect:"
	directiveExpectRows = "expect-rows:"
	directiveExpectErr  = "expect-error"
)

// ParseFile reads a .cql test file and returns its cases in file order.
//
// Lines starting with double dashes are comments; a comment may carry a
// directive binding to the next statement. Statements end at a semicolon
// and may span lines. Placeholders from replaces (e.g. @KEYSPACE) are
// substituted into every statement.
//
// Double dashes inside a CQL string literal are not supported: the rest of
// the line is taken as a comment.
func ParseFile(path string, replaces map[string]string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	replacer := newReplacer(replaces)
	base := filepath.Base(path)

	var cases []Case
	pending := Case{ExpectRows: -1}
	var stmtParts []string
	lineno := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "--") {
			if err := parseDirective(&pending, strings.TrimSpace(line[2:])); err != nil {
				return nil, fmt.Errorf("%s:%d: %v", base, lineno, err)
			}
			continue
		}

		// Drop a trailing inline comment before accumulating.
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		stmtParts = append(stmtParts, line)
		if strings.HasSuffix(line, ";") {
			c := pending
			c.File = base
			c.Stmt = replacer.Replace(strings.Join(stmtParts, " "))
			if c.Name == "" {
				c.Name = fmt.Sprintf("%s#%d", base, len(cases)+1)
			}
			cases = append(cases, c)
			pending = Case{ExpectRows: -1}
			stmtParts = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(stmtParts) > 0 {
		return nil, fmt.Errorf("%s: unterminated statement at end of file: %q", base, strings.Join(stmtParts, " "))
	}
	return cases, nil
}

func parseDirective(c *Case, body string) error {
	switch {
	case strings.HasPrefix(body, directiveName):
		c.Name = strings.TrimSpace(body[len(directiveName):])
	case strings.HasPrefix(body, directiveExpectRows):
		n, err := strconv.Atoi(strings.TrimSpace(body[len(directiveExpectRows):]))
		if err != nil || n < 0 {
			return fmt.Errorf("bad expect-rows directive: %q", body)
		}
		c.ExpectRows = n
	case strings.HasPrefix(body, directiveExpect):
		cells := strings.Split(body[len(directiveExpect):], "|")
		row := make(Row, 0, len(cells))
		for _, cell := range cells {
			row = append(row, strings.TrimSpace(cell))
		}
		c.Expect = append(c.Expect, row)
	case body == directiveExpectErr:
		c.ExpectErr = true
	}
	// Anything else is a plain comment.
	return nil
}

func newReplacer(replaces map[string]string) *strings.Replacer {
	pairs := make([]string, 0, len(replaces)*2)
	for k, v := range replaces {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...)
}
