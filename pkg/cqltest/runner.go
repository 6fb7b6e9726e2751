package cqltest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"scylla_cqltest/pkg/observability"
)

// CaseResult is the outcome of a single executed case.
type CaseResult struct {
	Suite    string
	File     string
	Name     string
	OK       bool
	Message  string
	Duration time.Duration
}

// Report is the summary of one suite run.
type Report struct {
	Suite    string
	Total    int
	OK       int
	Errors   int
	Cases    []CaseResult
	Duration time.Duration
}

// Run discovers test files matching glob, executes every case against conn
// and returns the aggregated report. A file that fails to parse contributes
// a single error case so the run keeps going and the report stays honest.
func Run(glob string, conn Conn, replaces map[string]string, suite string) (*Report, error) {
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("bad test file pattern %q: %w", glob, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no test files match %q", glob)
	}
	sort.Strings(files)

	report := &Report{Suite: suite}
	start := time.Now()

	for _, file := range files {
		cases, err := ParseFile(file, replaces)
		if err != nil {
			report.add(CaseResult{
				Suite:   suite,
				File:    filepath.Base(file),
				Name:    filepath.Base(file),
				Message: err.Error(),
			})
			continue
		}
		for _, c := range cases {
			report.add(runCase(conn, c, suite))
		}
		if err := conn.Commit(); err != nil {
			return nil, fmt.Errorf("commit after %s: %w", file, err)
		}
	}

	report.Duration = time.Since(start)
	observability.SuiteDuration.Observe(report.Duration.Seconds())
	return report, nil
}

func runCase(conn Conn, c Case, suite string) CaseResult {
	result := CaseResult{Suite: suite, File: c.File, Name: c.Name}

	cursor := conn.Cursor()
	defer cursor.Close()

	start := time.Now()
	err := cursor.Execute(c.Stmt)
	result.Duration = time.Since(start)
	observability.StatementDuration.Observe(result.Duration.Seconds())

	switch {
	case c.ExpectErr:
		if err == nil {
			result.Message = "statement succeeded, expected an error"
		} else {
			result.OK = true
		}
	case err != nil:
		result.Message = err.Error()
	case c.Expect != nil:
		result.OK, result.Message = compareRows(c.Expect, cursor.FetchAll())
	case c.ExpectRows >= 0:
		got := len(cursor.FetchAll())
		if got != c.ExpectRows {
			result.Message = fmt.Sprintf("got %d rows, want %d", got, c.ExpectRows)
		} else {
			result.OK = true
		}
	default:
		result.OK = true
	}

	status := "ok"
	if !result.OK {
		status = "error"
	}
	observability.CasesExecutedTotal.WithLabelValues(status).Inc()
	return result
}

func compareRows(want, got []Row) (bool, string) {
	if len(got) != len(want) {
		return false, fmt.Sprintf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			return false, fmt.Sprintf("row %d: got %d columns, want %d", i+1, len(got[i]), len(want[i]))
		}
		for j := range want[i] {
			// Expected cells are trimmed at parse time; trim the actual
			// cell the same way so padded text columns still match.
			cell := strings.TrimRight(got[i][j], " \t")
			if cell != want[i][j] {
				return false, fmt.Sprintf("row %d column %d: got %q, want %q", i+1, j+1, cell, want[i][j])
			}
		}
	}
	return true, ""
}

func (r *Report) add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	r.Total++
	if c.OK {
		r.OK++
	} else {
		r.Errors++
	}
}
