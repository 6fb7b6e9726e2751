package cqltest

import (
	"fmt"
	"io"

	"github.com/jstemmer/go-junit-report/v2/junit"
)

// JUnit converts the report to JUnit testsuites, one testsuite per file.
func (r *Report) JUnit() junit.Testsuites {
	var suites junit.Testsuites
	suites.Name = r.Suite

	byFile := map[string]*junit.Testsuite{}
	var order []string
	for _, c := range r.Cases {
		ts, seen := byFile[c.File]
		if !seen {
			ts = &junit.Testsuite{Name: c.File}
			byFile[c.File] = ts
			order = append(order, c.File)
		}
		tc := junit.Testcase{
			Classname: r.Suite,
			Name:      c.Name,
			Time:      fmt.Sprintf("%.3f", c.Duration.Seconds()),
		}
		if !c.OK {
			tc.Failure = &junit.Result{Message: c.Message}
		}
		ts.AddTestcase(tc)
	}

	for _, file := range order {
		ts := byFile[file]
		suites.AddSuite(*ts)
	}
	return suites
}

// WriteJUnit writes the report as JUnit XML.
func (r *Report) WriteJUnit(w io.Writer) error {
	suites := r.JUnit()
	return suites.WriteXML(w)
}
