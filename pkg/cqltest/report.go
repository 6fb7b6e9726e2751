package cqltest

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// WriteTable renders a per-file breakdown of the run.
func (r *Report) WriteTable(w io.Writer) {
	type fileStats struct {
		tests, ok, errors int
	}
	stats := map[string]*fileStats{}
	var order []string
	for _, c := range r.Cases {
		s, seen := stats[c.File]
		if !seen {
			s = &fileStats{}
			stats[c.File] = s
			order = append(order, c.File)
		}
		s.tests++
		if c.OK {
			s.ok++
		} else {
			s.errors++
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Tests", "OK", "Errors"})
	for _, file := range order {
		s := stats[file]
		table.Append([]string{
			file,
			strconv.Itoa(s.tests),
			strconv.Itoa(s.ok),
			strconv.Itoa(s.errors),
		})
	}
	table.SetFooter([]string{
		"total",
		strconv.Itoa(r.Total),
		strconv.Itoa(r.OK),
		strconv.Itoa(r.Errors),
	})
	table.Render()
}
