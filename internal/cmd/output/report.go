// Package output renders the end-of-run artifacts for the operator: the
// disposition table, the enrichment progress line, and the catalog diff
// preview shown at the confirmation gate.
package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Row is one classified candidate in the run report.
type Row struct {
	ID          int
	Language    string
	Name        string
	Domain      string
	Disposition string
}

// Report accumulates classification rows for end-of-run display.
type Report struct {
	rows []Row
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends one classified candidate.
func (r *Report) Add(row Row) {
	r.rows = append(r.rows, row)
}

// Len returns the number of recorded rows.
func (r *Report) Len() int {
	return len(r.rows)
}

// Render writes the report as a table, rows ascending by identifier.
func (r *Report) Render(w io.Writer) error {
	if len(r.rows) == 0 {
		return nil
	}

	rows := make([]Row, len(r.rows))
	copy(rows, r.rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	table := tablewriter.NewTable(w)
	table.Header("ID", "Lang", "Name", "Domain", "Disposition")
	for _, row := range rows {
		if err := table.Append(strconv.Itoa(row.ID), row.Language, row.Name, row.Domain, row.Disposition); err != nil {
			return err
		}
	}
	return table.Render()
}

// Progress writes a single-line progress indicator, overwriting itself on
// each call. Call Done to terminate the line.
func Progress(w io.Writer, label string, done, total int) {
	if total <= 0 {
		return
	}
	const width = 40
	filled := width * done / total
	if filled > width {
		filled = width
	}
	bar := make([]byte, width)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = ' '
		}
	}
	fmt.Fprintf(w, "\r%s: [%s] %.1f%%", label, bar, 100*float64(done)/float64(total))
}

// Done terminates a progress line.
func Done(w io.Writer) {
	fmt.Fprintln(w)
}
