package domain

import (
	"errors"
)

// DefaultColumns is the header set of the PhonePe transaction statement layout.
var DefaultColumns = []string{"Date", "Transaction Details", "Type", "Amount"}

// NoTablesMessage is reported when a document opens but yields no table rows.
const NoTablesMessage = "No tables detected in the PDF."

// Row is one table row. Cells map positionally onto Table.Columns; an empty
// string is an empty cell.
type Row []string

// Degraded reports whether the row has fewer cells than the table is wide.
// Short rows are passed through as found, never padded.
func (r Row) Degraded(width int) bool {
	return len(r) < width
}

// Cell returns the i-th cell, or "" when the row is too short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Table is the extracted transaction table, rows in document order.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DegradedRows returns the indices of rows shorter than the column set.
func (t *Table) DegradedRows() []int {
	var idx []int
	for i, r := range t.Rows {
		if r.Degraded(len(t.Columns)) {
			idx = append(idx, i)
		}
	}
	return idx
}

// OutcomeKind tags an Outcome.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
	OutcomeEmpty   OutcomeKind = "empty"
)

// Outcome is the result of one extraction: a table, an error, or nothing found.
// A table and an error are never set together.
type Outcome struct {
	Kind    OutcomeKind
	Table   *Table
	Message string
	Err     error
}

// Success wraps an extracted table.
func Success(table *Table) Outcome {
	return Outcome{Kind: OutcomeSuccess, Table: table}
}

// Failure wraps an extraction error; Message carries the error text.
func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Message: err.Error(), Err: err}
}

// Empty reports a document that opened but produced no rows.
func Empty(message string) Outcome {
	return Outcome{Kind: OutcomeEmpty, Message: message}
}

// NeedsPassword reports a failure caused by an encrypted document opened without a password.
func (o Outcome) NeedsPassword() bool {
	return o.Kind == OutcomeFailure && errors.Is(o.Err, ErrPasswordRequired)
}

// TypeTotal is the sum of the Amount column for one value of the Type column.
type TypeTotal struct {
	Type    string `json:"type"`
	Count   int    `json:"count"`
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

// Summary aggregates an extracted table. Rows whose amount cannot be read
// (header rows, degraded rows) are counted as skipped.
type Summary struct {
	Rows        int         `json:"rows"`
	ParsedRows  int         `json:"parsed_rows"`
	SkippedRows int         `json:"skipped_rows"`
	Currency    string      `json:"currency"`
	Totals      []TypeTotal `json:"totals"`
}
