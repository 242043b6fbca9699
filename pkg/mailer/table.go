package mailer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyTable      = errors.New("recipient table has no rows")
	ErrMissingHeader   = errors.New("recipient table has no header row")
	ErrEmptyColumnName = errors.New("recipient table has an empty column name")
	ErrUnknownColumn   = errors.New("email column not in header")
)

// InvalidAddressesError lists email cells that fail the loose address check.
type InvalidAddressesError struct {
	Addresses []string
}

func (e *InvalidAddressesError) Error() string {
	return "invalid email addresses: " + strings.Join(e.Addresses, ", ")
}

// Table is a parsed recipient list.
type Table struct {
	Columns     []string
	EmailColumn string
	Rows        []Row
}

// Variables are the placeholders the table can fill besides the email column.
func (t *Table) Variables() []string {
	return Variables(t.Columns, t.EmailColumn)
}

// ParseTable reads spreadsheet text pasted as CSV or TSV; the first line is the
// header. The delimiter is a tab when the header contains one, a comma otherwise.
// emailColumn defaults to the first column. Rows whose email cell is blank are
// dropped; any remaining cell that does not look like an address fails the parse.
func ParseTable(text, emailColumn string) (*Table, error) {
	text = strings.TrimPrefix(text, utf8BOM)
	header, _, _ := strings.Cut(text, "\n")
	if strings.TrimSpace(header) == "" {
		return nil, ErrMissingHeader
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if strings.Contains(header, "\t") {
		r.Comma = '\t'
	}

	cols, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, ErrEmptyColumnName
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
		cols[i] = c
	}
	if emailColumn == "" {
		emailColumn = cols[0]
	}
	if !seen[emailColumn] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, emailColumn)
	}

	t := &Table{Columns: cols, EmailColumn: emailColumn}
	var invalid []string
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[i] = Field{Key: c}
			if i < len(rec) {
				row[i].Value = rec[i]
			}
		}
		for _, extra := range rec[min(len(rec), len(cols)):] {
			if strings.TrimSpace(extra) != "" {
				return nil, fmt.Errorf("line %d: more cells than columns", line)
			}
		}
		addr := strings.TrimSpace(row.Get(emailColumn))
		if addr == "" {
			continue
		}
		if !LooksLikeEmail(addr) {
			invalid = append(invalid, addr)
		}
		t.Rows = append(t.Rows, row)
	}
	if len(invalid) > 0 {
		return nil, &InvalidAddressesError{Addresses: invalid}
	}
	if len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}
