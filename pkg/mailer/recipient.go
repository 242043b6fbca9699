package mailer

import "strings"

// Field is one column of a recipient row.
type Field struct {
	Key   string
	Value string
}

// Row is a recipient record. Field order is the column order of the source table
// and is also the order in which placeholders get substituted.
type Row []Field

// Get returns the value of column key, or "" when the row has no such column.
func (r Row) Get(key string) string {
	for _, f := range r {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Has reports whether the row carries column key.
func (r Row) Has(key string) bool {
	for _, f := range r {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the column names in order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, f := range r {
		keys = append(keys, f.Key)
	}
	return keys
}

// RecipientSet is who receives a message: either one bare address or ordered rows
// with a designated email column.
type RecipientSet struct {
	Address     string
	Rows        []Row
	EmailColumn string
}

// IsBulk reports whether the set carries tabular rows.
func (s RecipientSet) IsBulk() bool { return len(s.Rows) > 0 }

// Len is the number of messages the set expands to.
func (s RecipientSet) Len() int {
	if s.IsBulk() {
		return len(s.Rows)
	}
	if strings.TrimSpace(s.Address) == "" {
		return 0
	}
	return 1
}

// LooksLikeEmail is the loose address check used for recipient input:
// the address must contain '@' and '.'.
func LooksLikeEmail(addr string) bool {
	return strings.Contains(addr, "@") && strings.Contains(addr, ".")
}
