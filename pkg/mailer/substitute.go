package mailer

import (
	"strings"
)

// Placeholder returns the literal marker for column key, e.g. "${name}".
func Placeholder(key string) string {
	return "${" + key + "}"
}

// Substitute replaces every literal ${key} in text with the row's value for key.
//
// Columns are applied one after another in row order, each on the output of the
// previous one, so a value that itself contains ${other} is expanded if "other"
// comes later in the row. There is no escape for a literal ${x}. Placeholders
// naming a column the row does not have are left untouched.
func Substitute(text string, row Row) string {
	out := text
	for _, f := range row {
		out = strings.ReplaceAll(out, Placeholder(f.Key), f.Value)
	}
	return out
}

// Variables lists the columns a template can reference besides the email column.
func Variables(columns []string, emailColumn string) []string {
	vars := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != emailColumn {
			vars = append(vars, c)
		}
	}
	return vars
}
