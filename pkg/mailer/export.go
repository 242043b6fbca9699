package mailer

import (
	"encoding/csv"
	"io"
)

// utf8BOM lets spreadsheet applications detect UTF-8 in the exported file.
const utf8BOM = "\ufeff"

// ResultColumns is the header of a result export.
var ResultColumns = []string{"email", "status"}

// WriteResultsCSV writes one row per result, in result order.
func WriteResultsCSV(w io.Writer, results []SendResult) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultColumns); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write([]string{r.Recipient, r.Outcome.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
