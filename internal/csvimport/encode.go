package csvimport

import (
	"encoding/csv"
	"strings"
)

// Encode writes records back out as CSV with headers as the first row. Cells are emitted up
// to the last header a record carries, so partial records stay partial when re-parsed.
func Encode(headers []string, records []Record) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write(headers); err != nil {
		return "", err
	}
	for _, rec := range records {
		last := -1
		for i, h := range headers {
			if _, ok := rec[h]; ok {
				last = i
			}
		}
		if last < 0 {
			continue
		}
		row := make([]string, last+1)
		for i := range row {
			row[i] = rec[headers[i]]
		}
		if len(row) == 1 && row[0] == "" {
			// a lone empty cell reads back as a blank row
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}
