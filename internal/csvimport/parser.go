// Package csvimport turns uploaded CSV text into header-keyed records.
//
// The reader is forgiving: a quote anywhere outside a quoted section opens one,
// row/header length mismatches are tolerated and nothing is ever reported as an error.
package csvimport

import "strings"

// Record maps a header cell to the value found in the same column.
type Record map[string]string

// Parse reads the whole of text. The first row is the header; every later non-blank row is
// zipped against it by position. Short rows produce partial records and extra trailing
// values are dropped. Duplicate headers let the later column win.
func Parse(text string) []Record {
	rows := tokenize(text)
	if len(rows) == 0 {
		return []Record{}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = stripQuotes(strings.TrimSpace(h))
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i >= len(row) {
				break
			}
			rec[h] = row[i]
		}
		records = append(records, rec)
	}
	return records
}

// Headers returns the cleaned header row of text, or nil if there is none.
func Headers(text string) []string {
	rows := tokenize(text)
	if len(rows) == 0 {
		return nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = stripQuotes(strings.TrimSpace(h))
	}
	return headers
}

// tokenize splits text into rows of trimmed fields in a single pass.
func tokenize(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
		pending  bool
	)

	pushField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	pushRow := func() {
		pushField()
		if !blank(row) {
			rows = append(rows, row)
		}
		row = nil
		pending = false
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inQuotes {
			switch {
			case ch == '"' && i+1 < len(text) && text[i+1] == '"':
				field.WriteByte('"')
				i++
			case ch == '"':
				inQuotes = false
			default:
				field.WriteByte(ch)
			}
			continue
		}

		switch {
		case ch == '"':
			inQuotes = true
			pending = true
		case ch == ',':
			pushField()
			pending = true
		case ch == '\r' && i+1 < len(text) && text[i+1] == '\n':
			pushRow()
			i++
		case ch == '\n':
			pushRow()
		default:
			field.WriteByte(ch)
			pending = true
		}
	}

	if pending || field.Len() > 0 || len(row) > 0 {
		pushRow()
	}
	return rows
}

// blank reports rows with no cells or a single empty cell.
func blank(row []string) bool {
	return len(row) == 0 || (len(row) == 1 && row[0] == "")
}

func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
