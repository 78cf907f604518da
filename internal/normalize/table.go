package normalize

import (
	"errors"
	"strings"
)

// errors surfaced to the import handler; wrapped into the app error taxonomy
// by the service layer.
var (
	ErrEmptyTable = errors.New("pasted table is empty")
	ErrHeaderOnly = errors.New("pasted table needs a header row and at least one data row")
)

// ParseTable converts pasted spreadsheet text into raw rows. The first line is
// the header. The separator is sniffed from the header in preference order
// tab, semicolon, comma, matching how office suites copy table ranges. Cells
// holding "", "-" or "N/A" become nil so they read as absent downstream.
func ParseTable(text string) ([]Row, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyTable
	}
	lines := strings.Split(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil, ErrHeaderOnly
	}

	sep := "\t"
	if !strings.Contains(lines[0], "\t") {
		if strings.Contains(lines[0], ";") {
			sep = ";"
		} else if strings.Contains(lines[0], ",") {
			sep = ","
		}
	}

	headers := strings.Split(lines[0], sep)
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := strings.Split(line, sep)
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			var cell string
			if i < len(values) {
				cell = strings.TrimSpace(values[i])
			}
			if cell == "" || cell == "-" || strings.EqualFold(cell, "n/a") {
				row[h] = nil
				continue
			}
			row[h] = cell
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrHeaderOnly
	}
	return rows, nil
}
