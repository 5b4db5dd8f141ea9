// Package spreadsheet flattens workbooks into one line per non-empty row.
package spreadsheet

import (
	"strings"

	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/normalize"
)

const cellSeparator = " | "

// Sheet is a workbook sheet with display-formatted cell values.
type Sheet struct {
	Name string
	Rows [][]string
}

// Render emits a header per sheet followed by its non-empty rows, then normalizes.
func Render(sheets []Sheet) string {
	var sb strings.Builder
	for _, sheet := range sheets {
		sb.WriteString("# Sheet: ")
		sb.WriteString(sheet.Name)
		sb.WriteByte('\n')
		for _, row := range sheet.Rows {
			line := joinRow(row)
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return normalize.Text(sb.String())
}

func joinRow(cells []string) string {
	values := make([]string, 0, len(cells))
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		values = append(values, cell)
	}
	return strings.Join(values, cellSeparator)
}
