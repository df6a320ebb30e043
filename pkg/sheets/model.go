package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordsFromGrid turns a sheet's cell grid into one record per data row,
// keyed by the header in row 0. Short rows read as empty cells, rows with
// no content are skipped and blank header cells are ignored.
func RecordsFromGrid(values [][]interface{}) []map[string]string {
	if len(values) == 0 {
		return []map[string]string{}
	}
	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = strings.TrimSpace(CellString(cell))
	}

	records := make([]map[string]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make(map[string]string, len(header))
		blank := true
		for i, col := range header {
			if col == "" {
				continue
			}
			v := ""
			if i < len(row) {
				v = CellString(row[i])
			}
			if v != "" {
				blank = false
			}
			rec[col] = v
		}
		if blank {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// CellString renders a cell value the way it reads in the sheet.
func CellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		if c {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(c)
	}
}

// ToGrid builds the value grid written by ReplaceAll.
func ToGrid(header []string, rows [][]string) [][]interface{} {
	grid := make([][]interface{}, 0, len(rows)+1)
	grid = append(grid, toCells(header))
	for _, row := range rows {
		grid = append(grid, toCells(row))
	}
	return grid
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// a1Sheet quotes a sheet title for use as an A1 range.
func a1Sheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
