package store

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnRange returns an A1 range covering one column, e.g. C2:C10000.
func ColumnRange(col string, first, last int) string {
	return fmt.Sprintf("%s%d:%s%d", col, first, col, last)
}

// BlockRange returns an A1 range spanning columns from..to, e.g. A2:F10000.
func BlockRange(from, to string, first, last int) string {
	return fmt.Sprintf("%s%d:%s%d", from, first, to, last)
}

// CellAddress returns a single-cell A1 address, e.g. D14.
func CellAddress(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// ColumnIndex converts a column label (A, B, ..., AA) to a 0-based index.
func ColumnIndex(col string) (int, error) {
	col = strings.ToUpper(strings.TrimSpace(col))
	if col == "" {
		return 0, fmt.Errorf("empty column label")
	}
	idx := 0
	for _, r := range col {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column label %q", col)
		}
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1, nil
}

// ColumnLabel converts a 0-based index back to its label.
func ColumnLabel(idx int) string {
	label := ""
	for idx >= 0 {
		label = string(rune('A'+idx%26)) + label
		idx = idx/26 - 1
	}
	return label
}

// Cell is a parsed A1 reference. Row is 1-based; Row 0 means "whole column".
type Cell struct {
	Col int
	Row int
}

// ParseCell parses references such as D14 or C.
func ParseCell(ref string) (Cell, error) {
	ref = strings.TrimSpace(ref)
	split := strings.IndexFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' })
	colPart, rowPart := ref, ""
	if split >= 0 {
		colPart, rowPart = ref[:split], ref[split:]
	}
	col, err := ColumnIndex(colPart)
	if err != nil {
		return Cell{}, err
	}
	if rowPart == "" {
		return Cell{Col: col}, nil
	}
	row, err := strconv.Atoi(rowPart)
	if err != nil || row < 1 {
		return Cell{}, fmt.Errorf("invalid row in %q", ref)
	}
	return Cell{Col: col, Row: row}, nil
}

// ParseRange parses A1 ranges such as C2:C10000, A:F or Sheet1!A2:F10.
// A single reference is treated as a one-cell range.
func ParseRange(rng string) (Cell, Cell, error) {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	parts := strings.SplitN(rng, ":", 2)
	start, err := ParseCell(parts[0])
	if err != nil {
		return Cell{}, Cell{}, err
	}
	if len(parts) == 1 {
		return start, start, nil
	}
	end, err := ParseCell(parts[1])
	if err != nil {
		return Cell{}, Cell{}, err
	}
	if end.Col < start.Col {
		return Cell{}, Cell{}, fmt.Errorf("range %q runs backwards", rng)
	}
	return start, end, nil
}
