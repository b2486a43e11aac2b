package store

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store over a 2-D grid. It mimics the spreadsheet's
// USER_ENTERED handling (a leading ' is consumed as the text marker) and trims
// trailing empty cells and rows on read, like the Sheets values API.
type Memory struct {
	mu      sync.Mutex
	grid    [][]string
	failErr error
	calls   map[string]int
}

// NewMemory returns a store whose first rows are seeded with rows.
func NewMemory(rows ...[]string) *Memory {
	m := &Memory{calls: make(map[string]int)}
	for _, row := range rows {
		m.grid = append(m.grid, enter(row))
	}
	return m
}

// Fail makes the next call return err without touching the grid.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Calls returns how many times op ("read_column", "read_rows", "append", "update") ran.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Snapshot copies the raw grid.
func (m *Memory) Snapshot() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.grid))
	for i, row := range m.grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (m *Memory) ReadColumn(_ context.Context, rng string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("read_column"); err != nil {
		return nil, err
	}
	start, end, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}
	first, last := m.bounds(start, end)
	var out []string
	for r := first; r <= last; r++ {
		out = append(out, m.cell(r, start.Col))
	}
	return trimTrailing(out), nil
}

func (m *Memory) ReadRows(_ context.Context, rng string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("read_rows"); err != nil {
		return nil, err
	}
	start, end, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}
	first, last := m.bounds(start, end)
	var out [][]string
	for r := first; r <= last; r++ {
		row := make([]string, 0, end.Col-start.Col+1)
		for c := start.Col; c <= end.Col; c++ {
			row = append(row, m.cell(r, c))
		}
		out = append(out, trimTrailing(row))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

// AppendRow writes row after the last non-empty grid row, starting at the
// range's first column.
func (m *Memory) AppendRow(_ context.Context, rng string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("append"); err != nil {
		return err
	}
	start, _, err := ParseRange(rng)
	if err != nil {
		return err
	}
	target := m.lastUsedRow() + 1
	for c, v := range enter(row) {
		m.set(target, start.Col+c, v)
	}
	return nil
}

func (m *Memory) UpdateCell(_ context.Context, cell string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("update"); err != nil {
		return err
	}
	ref, err := ParseCell(cell)
	if err != nil {
		return err
	}
	if ref.Row == 0 {
		return ErrInvalidCell
	}
	m.set(ref.Row, ref.Col, enterValue(value))
	return nil
}

func (m *Memory) begin(op string) error {
	m.calls[op]++
	if m.failErr != nil {
		err := m.failErr
		m.failErr = nil
		return err
	}
	return nil
}

func (m *Memory) bounds(start, end Cell) (int, int) {
	first, last := start.Row, end.Row
	if first == 0 {
		first = 1
	}
	if last == 0 || last > len(m.grid) {
		last = len(m.grid)
	}
	return first, last
}

func (m *Memory) cell(row, col int) string {
	if row < 1 || row > len(m.grid) {
		return ""
	}
	r := m.grid[row-1]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

func (m *Memory) set(row, col int, v string) {
	for len(m.grid) < row {
		m.grid = append(m.grid, nil)
	}
	r := m.grid[row-1]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = v
	m.grid[row-1] = r
}

func (m *Memory) lastUsedRow() int {
	for i := len(m.grid) - 1; i >= 0; i-- {
		if len(trimTrailing(m.grid[i])) > 0 {
			return i + 1
		}
	}
	return 0
}

func enter(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = enterValue(v)
	}
	return out
}

func enterValue(v string) string {
	return strings.TrimPrefix(v, "'")
}

func trimTrailing(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
