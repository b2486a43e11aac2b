package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// fakeSheetsAPI serves the subset of the values API the adapter uses, backed
// by a Memory grid.
type fakeSheetsAPI struct {
	grid   *Memory
	status int
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"injected"}}`, f.status)
		return
	}
	const prefix = "/v4/spreadsheets/sheet-1/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)
	ctx := r.Context()

	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("majorDimension") == "COLUMNS":
		col, err := f.grid.ReadColumn(ctx, rng)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		values := [][]string{}
		if len(col) > 0 {
			values = append(values, col)
		}
		writeJSON(w, map[string]any{"range": rng, "majorDimension": "COLUMNS", "values": values})
	case r.Method == http.MethodGet:
		rows, err := f.grid.ReadRows(ctx, rng)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"range": rng, "majorDimension": "ROWS", "values": rows})
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		var body struct {
			Values [][]string `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Values) != 1 {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
			http.Error(w, "missing valueInputOption", http.StatusBadRequest)
			return
		}
		if err := f.grid.AppendRow(ctx, strings.TrimSuffix(rng, ":append"), body.Values[0]); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1"})
	case r.Method == http.MethodPut:
		var body struct {
			Values [][]string `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Values) != 1 || len(body.Values[0]) != 1 {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if err := f.grid.UpdateCell(ctx, rng, body.Values[0][0]); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1", "updatedCells": 1})
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestSheets(t *testing.T, api *fakeSheetsAPI) *Sheets {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	s, err := NewSheets(context.Background(), "sheet-1", zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestSheetsRoundTrip(t *testing.T) {
	ctx := context.Background()
	api := &fakeSheetsAPI{grid: NewMemory(header)}
	s := newTestSheets(t, api)

	require.NoError(t, s.AppendRow(ctx, "A:F", []string{"10/01/2026 09:00:00", "42", "'0670", "", "http://t/0670"}))

	col, err := s.ReadColumn(ctx, "C2:C10000")
	require.NoError(t, err)
	require.Equal(t, []string{"0670"}, col)

	require.NoError(t, s.UpdateCell(ctx, "D2", "accepted"))

	rows, err := s.ReadRows(ctx, "A2:F10000")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"10/01/2026 09:00:00", "42", "0670", "accepted", "http://t/0670"}}, rows)
}

func TestSheetsEmptyColumn(t *testing.T) {
	api := &fakeSheetsAPI{grid: NewMemory(header)}
	s := newTestSheets(t, api)

	col, err := s.ReadColumn(context.Background(), "C2:C10000")
	require.NoError(t, err)
	require.Empty(t, col)
}

func TestSheetsErrorClassification(t *testing.T) {
	ctx := context.Background()
	api := &fakeSheetsAPI{grid: NewMemory(header), status: http.StatusTooManyRequests}
	s := newTestSheets(t, api)

	_, err := s.ReadColumn(ctx, "C2:C10000")
	require.ErrorIs(t, err, ErrStoreRateLimited)

	api.status = http.StatusInternalServerError
	err = s.UpdateCell(ctx, "D2", "denied")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.NotErrorIs(t, err, ErrStoreRateLimited)
}
