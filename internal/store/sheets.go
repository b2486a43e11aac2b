package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const valueInputOption = "USER_ENTERED"

// Sheets is a Store backed by one Google spreadsheet.
type Sheets struct {
	spreadsheetID string
	logger        *zap.Logger
	opts          []option.ClientOption

	mu      sync.RWMutex
	service *sheets.Service
}

// NewSheets builds the adapter. opts are kept and reapplied on every rebind,
// with the fresh token source last so it wins over the initial credential.
func NewSheets(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*Sheets, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Sheets{spreadsheetID: spreadsheetID, logger: logger, opts: opts, service: svc}, nil
}

// Rebind replaces the service handle with one authorised by ts. Calls already
// in flight keep the old handle and may fail with ErrStoreUnavailable.
func (s *Sheets) Rebind(ctx context.Context, ts oauth2.TokenSource) error {
	opts := append(append([]option.ClientOption(nil), s.opts...), option.WithTokenSource(ts))
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("rebind sheets service: %w", err)
	}
	s.mu.Lock()
	s.service = svc
	s.mu.Unlock()
	s.logger.Info("sheets service rebound")
	return nil
}

func (s *Sheets) values() *sheets.SpreadsheetsValuesService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service.Spreadsheets.Values
}

func (s *Sheets) ReadColumn(ctx context.Context, rng string) ([]string, error) {
	resp, err := s.values().Get(s.spreadsheetID, rng).MajorDimension("COLUMNS").Context(ctx).Do()
	if err != nil {
		return nil, s.classify("read column", rng, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return stringCells(resp.Values[0]), nil
}

func (s *Sheets) ReadRows(ctx context.Context, rng string) ([][]string, error) {
	resp, err := s.values().Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, s.classify("read rows", rng, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, stringCells(row))
	}
	return rows, nil
}

func (s *Sheets) AppendRow(ctx context.Context, rng string, row []string) error {
	body := &sheets.ValueRange{Values: [][]interface{}{interfaceCells(row)}}
	_, err := s.values().Append(s.spreadsheetID, rng, body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return s.classify("append row", rng, err)
	}
	return nil
}

func (s *Sheets) UpdateCell(ctx context.Context, cell string, value string) error {
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.values().Update(s.spreadsheetID, cell, body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return s.classify("update cell", cell, err)
	}
	return nil
}

func (s *Sheets) classify(op, rng string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		s.logger.Warn("sheets rate limited", zap.String("op", op), zap.String("range", rng))
		return fmt.Errorf("%s %s: %w: %v", op, rng, ErrStoreRateLimited, err)
	}
	s.logger.Warn("sheets call failed", zap.String("op", op), zap.String("range", rng), zap.Error(err))
	return fmt.Errorf("%s %s: %w: %v", op, rng, ErrStoreUnavailable, err)
}

func stringCells(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		out[i] = fmt.Sprint(c)
	}
	return out
}

func interfaceCells(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
