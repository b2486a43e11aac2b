// Package store hides range addressing of the row-oriented record store.
//
// Every call is a synchronous round trip. Nothing is cached: the ledger's
// dedupe check depends on reads reflecting the store at call time.
package store

import (
	"context"
	"errors"
)

var (
	// ErrStoreUnavailable is returned when the store could not serve the call.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrStoreRateLimited is returned when the store rejected the call for quota.
	ErrStoreRateLimited = errors.New("record store rate limited")
	// ErrInvalidCell is returned for an address that does not name one cell.
	ErrInvalidCell = errors.New("invalid cell address")
)

// Store is the contract the ledger needs from the tabular backend.
// A failed call must be treated as "nothing happened".
type Store interface {
	ReadColumn(ctx context.Context, rng string) ([]string, error)
	ReadRows(ctx context.Context, rng string) ([][]string, error)
	AppendRow(ctx context.Context, rng string, row []string) error
	UpdateCell(ctx context.Context, cell string, value string) error
}
