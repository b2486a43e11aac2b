// Package credentials keeps the record store's OAuth token fresh.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ticketdesk/transcript-ledger/internal/observability"
)

// DefaultInterval refreshes just inside the one hour access token lifetime.
const DefaultInterval = 59*time.Minute + 59*time.Second

// Rebinder swaps the credential used by the record store.
type Rebinder interface {
	Rebind(ctx context.Context, ts oauth2.TokenSource) error
}

// Dependencies bundles collaborators for the refresher.
type Dependencies struct {
	Config    *oauth2.Config
	Token     *oauth2.Token
	TokenFile string
	Interval  time.Duration
	Rebinder  Rebinder
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// Refresher periodically forces a token refresh, persists the result and
// rebinds the store.
type Refresher struct {
	cfg       *oauth2.Config
	tokenFile string
	interval  time.Duration
	rebinder  Rebinder
	metrics   *observability.Metrics
	logger    *zap.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// NewRefresher constructs the refresher.
func NewRefresher(deps Dependencies) *Refresher {
	interval := deps.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		cfg:       deps.Config,
		tokenFile: deps.TokenFile,
		interval:  interval,
		rebinder:  deps.Rebinder,
		metrics:   deps.Metrics,
		logger:    logger,
		token:     deps.Token,
	}
}

// SetRebinder attaches the store once it exists.
func (r *Refresher) SetRebinder(rb Rebinder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebinder = rb
}

// TokenSource returns a source seeded with the current token. It refreshes
// on its own when the token expires between ticks.
func (r *Refresher) TokenSource(ctx context.Context) oauth2.TokenSource {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.TokenSource(ctx, r.token)
}

// Token returns a copy of the current token.
func (r *Refresher) Token() oauth2.Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.token
}

// RefreshOnce forces a refresh regardless of the current expiry.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	err := r.refresh(ctx)
	r.metrics.RecordRefresh(err == nil)
	return err
}

func (r *Refresher) refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == nil || r.token.RefreshToken == "" {
		return errors.New("no refresh token available")
	}
	stale := *r.token
	stale.Expiry = time.Now().Add(-time.Minute)

	fresh, err := r.cfg.TokenSource(ctx, &stale).Token()
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if !fresh.Valid() {
		return errors.New("refreshed token is not valid")
	}
	r.token = fresh

	if r.tokenFile != "" {
		if err := Save(r.tokenFile, r.cfg, fresh); err != nil {
			return err
		}
	}
	if r.rebinder != nil {
		ts := r.cfg.TokenSource(context.WithoutCancel(ctx), fresh)
		if err := r.rebinder.Rebind(ctx, ts); err != nil {
			return err
		}
	}
	r.logger.Info("refreshed google api credentials", zap.Time("expiry", fresh.Expiry))
	return nil
}

// Run refreshes every interval until ctx is done. Failures are logged and
// the loop carries on; the store keeps the previous credential meanwhile.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				r.logger.Error("credential refresh failed", zap.Error(err))
			}
		}
	}
}
