package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ticketdesk/transcript-ledger/internal/config"
	"github.com/ticketdesk/transcript-ledger/internal/credentials"
	"github.com/ticketdesk/transcript-ledger/internal/export"
	"github.com/ticketdesk/transcript-ledger/internal/ledger"
	"github.com/ticketdesk/transcript-ledger/internal/observability"
	"github.com/ticketdesk/transcript-ledger/internal/store"
)

type env struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	layout    ledger.Layout
	store     store.Store
	refresher *credentials.Refresher
}

func bootstrap(ctx context.Context, dryRun bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	layout, err := ledger.NewLayout(cfg.Sheet.AppendRange, cfg.Sheet.TicketColumn, cfg.Sheet.ApprovalColumn,
		cfg.Sheet.ReferralColumn, cfg.Sheet.FirstRow, cfg.Sheet.LastRow)
	if err != nil {
		return nil, fmt.Errorf("sheet layout: %w", err)
	}

	rt := &env{cfg: cfg, logger: logger, metrics: observability.NewMetrics(), layout: layout}
	if dryRun || cfg.Ledger.DryRun {
		logger.Warn("dry run: ledger kept in memory, spreadsheet untouched")
		rt.store = store.NewMemory(export.Header)
		return rt, nil
	}

	oauthCfg, tok, err := credentials.Load(cfg.Google.CredentialsFile, cfg.Google.TokenFile)
	if err != nil {
		return nil, err
	}
	rt.refresher = credentials.NewRefresher(credentials.Dependencies{
		Config:    oauthCfg,
		Token:     tok,
		TokenFile: cfg.Google.TokenFile,
		Interval:  cfg.Credentials.RefreshInterval,
		Metrics:   rt.metrics,
		Logger:    logger.Named("credentials"),
	})
	sheets, err := store.NewSheets(ctx, cfg.Sheet.SpreadsheetID, logger.Named("sheets"),
		option.WithTokenSource(rt.refresher.TokenSource(context.WithoutCancel(ctx))))
	if err != nil {
		return nil, err
	}
	rt.refresher.SetRebinder(sheets)
	rt.store = sheets
	return rt, nil
}
