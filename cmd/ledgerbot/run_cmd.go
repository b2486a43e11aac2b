package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/ticketdesk/transcript-ledger/internal/api/http"
	"github.com/ticketdesk/transcript-ledger/internal/api/http/handlers"
	"github.com/ticketdesk/transcript-ledger/internal/auth"
	"github.com/ticketdesk/transcript-ledger/internal/discord"
	"github.com/ticketdesk/transcript-ledger/internal/events"
	"github.com/ticketdesk/transcript-ledger/internal/ledger"
	"github.com/ticketdesk/transcript-ledger/internal/persistence"
	"github.com/ticketdesk/transcript-ledger/internal/reporting"
	"github.com/ticketdesk/transcript-ledger/internal/repository"
	"github.com/ticketdesk/transcript-ledger/internal/service"
	"github.com/ticketdesk/transcript-ledger/internal/store"
	"github.com/ticketdesk/transcript-ledger/internal/transcript"
	"github.com/ticketdesk/transcript-ledger/internal/worker"
)

func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and keep the ledger up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Keep the ledger in memory instead of the spreadsheet")
	return cmd
}

func run(ctx context.Context, dryRun bool) error {
	rt, err := bootstrap(ctx, dryRun)
	if err != nil {
		return err
	}
	logger := rt.logger
	defer logger.Sync() //nolint:errcheck
	cfg := rt.cfg

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}

	if rt.refresher != nil {
		if err := rt.refresher.RefreshOnce(ctx); err != nil {
			logger.Warn("initial credential refresh failed", zap.Error(err))
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	var history repository.DecisionHistoryRepository
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				return err
			}
		}
		history = repository.NewDecisionHistoryRepository(pool)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var guard ledger.Guard
	if redis != nil {
		guard = persistence.NewLogGuard(redis.Client, cfg.Ledger.GuardTTL())
	}

	book := ledger.New(ledger.Dependencies{
		Store:  rt.store,
		Layout: rt.layout,
		Guard:  guard,
		Logger: logger.Named("ledger"),
	})

	dispatcher := events.NewInMemoryDispatcher()
	historyService := service.NewHistoryService(dispatcher, history, logger.Named("history"))
	worker.StartHistoryWorker(historyService)

	reports := service.NewReportService(reporting.NewService(book), cfg.Discord.StaffChannelID, logger.Named("reports"))

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	gateway := discord.NewGateway(discord.Dependencies{
		Session:             session,
		Reports:             reports,
		Prefix:              cfg.Discord.CommandPrefix,
		Logger:              logger.Named("discord"),
		TranscriptChannelID: cfg.Discord.TranscriptChannelID,
	})
	gateway.SetTickets(service.NewTicketService(service.TicketDependencies{
		Parser:     transcript.NewParser(loc),
		Ledger:     book,
		Chat:       gateway,
		Dispatcher: dispatcher,
		Metrics:    rt.metrics,
		Logger:     logger.Named("tickets"),
		Channels: service.Channels{
			TranscriptChannelID: cfg.Discord.TranscriptChannelID,
			TicketBotID:         cfg.Discord.TicketBotID,
		},
	}))
	gateway.Register(ctx, session)
	if err := session.Open(); err != nil {
		return err
	}
	defer session.Close()

	access := service.NewAccessService(cfg.Auth)
	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, rt.metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, probes(rt, pg, redis)),
		Reports:        handlers.NewReportsHandler(reports, historyService),
		Auth:           handlers.NewAuthHandler(access),
		AuthMiddleware: auth.NewAuthMiddleware(access.Tokens()),
		Metrics:        rt.metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	if rt.refresher != nil {
		g.Go(func() error {
			rt.refresher.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func probes(rt *env, pg *persistence.Postgres, redis *persistence.Redis) map[string]handlers.Probe {
	header := store.CellAddress(rt.layout.TicketColumn, 1)
	out := map[string]handlers.Probe{
		"sheets": func(ctx context.Context) error {
			_, err := rt.store.ReadColumn(ctx, header)
			return err
		},
	}
	if pg.PoolHandle() != nil {
		out["postgres"] = pg.Ping
	}
	if redis != nil {
		out["redis"] = redis.Ping
	}
	return out
}
