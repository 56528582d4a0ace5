package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/boardkit/ticket-board/internal/api/http"
	"github.com/boardkit/ticket-board/internal/api/http/handlers"
	"github.com/boardkit/ticket-board/internal/auth"
	"github.com/boardkit/ticket-board/internal/config"
	"github.com/boardkit/ticket-board/internal/events"
	"github.com/boardkit/ticket-board/internal/observability"
	"github.com/boardkit/ticket-board/internal/persistence"
	"github.com/boardkit/ticket-board/internal/repository"
	"github.com/boardkit/ticket-board/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.PoolHandle() != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var ticketRepo repository.TicketRepository
	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		ticketRepo = repository.NewCachedRepository(ticketRepo, redis.Client, cfg.Redis.ListTTL(), logger)
	} else {
		ticketRepo = repository.NewMemoryRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	registerActivityLog(dispatcher, logger)

	ticketService := service.NewTicketService(service.Dependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authEnabled := cfg.Auth.AdminPasswordHash != ""
	if !authEnabled {
		logger.Warn("AUTH_ADMIN_PASSWORD_HASH not set; mutation endpoints are open")
	}

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSOrigins)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(redis, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Auth:           handlers.NewAuthHandler(tokenManager, cfg.Auth.AdminPasswordHash),
		AuthMiddleware: auth.NewMiddleware(tokenManager, authEnabled),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// registerActivityLog mirrors every ticket event into the structured log
// so board activity is traceable without a separate audit store.
func registerActivityLog(dispatcher events.Dispatcher, logger *zap.Logger) {
	handler := func(ctx context.Context, event events.Event) error {
		logger.Info("ticket activity",
			zap.String("event", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, handler)
	dispatcher.Subscribe(events.EventTicketUpdated, handler)
	dispatcher.Subscribe(events.EventTicketStatusChanged, handler)
	dispatcher.Subscribe(events.EventTicketDeleted, handler)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
