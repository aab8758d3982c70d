package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-intake/internal/api/http"
	"github.com/spec-kit/support-intake/internal/api/http/handlers"
	"github.com/spec-kit/support-intake/internal/classifier"
	"github.com/spec-kit/support-intake/internal/config"
	"github.com/spec-kit/support-intake/internal/events"
	"github.com/spec-kit/support-intake/internal/observability"
	"github.com/spec-kit/support-intake/internal/persistence"
	"github.com/spec-kit/support-intake/internal/repository"
	"github.com/spec-kit/support-intake/internal/service"
	"github.com/spec-kit/support-intake/internal/worker"
)

// ticketStore is the selected backend plus what the health probe needs.
type ticketStore struct {
	repo  repository.TicketRepository
	ping  handlers.Pinger
	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	var redisPinger handlers.Pinger
	var publisher service.Publisher
	if redis := persistence.NewRedis(cfg.Redis, logger); redis != nil {
		defer redis.Close()
		relay := worker.NewPublishWorker(redis, logger, 0)
		defer relay.Stop()
		redisPinger = redis
		publisher = relay
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, publisher, cfg.Events.Channel, logger))

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.repo,
		Classifier: newClassifier(ctx, cfg.Classifier, logger, metrics),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := httptransport.NewApp(httptransport.AppOptions{
		Name:           cfg.App.Name,
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		Routes: httptransport.RouteConfig{
			Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store.ping, redisPinger),
			Metrics: handlers.NewMetricsHandler(metrics),
			Tickets: handlers.NewTicketsHandler(ticketService),
		},
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ticketStore, error) {
	if cfg.Store.Driver == config.StoreDriverSQLite {
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return &ticketStore{repo: repository.NewSQLiteTicketRepository(db.DB), ping: db, close: db.Close}, nil
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	return &ticketStore{repo: repository.NewTicketRepository(pg.PoolHandle()), ping: pg, close: pg.Close}, nil
}

// newClassifier falls back to a generator-less classifier when no API key
// is configured or the client cannot be created.
func newClassifier(ctx context.Context, cfg config.ClassifierConfig, logger *zap.Logger, metrics *observability.Metrics) *classifier.Classifier {
	opts := []classifier.Option{classifier.WithMetrics(metrics), classifier.WithTimeout(cfg.Timeout())}
	if cfg.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; every ticket will receive fallback classification")
		return classifier.New(nil, logger, opts...)
	}
	gemini, err := classifier.NewGemini(ctx, cfg)
	if err != nil {
		logger.Error("gemini client unavailable; using fallback classification", zap.Error(err))
		return classifier.New(nil, logger, opts...)
	}
	return classifier.New(gemini, logger, opts...)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
