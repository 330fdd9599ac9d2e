package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mindtrack/cbt-api/internal/api"
	"github.com/mindtrack/cbt-api/internal/api/handler"
	"github.com/mindtrack/cbt-api/internal/api/middleware"
	"github.com/mindtrack/cbt-api/internal/core/access"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
	"github.com/mindtrack/cbt-api/internal/core/service"
	"github.com/mindtrack/cbt-api/internal/infrastructure/cache"
	mongodb "github.com/mindtrack/cbt-api/internal/infrastructure/db/mongo"
	redisdb "github.com/mindtrack/cbt-api/internal/infrastructure/db/redis"
	"github.com/mindtrack/cbt-api/internal/infrastructure/queue"
	"github.com/mindtrack/cbt-api/internal/pkg/config"
	"github.com/mindtrack/cbt-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "cbt-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	users := mongodb.NewUserRepository(db)
	plans := mongodb.NewPlanRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	repos, purgers, err := recordRepositories(ctx, db)
	if err != nil {
		return err
	}

	readiness := []handler.DependencyCheck{{
		Name: "mongo",
		Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}}

	var sessions ports.SessionRepository
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = redisdb.NewSessionRepository(rdb)
		readiness = append(readiness, redisCheck(rdb))
	default:
		mongoSessions := mongodb.NewSessionRepository(db)
		if err := mongoSessions.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("session indexes: %w", err)
		}
		sessions = mongoSessions
	}

	// --- Background workers ---
	var sessionCache service.SessionCache
	if cfg.Session.CacheTTL > 0 {
		c := cache.NewSessionCache(cfg.Session.CacheTTL, logger.Component("session-cache"))
		c.Start(ctx, cfg.Session.CacheSweep)
		defer c.Stop()
		sessionCache = c
	}

	// Audit workers are not tied to the signal: requests still in flight
	// during shutdown record events that must be written.
	audit := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, logger.Component("audit"))
	audit.Start(context.Background())
	defer audit.Stop()

	// --- Services ---
	invites := service.NewInviteTokens(cfg.InviteSecret, service.DefaultInviteTTL)
	authSvc := service.NewAuthService(users, sessions, sessionCache, invites, audit, service.AuthOptions{
		SessionTTL:  cfg.Session.TTL,
		RememberTTL: cfg.Session.RememberTTL,
	}, logger.Component("auth"))
	userSvc := service.NewUserService(users, sessions, plans, purgers, sessionCache, audit, logger.Component("users"))
	records := service.NewRecords(repos, logger.Component("records"))

	cookies, err := middleware.NewCookiePolicy(middleware.CookieConfig{
		Secure:      cfg.Cookie.Secure,
		SameSite:    cfg.Cookie.SameSite,
		Domain:      cfg.Cookie.Domain,
		TTL:         cfg.Session.TTL,
		RememberTTL: cfg.Session.RememberTTL,
	})
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Logger:      log,
		Auth:        authSvc,
		Users:       userSvc,
		Invitations: service.NewInvitationService(users, invites, logger.Component("invitations")),
		Records:     records,
		Progress:    service.NewProgressService(records, logger.Component("progress")),
		Plans:       service.NewPlanService(plans, logger.Component("plans")),
		Access:      access.NewResolver(users, logger.Component("access")),
		Cookies:     cookies,
		Audit:       audit,
		Readiness:   readiness,
	})

	// --- Serve ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("session_store", cfg.Session.Store).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return shutdown(shutdownCtx, e, audit)
}

type server interface {
	Shutdown(ctx context.Context) error
}

type worker interface {
	Stop()
}

// shutdown drains the HTTP server first and only then stops the workers, so
// whatever the last requests queued is still processed.
func shutdown(ctx context.Context, srv server, workers ...worker) error {
	err := srv.Shutdown(ctx)
	for _, w := range workers {
		w.Stop()
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// recordRepositories builds one repository per record kind and indexes the
// reference fields that delete cascades filter on.
func recordRepositories(ctx context.Context, db *mongo.Database) (service.RecordRepositories, []ports.RecordPurger, error) {
	emotions := mongodb.NewRecordRepository[domain.EmotionRecord](db)
	thoughts := mongodb.NewRecordRepository[domain.ThoughtRecord](db)
	goals := mongodb.NewRecordRepository[domain.Goal](db)
	actions := mongodb.NewRecordRepository[domain.Action](db)
	journals := mongodb.NewRecordRepository[domain.JournalEntry](db)
	factors := mongodb.NewRecordRepository[domain.ProtectiveFactor](db)
	strategies := mongodb.NewRecordRepository[domain.CopingStrategy](db)
	resources := mongodb.NewRecordRepository[domain.Resource](db)
	usages := mongodb.NewRecordRepository[domain.StrategyUsage](db)

	indexes := []func(context.Context) error{
		func(ctx context.Context) error { return emotions.EnsureIndexes(ctx) },
		func(ctx context.Context) error { return thoughts.EnsureIndexes(ctx, ports.RefEmotionRecord) },
		func(ctx context.Context) error { return goals.EnsureIndexes(ctx) },
		func(ctx context.Context) error { return actions.EnsureIndexes(ctx, ports.RefGoal) },
		func(ctx context.Context) error { return journals.EnsureIndexes(ctx) },
		func(ctx context.Context) error { return factors.EnsureIndexes(ctx) },
		func(ctx context.Context) error { return strategies.EnsureIndexes(ctx) },
		func(ctx context.Context) error { return resources.EnsureIndexes(ctx) },
		func(ctx context.Context) error { return usages.EnsureIndexes(ctx, ports.RefThoughtRecord, ports.RefStrategy) },
	}
	for _, ensure := range indexes {
		if err := ensure(ctx); err != nil {
			return service.RecordRepositories{}, nil, fmt.Errorf("record indexes: %w", err)
		}
	}

	repos := service.RecordRepositories{
		Emotions:          emotions,
		Thoughts:          thoughts,
		Goals:             goals,
		Actions:           actions,
		Journals:          journals,
		ProtectiveFactors: factors,
		CopingStrategies:  strategies,
		Resources:         resources,
		StrategyUsages:    usages,
	}
	purgers := []ports.RecordPurger{
		emotions, thoughts, goals, actions, journals, factors, strategies, resources, usages,
	}
	return repos, purgers, nil
}

func redisCheck(rdb *goredis.Client) handler.DependencyCheck {
	return handler.DependencyCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
}
