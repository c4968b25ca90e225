// Package server assembles and runs the task board server. Store clients
// are opened once by OpenHandles, passed explicitly into every component by
// NewApp and closed by App.Close after the gRPC server has stopped.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/cache"
	"github.com/dmitrijs2005/taskboard/internal/server/config"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"github.com/dmitrijs2005/taskboard/internal/server/sessions"
	"github.com/dmitrijs2005/taskboard/internal/server/telemetry"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/taskboard/internal/server/grpc"
)

const serviceName = "taskboard"

// Handles are the process-wide store clients. Redis is nil when no Redis
// URL is configured.
type Handles struct {
	DB    *sql.DB
	Redis *redis.Client
	Repos repomanager.RepositoryManager
}

// OpenHandles connects to PostgreSQL and, if configured, Redis. Both are
// pinged so a misconfiguration fails at startup.
func OpenHandles(ctx context.Context, cfg *config.Config) (*Handles, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	h := &Handles{DB: db, Repos: repomanager.NewPostgresRepositoryManager()}
	if cfg.RedisURL == "" {
		return h, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis url: %w", err)
	}
	h.Redis = redis.NewClient(opts)
	if err := h.Redis.Ping(ctx).Err(); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return h, nil
}

// Close releases every open client.
func (h *Handles) Close() error {
	var errs []error
	if h.Redis != nil {
		errs = append(errs, h.Redis.Close())
	}
	if h.DB != nil {
		errs = append(errs, h.DB.Close())
	}
	return errors.Join(errs...)
}

// Services builds the business layer on top of h.
func (h *Handles) Services(cfg *config.Config, logger logging.Logger) gs.Services {
	var (
		revoked  revocations.Repository
		profiles cache.Profiles = cache.Noop{}
	)
	if h.Redis != nil {
		revoked = revocations.NewRedisRepository(h.Redis)
		profiles = cache.NewRedisProfiles(h.Redis, cfg.ProfileCacheTTL)
	} else {
		revoked = h.Repos.Revocations(h.DB)
	}

	store := sessions.NewStore([]byte(cfg.SecretKey), cfg.SessionValidityDuration, revoked)
	return gs.Services{
		Sessions:    store,
		Users:       services.NewUserService(h.DB, h.Repos, store, profiles, logger),
		Boards:      services.NewBoardService(h.DB, h.Repos, logger),
		Lists:       services.NewListService(h.DB, h.Repos, logger),
		Cards:       services.NewCardService(h.DB, h.Repos, logger),
		Invitations: services.NewInvitationService(h.DB, h.Repos, cfg.InvitationRetention, logger),
	}
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	handles  *Handles
	server   *gs.GRPCServer
	shutdown telemetry.ShutdownFunc
}

// NewApp migrates the schema and wires the gRPC server to services built on
// h. The App takes ownership of h.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger, h *Handles) (*App, error) {
	if err := h.Repos.RunMigrations(ctx, h.DB); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	return &App{
		config:   cfg,
		logger:   logger,
		handles:  h,
		server:   gs.NewGRPCServer(cfg.EndpointAddrGRPC, logger, h.Services(cfg, logger)),
		shutdown: shutdown,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the store clients.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
	}

	if cerr := app.Close(context.Background()); cerr != nil {
		app.logger.Error(ctx, "shutdown failed", "error", cerr)
		err = errors.Join(err, cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// Close flushes traces and closes the store clients.
func (app *App) Close(ctx context.Context) error {
	return errors.Join(app.shutdown(ctx), app.handles.Close())
}
