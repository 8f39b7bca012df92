package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/pointme/resilience/internal/boundary"
	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/core/domain"
	"github.com/pointme/resilience/internal/infra/backend"
	redisclient "github.com/pointme/resilience/internal/infra/redis"
	"github.com/pointme/resilience/internal/infra/storage"
	"github.com/pointme/resilience/internal/infra/storage/memory"
	"github.com/pointme/resilience/internal/infra/storage/postgres"
	"github.com/pointme/resilience/internal/offline/cache"
	"github.com/pointme/resilience/internal/offline/netmon"
	"github.com/pointme/resilience/internal/offline/queue"
	"github.com/pointme/resilience/internal/realtime"
)

// Config holds the application configuration.
type Config struct {
	Port          int
	Redis         redisclient.Config
	Database      postgres.Config
	MaxAttempts   int
	ProbeInterval time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	Topics        []string
}

// App is the composition root: it owns the persistence substrate, the
// resilience components, and the ops surface, and wires them together.
type App struct {
	cfg     Config
	log     *slog.Logger
	backend backend.Backend

	db          *postgres.DB
	redisClient *redisclient.Client

	cache    *cache.Store
	queue    *queue.Queue
	monitor  *netmon.Monitor
	hub      *realtime.Hub
	boundary *boundary.Boundary
	server   *Server

	cancel context.CancelFunc
}

// NewApp creates an App with all dependencies initialized. The substrate is
// picked from config: postgres when database.url is set, redis when
// redis.url is set, in-process memory otherwise.
func NewApp(cfg Config, b backend.Backend, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	var cacheRepo storage.CacheRepository
	var queueRepo storage.QueueRepository
	var db *postgres.DB
	var redisClient *redisclient.Client

	switch {
	case cfg.Database.URL != "":
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		cacheRepo = postgres.NewCacheRepo(db)
		queueRepo = postgres.NewQueueRepo(db)
		log.Info("using postgres substrate")

	case cfg.Redis.URL != "":
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		cacheRepo = redisclient.NewCacheRepo(redisClient)
		queueRepo = redisclient.NewQueueRepo(redisClient)
		log.Info("using redis substrate")

	default:
		store := memory.NewMemoryStorage()
		cacheRepo = memory.NewCacheRepo(store)
		queueRepo = memory.NewQueueRepo(store)
		log.Info("using in-memory substrate")
	}

	app := &App{
		cfg:         cfg,
		log:         log,
		backend:     b,
		db:          db,
		redisClient: redisClient,
		cache:       cache.NewStore(cacheRepo, log),
		queue:       queue.New(queueRepo, log, cfg.MaxAttempts),
		hub:         realtime.NewHub(b, log),
		boundary:    boundary.New(cfg.MaxRetries, cfg.RetryDelay, log),
	}
	app.monitor = netmon.New(app.drainOnReconnect, app.notifyTransition, log)
	app.server = NewServer(app, cfg.Port)
	return app, nil
}

// Start subscribes the configured collections, starts the connectivity
// monitor, and brings up the ops HTTP server.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	for _, topic := range a.cfg.Topics {
		if _, err := a.hub.Subscribe(runCtx, topic); err != nil {
			cancel()
			return fmt.Errorf("failed to subscribe %s: %w", topic, err)
		}
	}

	go a.monitor.Run(runCtx, a.probe, a.cfg.ProbeInterval)

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("ops server stopped", "error", err)
		}
	}()

	a.log.Info("resilience agent started", "port", a.cfg.Port, "topics", a.cfg.Topics)
	return nil
}

// Stop shuts everything down gracefully.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.hub.Close()

	if err := a.server.Stop(ctx); err != nil {
		return err
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			return err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}
	a.log.Info("resilience agent stopped")
	return nil
}

func (a *App) drainOnReconnect(ctx context.Context) {
	result, err := a.queue.Drain(ctx, a.replay)
	if err != nil {
		a.log.Error("queue drain failed", "error", err)
		return
	}
	a.log.Info("queue drained",
		"replayed", result.Replayed, "requeued", result.Requeued,
		"dropped", result.Dropped, "halted", result.Halted)
}

func (a *App) notifyTransition(status netmon.Status) {
	// User-visible notification hook; the agent logs, an embedding UI can
	// watch Monitor().Status().
	if status == netmon.StatusOnline {
		a.log.Info("you're back online")
	} else {
		a.log.Warn("you're offline, some features may be limited")
	}
}

// replay re-enters the same mutation path a direct interactive write uses,
// so replays are classified by the same taxonomy.
func (a *App) replay(ctx context.Context, action *domain.QueuedAction) error {
	return a.backend.Write(ctx, backend.Mutation{Kind: action.Kind, Payload: action.Payload})
}

func (a *App) probe(ctx context.Context) error {
	topic := realtime.TopicServices
	if len(a.cfg.Topics) > 0 {
		topic = a.cfg.Topics[0]
	}
	_, err := a.backend.List(ctx, topic)
	if err != nil && apperr.CategoryOf(err) == apperr.CategoryNetwork {
		return err
	}
	// Non-network failures mean the backend answered; connectivity is fine.
	return nil
}

// DrainQueue triggers one manual drain pass.
func (a *App) DrainQueue(ctx context.Context) (*queue.DrainResult, error) {
	return a.queue.Drain(ctx, a.replay)
}

// Accessors for the CLI, tests, and embedding applications.

func (a *App) Cache() *cache.Store          { return a.cache }
func (a *App) Queue() *queue.Queue          { return a.queue }
func (a *App) Monitor() *netmon.Monitor     { return a.monitor }
func (a *App) Hub() *realtime.Hub           { return a.hub }
func (a *App) Boundary() *boundary.Boundary { return a.boundary }
