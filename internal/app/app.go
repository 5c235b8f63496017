package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/internal/eval"
	"github.com/offbeatoasis/oasis/internal/handlers"
	"github.com/offbeatoasis/oasis/internal/messaging"
	"github.com/offbeatoasis/oasis/internal/middleware"
	"github.com/offbeatoasis/oasis/internal/recommender"
	"github.com/offbeatoasis/oasis/internal/services"
	"github.com/offbeatoasis/oasis/internal/store"
	"github.com/offbeatoasis/oasis/internal/validation"
	"github.com/offbeatoasis/oasis/pkg/models"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	pool     *pgxpool.Pool
	redis    *redis.Client
	bus      *messaging.MessageBus
	dataSrc  store.DataStore
	snapshot *store.Snapshot
	handlers *handlers.Handlers
	router   *gin.Engine

	cancelConsumer context.CancelFunc
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	src, err := app.setupDataStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data store: %w", err)
	}
	app.dataSrc = src

	app.snapshot = store.NewSnapshot(&store.Dataset{})
	if err := app.snapshot.Refresh(context.Background(), src); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	data := app.snapshot.Dataset()
	app.logger.WithFields(logrus.Fields{
		"locations": len(data.Locations),
		"users":     len(data.Users),
		"reviews":   len(data.Reviews),
		"trips":     len(data.Trips),
	}).Info("Dataset loaded")

	app.setupRedis()
	if err := app.setupMessageBus(); err != nil {
		return nil, fmt.Errorf("failed to initialize message bus: %w", err)
	}

	engine := recommender.New(&cfg.Recommendation, app.logger)
	evaluator := eval.New(engine, &cfg.Evaluation, app.logger)
	authService := services.NewAuthService(cfg, app.logger, app.redis)
	healthService := services.NewHealthService(cfg, app.logger, app.pool, app.redis)

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize schema validator: %w", err)
	}

	app.handlers, err = handlers.New(cfg, app.logger, app.snapshot, engine, evaluator, app.bus, authService, healthService, validator)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	if app.bus != nil {
		app.startReviewConsumer()
	}
	app.setupRouter(authService)

	return app, nil
}

// setupDataStore picks the dataset backend: a Postgres pool when
// configured, CSV files otherwise.
func (a *App) setupDataStore() (store.DataStore, error) {
	if a.config.Data.Source == "postgres" {
		pool, err := store.Connect(a.config, a.logger)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		return store.NewPostgresStore(pool, a.logger), nil
	}
	return store.NewCSVStore(a.config.Data.Dir, a.logger), nil
}

func (a *App) setupRedis() {
	if a.config.Redis.URL == "" {
		a.logger.Warn("Redis URL not configured, caching and sessions disabled")
		return
	}
	opts, err := redis.ParseURL(a.config.Redis.URL)
	if err != nil {
		a.logger.WithError(err).Warn("Invalid Redis URL, caching and sessions disabled")
		return
	}
	opts.MaxRetries = a.config.Redis.MaxRetries
	opts.PoolSize = a.config.Redis.PoolSize
	a.redis = redis.NewClient(opts)
}

func (a *App) setupMessageBus() error {
	if len(a.config.Kafka.Brokers) == 0 {
		a.logger.Warn("Kafka brokers not configured, review ingestion disabled")
		return nil
	}
	bus, err := messaging.NewMessageBus(a.config, a.logger)
	if err != nil {
		return err
	}
	a.bus = bus
	return nil
}

// startReviewConsumer applies ingested reviews to the in-memory
// snapshot. Later requests see the new review; a restart reloads
// whatever the backing store holds.
func (a *App) startReviewConsumer() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelConsumer = cancel

	go func() {
		err := a.bus.ConsumeReviews(ctx, func(msg messaging.ReviewMessage) error {
			a.snapshot.AddReview(models.Review{
				UserID:     msg.Review.UserID,
				LocationID: msg.Review.LocationID,
				Rating:     msg.Review.Rating,
			})
			return nil
		})
		if err != nil && ctx.Err() == nil {
			a.logger.WithError(err).Error("Review consumer stopped")
		}
	}()
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// RefreshData reloads the dataset from the configured backend and swaps
// it into the snapshot. In-flight requests keep the view they started
// with; reviews appended since the last load are replaced by whatever
// the backend now holds.
func (a *App) RefreshData(ctx context.Context) error {
	if err := a.snapshot.Refresh(ctx, a.dataSrc); err != nil {
		return fmt.Errorf("failed to reload dataset: %w", err)
	}
	data := a.snapshot.Dataset()
	a.logger.WithFields(logrus.Fields{
		"locations": len(data.Locations),
		"users":     len(data.Users),
		"reviews":   len(data.Reviews),
		"trips":     len(data.Trips),
	}).Info("Dataset reloaded")
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.cancelConsumer != nil {
		a.cancelConsumer()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing message bus")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing Redis client")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter(authService *services.AuthService) {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/api/v1/auth/token", a.handlers.Auth.Token)

	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(authService, a.logger))

		cache := middleware.Cache(a.redis, &middleware.CacheConfig{
			TTL:       a.config.Redis.CacheTTL,
			KeyPrefix: "recommendations",
		}, a.logger)
		api.GET("/recommendations/:userId", cache, a.handlers.Recommendation.Get)

		api.POST("/reviews", a.handlers.Review.Submit)

		admin := api.Group("/admin")
		{
			admin.POST("/evaluation", a.handlers.Evaluation.Run)
		}
	}

	a.router = router
}
