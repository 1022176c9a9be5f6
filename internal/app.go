package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"palmr-api/config"
	"palmr-api/internal/application/ports"
	"palmr-api/internal/application/services"
	"palmr-api/internal/domain/file_token"
	"palmr-api/internal/infrastructure/avatar"
	"palmr-api/internal/infrastructure/db/postgres"
	"palmr-api/internal/infrastructure/db/postgres/invite"
	"palmr-api/internal/infrastructure/db/postgres/user"
	"palmr-api/internal/infrastructure/db/postgres/user_file"
	"palmr-api/internal/infrastructure/filesystem"
	"palmr-api/internal/infrastructure/jwt"
	"palmr-api/internal/infrastructure/metrics"
	"palmr-api/internal/infrastructure/mq"
	"palmr-api/internal/infrastructure/s3"
	"palmr-api/internal/infrastructure/tokenstore"
	"palmr-api/internal/interface/api/rest"
	"palmr-api/internal/interface/api/rest/middleware"
	"palmr-api/pkg/rmqconsumer"
)

const tokenSweepInterval = time.Minute

type App struct {
	logger       *zap.Logger
	cfg          config.Config
	db           *pgxpool.Pool
	redis        *redis.Client
	storage      ports.Storage
	objectFiles  ports.ObjectFiles
	tokenService ports.FileTokenService
	memTokens    *tokenstore.Memory
	httpSrv      *http.Server
	router       *gin.Engine
	mCounter     *prometheus.CounterVec
	events       ports.EventPublisher
	mq           *mq.RabbitMQ
	mqConsumer   ports.AuditConsumer
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}

	// config; a missing .env is fine when the environment is set directly
	if err = godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("error loading .env file", zap.Error(err))
	}
	cfg := config.Load()
	if cfg.App.JWTSecret == "" {
		return nil, errors.New("SERVICE_JWT_SECRET is required")
	}

	// metrics
	mCounter := metrics.NewCounter(prometheus.DefaultRegisterer)
	mDuration := metrics.NewRequestDuration(prometheus.DefaultRegisterer)

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.App.CORSOrigins))
	r.Use(middleware.RequestLogGin(logger, mCounter, mDuration))

	// httpServer; no write timeout, downloads and uploads stream
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err = postgres.Migrate(ctx, logger, dbPool); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	app := &App{
		logger:   logger,
		cfg:      cfg,
		db:       dbPool,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
		events:   mq.Discard{},
	}

	// token store
	var store file_token.Store
	switch cfg.TokenStore.Backend {
	case config.TokenStoreRedis:
		app.redis, err = tokenstore.Connect(ctx, cfg.TokenStore.RedisAddr, cfg.TokenStore.RedisPassword, cfg.TokenStore.RedisDB)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		store = tokenstore.NewRedis(app.redis)
	default:
		app.memTokens = tokenstore.NewMemory()
		store = app.memTokens
	}
	logger.Info("file token store configured", zap.String("backend", cfg.TokenStore.Backend))
	app.tokenService = services.NewFileTokenService(store, mCounter)

	// storage
	if cfg.S3Enabled() {
		s3Client, err := s3.New(ctx, logger, cfg.S3)
		if err != nil {
			logger.Fatal("failed to configure S3", zap.Error(err))
		}
		app.storage = s3Client
	} else {
		fsStorage, err := filesystem.New(logger, cfg.Storage.FilesystemRoot, cfg.App.PublicBaseURL, app.tokenService)
		if err != nil {
			logger.Fatal("failed to configure filesystem storage", zap.Error(err))
		}
		app.storage = fsStorage
		app.objectFiles = fsStorage
	}

	// rabbitMQ is optional; events are dropped without it
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		logger.Warn("RabbitMQ not configured, domain events are disabled", zap.Error(err))
		return app, nil
	}
	rbMQ := mq.New(cfg.MQ, logger)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = rbMQ.Init(); err != nil {
		logger.Fatal("failed init rabbitMQ", zap.Error(err))
	}
	// rmqConsumer
	rmqConsumer := rmqconsumer.New(cfg.MQ, logger, rbMQ.GetConn())
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}
	app.mq = rbMQ
	app.events = rbMQ
	app.mqConsumer = rmqConsumer

	return app, nil
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mq != nil && a.mq.GetConn() != nil {
		a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	if a.memTokens != nil {
		g.Go(func() error {
			return a.memTokens.RunSweeper(ctx, a.logger, tokenSweepInterval)
		})
	}

	if a.mq != nil {
		g.Go(func() error {
			a.mq.PublisherWorker(ctx)
			return nil
		})
	}

	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

// InitControllers wires repositories, services and routes, then creates the
// bootstrap administrator on an empty database.
func (a *App) InitControllers(ctx context.Context) error {
	// repos
	userRepo := user.NewRepository(a.db)
	userFileRepo := user_file.NewRepository(a.db)
	inviteRepo := invite.NewRepository(a.db)

	// services
	jwtService := jwt.New(a.cfg.App.JWTSecret)
	authService := services.NewAuthService(jwtService, userRepo)
	userService := services.NewUserService(a.logger, userRepo, avatar.New(), a.events, a.mCounter)
	fileService := services.NewFileService(a.logger, a.storage, userFileRepo, userRepo, a.events, a.mCounter, a.cfg.App.MaxFileSize)
	inviteService := services.NewInviteService(inviteRepo, a.events, a.mCounter)

	// controllers
	rest.NewAuthController(a.router, a.logger, authService)
	rest.NewUserController(a.router, userService, a.logger, jwtService)
	rest.NewFileController(a.router, fileService, a.logger, jwtService)
	rest.NewInviteController(a.router, inviteService, a.logger, jwtService)
	if a.objectFiles != nil {
		rest.NewFilesystemController(a.router, a.tokenService, a.objectFiles, a.cfg.App.MaxFileSize, a.logger)
	}

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) {
		if err := a.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))

	created, err := userService.EnsureAdmin(ctx, a.cfg.App.AdminEmail, a.cfg.App.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		a.logger.Info("bootstrap admin created", zap.String("email", a.cfg.App.AdminEmail))
	}

	return nil
}

func (a *App) Logger() *zap.Logger { return a.logger }
