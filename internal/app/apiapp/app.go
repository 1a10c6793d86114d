package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Henjin888/hejin-music-platform/internal/config"
	s3infra "github.com/Henjin888/hejin-music-platform/internal/infra/s3"
	"github.com/Henjin888/hejin-music-platform/internal/jobs/cleanup"
	pgrepo "github.com/Henjin888/hejin-music-platform/internal/repo/postgres"
	redrepo "github.com/Henjin888/hejin-music-platform/internal/repo/redis"
	authsvc "github.com/Henjin888/hejin-music-platform/internal/services/auth"
	modsvc "github.com/Henjin888/hejin-music-platform/internal/services/moderation"
	musicsvc "github.com/Henjin888/hejin-music-platform/internal/services/music"
	ratesvc "github.com/Henjin888/hejin-music-platform/internal/services/rate"
	userssvc "github.com/Henjin888/hejin-music-platform/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	userRepo := pgrepo.NewUserRepo(pool)
	musicRepo := pgrepo.NewMusicRepo(pool)
	reportRepo := pgrepo.NewReportRepo(pool)
	blacklistRepo := pgrepo.NewBlacklistRepo(pool)
	filterRepo := pgrepo.NewContentFilterRepo(pool)

	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.RefreshTTL)

	userService := userssvc.NewService(userssvc.Dependencies{
		UserStore:   userRepo,
		TokenIssuer: authService,
	})

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	musicStorage := musicsvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	musicService := musicsvc.NewService(musicRepo, musicStorage)

	var filterStore modsvc.FilterStore = filterRepo
	if redisClient != nil {
		filterCache := redrepo.NewFilterCacheRepo(redisClient, cfg.Moderation.FilterCacheTTL)
		filterStore = modsvc.NewCachedFilterStore(filterRepo, filterCache)
	}

	moderationService := modsvc.NewService(modsvc.Dependencies{
		Pool:           pool,
		UserStore:      userRepo,
		MusicStore:     musicRepo,
		ReportStore:    reportRepo,
		BlacklistStore: blacklistRepo,
		FilterStore:    filterStore,
	})

	if pool != nil {
		expiryJob := cleanup.NewBlacklistExpiryJob(blacklistRepo, log)
		go expiryJob.Start(ctx, time.Hour)
	}

	var rateLimiter *ratesvc.Limiter
	if redisClient != nil {
		rateLimiter = ratesvc.NewLimiter(
			rateRepo,
			cfg.Moderation.ReportRateLimit,
			cfg.Moderation.ReportRateWindow,
		)
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		UserService:       userService,
		MusicService:      musicService,
		ModerationService: moderationService,
		RateLimiter:       rateLimiter,
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
