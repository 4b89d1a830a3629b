package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"aetherlink-be/internal/cache"
	"aetherlink-be/internal/config"
	"aetherlink-be/internal/database"
	"aetherlink-be/internal/jwt"
	"aetherlink-be/internal/logger"
	"aetherlink-be/internal/middleware"
	"aetherlink-be/internal/ratelimit"
	"aetherlink-be/internal/repository"
	"aetherlink-be/internal/repository/memory"
	"aetherlink-be/internal/result"
	"aetherlink-be/internal/server"
	"aetherlink-be/internal/service"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	links    repository.LinkRepository
	storage  string
	closer   func() error
}

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	result.SetProduction(cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer func() {
		if err := repos.closer(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage")
		}
	}()

	// Redis is optional: without it profiles are not cached and admission
	// stats stay in memory
	var cacheClient cache.Cache
	memStats := ratelimit.NewMemoryStats()
	var stats ratelimit.StatsRecorder = memStats

	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
		} else {
			defer closeRedis(rdb)
			cacheClient = cache.NewRedisCache(rdb)
			stats = ratelimit.MultiStats{memStats, ratelimit.NewRedisStats(rdb, "ratelimit", 48*time.Hour)}
			logger.Info().Msg("connected to Redis")
		}
	}

	jwtService := jwt.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTL)*time.Hour)

	authService := service.NewAuthService(repos.users, jwtService, service.NewBcryptHasher(service.DefaultPasswordCost))
	profileService := service.NewProfileService(repos.profiles, cacheClient)
	linkService := service.NewLinkService(repos.links, repos.profiles)

	limiter := ratelimit.New()
	throttle := ratelimit.NewThrottle(cfg.GlobalRateRPS, cfg.GlobalRateBurst)

	router := server.NewRouter(server.Deps{
		AuthService:    authService,
		ProfileService: profileService,
		LinkService:    linkService,
		Verifier:       jwtService,
		RateLimiter:    middleware.NewRateLimiter(limiter, throttle, stats),
		Origins:        middleware.NewOriginPolicy(cfg.AllowedOrigins, cfg.DeployEnv, cfg.PreviewHostSuffix),
		Stats:          memStats,
		Storage:        repos.storage,
		FrontendURL:    cfg.FrontendURL,
		InternalToken:  cfg.InternalAPIToken,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	limiter.StartJanitor(gctx)

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("storage", repos.storage).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
}

// openRepositories connects to DATABASE_URL, or falls back to the in-memory
// store when it is empty.
func openRepositories(ctx context.Context, databaseURL string) (*repositories, error) {
	if databaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory storage")
		store := memory.NewStore()
		return &repositories{
			users:    store.Users(),
			profiles: store.Profiles(),
			links:    store.Links(),
			storage:  "memory",
			closer:   func() error { return nil },
		}, nil
	}

	db, dialect, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := database.RunMigrations(db, dialect); err != nil {
		closeDB(db)
		return nil, err
	}

	return &repositories{
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
		links:    repository.NewLinkRepository(db, dialect),
		storage:  string(dialect),
		closer:   db.Close,
	}, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close database")
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close Redis")
	}
}
