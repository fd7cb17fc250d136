package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"neurovisa/config"
	"neurovisa/controllers"
	"neurovisa/db"
	"neurovisa/internal/logger"
	"neurovisa/internal/ratelimit"
	"neurovisa/internal/sweeper"
	"neurovisa/routes"
	"neurovisa/services"
	"neurovisa/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig(config.PathFromEnv())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	utils.SetJWTSecret(cfg.JWT.Secret, cfg.TokenTTL())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, sessions := openStores(ctx, cfg)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.DisconnectMongoDB(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()

	if cfg.Seed.DemoUsers {
		if _, err := utils.PopulateDemoUsers(ctx, users); err != nil {
			logger.Log.WithError(err).Warn("Failed to seed demo users")
		}
	}

	limiter := newLimiter(ctx, cfg)
	interviews := services.NewInterviewService(sessions, users, limiter)

	sw, err := sweeper.New(cfg.Interview.SweepSchedule, cfg.Interview.StaleSessionMaxAge, interviews)
	if err != nil {
		logger.Log.WithError(err).Warn("Session sweeper disabled")
	} else {
		sw.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := routes.NewRouter(routes.RouterOptions{
		APIPrefix:      cfg.Server.APIPrefix,
		AllowOrigins:   cfg.Server.AllowOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Auth:           controllers.NewAuthController(services.NewUserService(users)),
		Interview:      controllers.NewInterviewController(interviews),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
}

// openStores connects to MongoDB, or keeps everything in memory for memory:// URIs
func openStores(ctx context.Context, cfg *config.Config) (db.UserStore, db.SessionStore) {
	if cfg.Database.URI == db.MemoryURI {
		logger.Log.Warn("Using in-memory stores, data is lost on restart")
		return db.NewMemoryUserStore(), db.NewMemorySessionStore()
	}

	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	if err := db.EnsureIndexes(ctx, db.MongoDatabase); err != nil {
		logger.Log.WithError(err).Warn("Failed to ensure indexes")
	}
	return db.NewUserStore(db.MongoDatabase), db.NewSessionStore(db.MongoDatabase)
}

// newLimiter falls back to no limiting when Redis is off or unreachable
func newLimiter(ctx context.Context, cfg *config.Config) ratelimit.Limiter {
	if !cfg.Redis.Enabled {
		return ratelimit.NoopLimiter{}
	}

	rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, answer rate limiting disabled")
		return ratelimit.NoopLimiter{}
	}
	logger.Log.WithField("addr", cfg.Redis.Addr).Info("Connected to Redis")

	return ratelimit.NewRedisLimiter(rdb, ratelimit.Config{
		Prefix: "rate:answer",
		Max:    cfg.Interview.AnswerLimit,
		Window: cfg.Interview.AnswerWindow,
	})
}
