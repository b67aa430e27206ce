package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riddlehunt/config"
	"riddlehunt/database"
	"riddlehunt/logging"
	"riddlehunt/middleware"
	"riddlehunt/repositories"
	"riddlehunt/services"
	"riddlehunt/utils"

	v1 "riddlehunt/routes/v1"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Riddle Hunt API
// @version 1.0
// @description Team login, riddle retrieval and answer submission for the riddle hunt.
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.RequireJWTSecret(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	store := repositories.NewGormStore(db)

	var cache services.RiddleCache = services.NoopRiddleCache{}
	redisClient, err := database.InitRedis(ctx, cfg)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, riddle cache disabled")
	} else if redisClient != nil {
		defer redisClient.Close()
		cache = services.NewRedisRiddleCache(redisClient, cfg.RiddleCacheTTL)
		logger.WithField("addr", cfg.RedisAddr).Info("riddle cache enabled")
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := utils.NewBcryptHasher(cfg.BcryptCost)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CorsOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CorsOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	r.Use(cors.New(corsConfig))

	v1.Register(r, v1.Services{
		Auth:       services.NewAuthService(store.Teams(), hasher, tokens, logger),
		Challenges: services.NewChallengeService(store, cache, logger),
		Logger:     logger,
	})

	middleware.UpdateSystemMetrics(ctx, 15*time.Second)
	services.TrackTeamProgress(ctx, store.Teams(), 30*time.Second, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		logger.WithField("port", cfg.ServerPort).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
