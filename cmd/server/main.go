package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/api/handlers"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/jobstream"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/slatestore"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/cache"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/config"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.Init("", cfg.IsDevelopment())
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("starting nascar-dfs-optimizer")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis url: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable at startup, continuing degraded")
	}
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, log)

	wsHub := jobstream.NewHub(log)

	store := slatestore.NewStore()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	optimizeHandler := handlers.NewOptimizeHandler(store, wsHub, redisCache, log)
	healthHandler := handlers.NewHealthHandler(redisClient, log)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/optimize", optimizeHandler.Optimize)
	}
	router.GET("/ws/jobs/:job_id", wsHub.HandleSubscribe)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Info("exited cleanly")
}
