package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"propertybw/internal/ai"
	"propertybw/internal/alerts"
	"propertybw/internal/compare"
	"propertybw/internal/config"
	"propertybw/internal/handler"
	"propertybw/internal/logger"
	"propertybw/internal/metrics"
	"propertybw/internal/repository"
	"propertybw/internal/search"
	"propertybw/internal/store"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("property marketplace search service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)
	metrics.Register()

	// PostgreSQL: listings, full-text search, embeddings, search logs.
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer repo.Close()
	zlog.Info("connected to PostgreSQL")

	// Redis: per-device client state.
	kv, err := store.NewRedisKV(cfg.Redis.Address, cfg.Redis.Password)
	if err != nil {
		zlog.Fatal("redis connection failed", zap.Error(err))
	}
	defer kv.Close()
	zlog.Info("connected to Redis", zap.String("address", cfg.Redis.Address))

	savedSearches := store.NewSavedSearchStore(kv, zlog)
	recentSearches := store.NewRecentSearches(kv, cfg.Search.RecentSearchCap, zlog)
	preferences := store.NewPreferencesStore(kv)

	aiClient := ai.New(&cfg.AI, zlog)
	if aiClient != nil {
		zlog.Info("AI interpreter enabled",
			zap.String("chat_model", cfg.AI.ChatModel),
			zap.String("embedding_model", cfg.AI.EmbeddingModel),
		)
	} else {
		zlog.Warn("AI interpreter disabled, all AI searches take the local fallback path")
	}

	var interpreter search.Interpreter
	if aiClient != nil {
		interpreter = aiClient
	}
	resolver := search.NewResolver(interpreter, cfg.Search.MinQueryLength, zlog)
	suggester := search.NewSuggester(recentSearches, 8)

	compareSets := compare.NewManager(cfg.Search.CompareLimit, cfg.Search.CompareSessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Idle comparison sessions are swept in the background.
	go func() {
		ticker := time.NewTicker(cfg.Search.CompareSessionTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := compareSets.Sweep(); removed > 0 {
					zlog.Debug("swept idle comparison sessions", zap.Int("removed", removed))
				}
			}
		}
	}()

	// Saved-search alert worker, behind a config flag.
	if cfg.Alerts.Enabled {
		publisher, err := alerts.NewPublisher(cfg.Alerts.AMQPURL, cfg.Alerts.Exchange, zlog)
		if err != nil {
			zlog.Fatal("alert publisher setup failed", zap.Error(err))
		}
		defer publisher.Close()

		worker := alerts.NewWorker(repo, savedSearches, publisher, cfg.Alerts.Interval, cfg.Alerts.RunLimit, zlog)
		go worker.Run(ctx)
		zlog.Info("alert worker enabled",
			zap.String("exchange", cfg.Alerts.Exchange),
			zap.Duration("interval", cfg.Alerts.Interval),
		)
	}

	propertyHandler := handler.NewPropertyHandler(repo, cfg.Search, zlog)
	searchHandler := handler.NewSearchHandler(repo, resolver, suggester, recentSearches, aiClient, cfg.Search, zlog)
	savedHandler := handler.NewSavedSearchHandler(savedSearches, zlog)
	compareHandler := handler.NewCompareHandler(compareSets)
	preferencesHandler := handler.NewPreferencesHandler(preferences, zlog)
	embeddingHandler := handler.NewEmbeddingHandler(repo, cfg.AI.EmbeddingDimensions)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "X-Device-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "property-search",
			"version": Version,
		})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/properties", propertyHandler.List)
		api.GET("/properties/:id", propertyHandler.Get)
		api.POST("/properties/import", propertyHandler.Import)

		api.GET("/search", searchHandler.Search)
		api.POST("/search/ai", searchHandler.AISearch)
		api.GET("/search/semantic", searchHandler.Semantic)
		api.GET("/suggest", searchHandler.Suggest)

		api.GET("/saved-searches", savedHandler.List)
		api.POST("/saved-searches", savedHandler.Create)
		api.GET("/saved-searches/:id", savedHandler.Get)
		api.DELETE("/saved-searches/:id", savedHandler.Delete)
		api.POST("/saved-searches/:id/alerts", savedHandler.ToggleAlerts)

		api.GET("/compare", compareHandler.Get)
		api.POST("/compare", compareHandler.Add)
		api.DELETE("/compare/:id", compareHandler.Remove)

		api.GET("/preferences", preferencesHandler.Get)
		api.PUT("/preferences", preferencesHandler.Put)

		api.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown incomplete", zap.Error(err))
	}
	zlog.Info("server stopped")
}
