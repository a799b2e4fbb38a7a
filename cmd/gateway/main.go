package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/techhub-commerce/admin-gateway/api/controllers"
	"github.com/techhub-commerce/admin-gateway/api/routes"
	"github.com/techhub-commerce/admin-gateway/internal/sessions"
	"github.com/techhub-commerce/admin-gateway/pkg/catalog"
	"github.com/techhub-commerce/admin-gateway/pkg/config"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
	"github.com/techhub-commerce/admin-gateway/pkg/metrics"
	pkgredis "github.com/techhub-commerce/admin-gateway/pkg/redis"
	"github.com/techhub-commerce/admin-gateway/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage client", err)
		}
	}()

	catalogClient, err := catalog.NewClient(cfg.ProductAPI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap product api client", err)
		os.Exit(1)
	}

	var idemStore pkgredis.IdempotencyStore
	pingers := map[string]controllers.Pinger{
		"gcs":         gcsClient,
		"product_api": catalogClient,
	}
	if cfg.Redis.Enabled() {
		redisClient, redisErr := pkgredis.New(context.Background(), cfg.Redis)
		if redisErr != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", redisErr)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idemStore = redisClient
		pingers["redis"] = redisClient
	} else {
		logg.Warn(context.Background(), "redis url not set; submit idempotency disabled")
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)

	registry, err := sessions.NewRegistry(sessions.RegistryConfig{
		Uploader:      gcsClient,
		Products:      catalogClient,
		Logger:        logg,
		Metrics:       pipelineMetrics,
		MinImages:     cfg.Media.MinImages,
		MaxImages:     cfg.Media.MaxImages,
		IdleTTL:       cfg.Sessions.IdleTTL,
		SweepInterval: cfg.Sessions.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session registry", err)
		os.Exit(1)
	}
	registry.Start(context.Background())
	defer registry.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting admin gateway")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:    cfg,
			Logger:    logg,
			Registry:  registry,
			Catalog:   catalogClient,
			Metrics:   pipelineMetrics,
			IdemStore: idemStore,
			Pingers:   pingers,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}
