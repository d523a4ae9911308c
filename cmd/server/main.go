package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/bloombouqet/bloom_shop/internal/config"
	"github.com/bloombouqet/bloom_shop/internal/es"
	"github.com/bloombouqet/bloom_shop/internal/httpserver"
	"github.com/bloombouqet/bloom_shop/internal/logging"
	"github.com/bloombouqet/bloom_shop/internal/mykafka"
	"github.com/bloombouqet/bloom_shop/internal/repo"
	"github.com/bloombouqet/bloom_shop/internal/service"
	"github.com/bloombouqet/bloom_shop/internal/storage"
)

const productIndex = "product"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	var images storage.ObjectStore
	if configuration.S3_ENDPOINT != "" {
		s3Store, err := storage.NewS3Store(ctx, configuration)
		if err != nil {
			log.Fatalf("object storage init error: %v", err)
		}
		images = s3Store
	} else {
		logger.Warn("S3_ENDPOINT not set, image uploads disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	httpserver.Register(e, buildDeps(configuration, db, producer, esClient, images))

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db handle error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func buildDeps(cfg *config.Config, db *gorm.DB, producer *mykafka.Producer, esClient *elasticsearch.Client, images storage.ObjectStore) *httpserver.Deps {
	r := repo.New(db)
	tokens := service.NewTokenService(r)

	authSvc := &service.AuthService{Repo: r, Tokens: tokens, Producer: producer}
	catalogSvc := &service.CatalogService{
		Repo:     r,
		Producer: producer,
		Images:   images,
		ES:       esClient,
		ESIndex:  productIndex,
	}

	return &httpserver.Deps{
		DB:      db,
		Auth:    &httpserver.AuthHTTP{Svc: authSvc, Debug: cfg.APP_DEBUG},
		Catalog: &httpserver.CatalogHTTP{Svc: catalogSvc, Debug: cfg.APP_DEBUG},
		Search:  &httpserver.SearchHTTP{ES: esClient, Index: productIndex, Debug: cfg.APP_DEBUG},
		AuthMW:  &httpserver.AuthMiddleware{Tokens: tokens, Debug: cfg.APP_DEBUG},
	}
}
