package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ecofinds-api/internal/cloud"
	"ecofinds-api/internal/config"
	"ecofinds-api/internal/db"
	"ecofinds-api/internal/events"
	"ecofinds-api/internal/httpserver"
	"ecofinds-api/internal/logging"
	cartrepo "ecofinds-api/internal/repository/cart"
	idemrepo "ecofinds-api/internal/repository/idempotency"
	productrepo "ecofinds-api/internal/repository/product"
	uploadrepo "ecofinds-api/internal/repository/upload"
	cartsvc "ecofinds-api/internal/service/cart"
	uploadsvc "ecofinds-api/internal/service/upload"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.Named("api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var catalog productrepo.Repository
	switch cfg.CatalogDriver {
	case "postgres":
		catalog = productrepo.NewPostgres(dbpool, logger)
	case "mongo":
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatal("connect to mongo", zap.Error(err))
		}
		defer func() {
			if err := db.DisconnectMongo(client); err != nil {
				logger.Warn("disconnect mongo", zap.Error(err))
			}
		}()
		catalog = productrepo.NewMongo(client.Database(cfg.MongoDB), cfg.MongoProductsCollection, logger)
	default:
		logger.Fatal("unknown catalog driver", zap.String("driver", cfg.CatalogDriver))
	}

	var awsClients *cloud.AWS
	needAWS := cfg.UploadDriver == "s3" || cfg.OrderEventsTopicARN != ""
	if needAWS {
		awsClients, err = cloud.Load(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			logger.Fatal("load aws config", zap.Error(err))
		}
	}

	cartOpts := []cartsvc.Option{
		cartsvc.WithLogger(logger),
		cartsvc.WithLookupConcurrency(cfg.CatalogLookupConcurrency),
	}
	if cfg.RedisURL != "" {
		rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		cartOpts = append(cartOpts, cartsvc.WithIdempotency(idemrepo.NewRedis(rdb), cfg.IdempotencyTTL))
	} else {
		logger.Info("REDIS_URL not set, checkout idempotency keys are ignored")
	}
	if cfg.OrderEventsTopicARN != "" {
		cartOpts = append(cartOpts, cartsvc.WithEvents(events.NewSNS(awsClients.SNS(), cfg.OrderEventsTopicARN)))
	}
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool), catalog, cartOpts...)

	var store uploadrepo.Repository
	switch cfg.UploadDriver {
	case "filesystem":
		store, err = uploadrepo.NewFilesystem(cfg.UploadDir)
		if err != nil {
			logger.Fatal("init upload dir", zap.Error(err))
		}
	case "s3":
		if cfg.S3Bucket == "" {
			logger.Fatal("S3_BUCKET is required for the s3 upload driver")
		}
		store = uploadrepo.NewS3(awsClients.S3(), cfg.S3Bucket, cfg.S3Prefix)
	default:
		logger.Fatal("unknown upload driver", zap.String("driver", cfg.UploadDriver))
	}
	uploadService := uploadsvc.New(store, cfg.UploadMaxBytes, "/uploads", logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:             cartService,
		UploadSvc:           uploadService,
		Auth:                httpserver.AuthConfig{Mode: cfg.AuthMode, Secret: cfg.JWTSecret},
		CORSOrigins:         cfg.CORSAllowedOrigins,
		UploadRatePerMinute: cfg.UploadRatePerMinute,
		MaxUploadBytes:      cfg.UploadMaxBytes,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
