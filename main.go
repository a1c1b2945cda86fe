package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/common/auth"
	"catalog-service/common/logger"
	"catalog-service/common/middleware"
	"catalog-service/controllers"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/routes"
	"catalog-service/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	serviceName        = "catalog-service"
	workerDrainTimeout = 2 * time.Minute
)

func main() {
	ctx := context.Background()
	logger.Initialize(os.Getenv("APP_ENV"))

	cfg, err := LoadConfig(ctx)
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		zap.L().Fatal("Failed to load AWS config", zap.Error(err))
	}

	if cfg.CloudWatchEnabled {
		writer, err := awspkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			zap.L().Warn("CloudWatch Logs disabled", zap.Error(err))
		} else {
			logger.InitializeWithWriter(cfg.Env, writer)
		}
	} else {
		logger.Initialize(cfg.Env)
	}
	defer func() { _ = zap.L().Sync() }()

	// --- Storage ---
	store, closeStore := openStore(ctx, cfg, awsCfg)
	defer closeStore()

	s3Client := awspkg.NewS3Client(awsCfg)
	blobs := repository.NewS3BlobStore(s3Client, awspkg.NewS3Presigner(s3Client), cfg.S3Bucket, cfg.S3Prefix, cfg.S3Endpoint, cfg.CloudFrontDomain)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zap.L().Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "redis:6379", DB: 0}
	}
	rdb := redis.NewClient(redisOpts)

	metrics := awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
	var events services.EventPublisher
	if cfg.ImportTopicArn != "" {
		events = awspkg.NewSNSClient(awsCfg)
	}

	// --- Services ---
	productRepo := repository.NewProductRepository(store)
	categoryRepo := repository.NewCategoryRepository(store)
	priceRepo := repository.NewPriceRepository(store)
	analyticsRepo := repository.NewAnalyticsRepository(store)
	sliderRepo := repository.NewSliderRepository(store)

	categoryService := services.NewCategoryService(store, categoryRepo, productRepo)
	productService := services.NewProductService(productRepo, categoryRepo, priceRepo, blobs)
	priceService := services.NewPriceService(priceRepo, productService)
	imageService := services.NewImageService(blobs, productService)
	analyticsService := services.NewAnalyticsService(analyticsRepo, productService, metrics)
	sliderService := services.NewSliderService(sliderRepo)
	importService := services.NewImportService(services.NewBatchImporter(productRepo), categoryService, events, cfg.ImportTopicArn, metrics)
	importQueue := services.NewImportJobQueue(rdb, blobs)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	workerDone := services.StartImportWorker(workerCtx, importQueue, importService)

	// --- Controllers ---
	validator := controllers.NewRequestValidator()
	cache := controllers.NewCacheManager(rdb)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 5*time.Minute)
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(stopCleanup)

	// --- HTTP ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Metrics(metrics, serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Invalid-Rows", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Categories: controllers.NewCategoryController(categoryService, cache, validator),
		Products:   controllers.NewProductController(productService, priceService, imageService, cache, validator),
		Imports:    controllers.NewImportHandler(importService, importQueue, cache, validator),
		Analytics:  controllers.NewAnalyticsController(analyticsService, validator),
		Sliders:    controllers.NewSliderController(sliderService, cache, validator),
		Public:     []gin.HandlerFunc{middleware.RateLimit(limiter)},
		Admin:      []gin.HandlerFunc{verifier.RequireAdmin()},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Catalog Service starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down Catalog Service...")

	stopWorker()
	close(stopCleanup)

	// Let an import that is already running finish before Redis goes away.
	select {
	case <-workerDone:
	case <-time.After(workerDrainTimeout):
		zap.L().Warn("Import worker still busy, exiting anyway", zap.Duration("waited", workerDrainTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		zap.L().Error("Failed to close Redis", zap.Error(err))
	}
	zap.L().Info("Catalog Service stopped gracefully")
}

// openStore connects the configured catalog store and returns its closer.
func openStore(ctx context.Context, cfg *Config, awsCfg sdkaws.Config) (repository.Store, func()) {
	switch cfg.StoreDriver {
	case StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := repository.ConnectMongo(connectCtx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				zap.L().Error("Failed to close MongoDB", zap.Error(err))
			}
		}
	case StoreMemory:
		zap.L().Warn("Using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), func() {}
	default:
		return repository.NewDynamoStore(awspkg.NewDynamoDBClient(awsCfg), cfg.DDBTablePrefix), func() {}
	}
}
