package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/fadilmartias/resumind/internal/config"
	"github.com/fadilmartias/resumind/internal/convert"
	"github.com/fadilmartias/resumind/internal/domain/fiber/handler"
	"github.com/fadilmartias/resumind/internal/middleware"
	"github.com/fadilmartias/resumind/internal/model"
	"github.com/fadilmartias/resumind/internal/repository"
	"github.com/fadilmartias/resumind/internal/service"
	"github.com/fadilmartias/resumind/internal/storage"
	"github.com/fadilmartias/resumind/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	blobs, err := NewBlobStore(ctx)
	if err != nil {
		log.Fatal(err)
	}

	kv := repository.NewGormKVStore(db)
	store := repository.NewSubmissionStore(kv)
	embeddings := repository.NewEmbeddingRepository(db)

	inference, gemini, err := NewInference(ctx, blobs)
	if err != nil {
		log.Fatal(err)
	}

	uc := usecase.NewAnalysisUsecase(store, blobs, convert.FirstPagePNG, inference)
	if gemini != nil {
		uc.WithSimilarity(gemini, embeddings)
	}
	h := handler.NewAnalyzeHandler(uc)
	h.RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.KVEntry{}, &model.SubmissionEmbedding{}); err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}

func NewBlobStore(ctx context.Context) (storage.BlobStore, error) {
	storageConfig := config.LoadStorageConfig()
	switch storageConfig.Driver {
	case "gcs":
		return storage.NewGCSStore(ctx, storageConfig.Bucket)
	case "local":
		return storage.NewLocalStore(storageConfig.UploadDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", storageConfig.Driver)
	}
}

// NewInference picks the inference provider. The Gemini client doubles
// as the embedding service for the similar-submissions search; with
// OpenRouter selected and no Gemini key present, similarity is off.
func NewInference(ctx context.Context, blobs storage.BlobStore) (service.InferenceServiceInterface, *service.GeminiService, error) {
	inferenceConfig := config.LoadInferenceConfig()
	switch inferenceConfig.Provider {
	case "openrouter":
		gemini, err := service.NewGeminiService(ctx, blobs)
		if err != nil {
			log.Printf("similarity search disabled: %v", err)
			gemini = nil
		}
		return service.NewOpenRouterService(blobs), gemini, nil
	case "gemini":
		gemini, err := service.NewGeminiService(ctx, blobs)
		if err != nil {
			return nil, nil, err
		}
		return gemini, gemini, nil
	default:
		return nil, nil, fmt.Errorf("unknown inference provider %q", inferenceConfig.Provider)
	}
}
