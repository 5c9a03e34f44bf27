package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/libraria-api/internal/config"
	"github.com/libraria-api/internal/infrastructure/dynamo"
	"github.com/libraria-api/internal/infrastructure/push"
	s3infra "github.com/libraria-api/internal/infrastructure/s3"
	"github.com/libraria-api/internal/pkg/logger"
	transporthttp "github.com/libraria-api/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Cover image store.
	s3Client := s3infra.NewClient(cfg)
	coverStore := s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.AWSRegion)

	// Push gateway: constructed once here and reused for the process
	// lifetime, never re-initialised per call.
	sender, err := push.NewSender(cfg)
	if err != nil {
		log.Fatal("push sender init failed", zap.Error(err))
	}

	deps := &transporthttp.Deps{
		BookRepo:         dynamo.NewBookRepo(dynamoClient, cfg.DynamoTables.Books),
		QuizRepo:         dynamo.NewQuizRepo(dynamoClient, cfg.DynamoTables.Quizzes),
		QuestionRepo:     dynamo.NewQuestionRepo(dynamoClient, cfg.DynamoTables.Questions),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		CoverStore:       coverStore,
		Sender:           sender,
		Logger:           log,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
