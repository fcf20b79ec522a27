package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-identity-api/internal/config"
	"github.com/go-identity-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-identity-api/internal/infrastructure/jwt"
	"github.com/go-identity-api/internal/infrastructure/smtp"
	"github.com/go-identity-api/internal/infrastructure/sns"
	transporthttp "github.com/go-identity-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Session tokens are mandatory; refuse to start without a signing secret.
	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry())
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// SNS SMS sender. OTP delivery is the core flow, so a missing sender is fatal.
	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		log.Fatalf("sns sender: %v", err)
	}

	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:            dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		PhoneVerifRepo:      dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.PhoneVerifications),
		EmailVerifRepo:      dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.EmailVerifications),
		NotificationLogRepo: dynamo.NewNotificationLogRepo(dynamoClient, cfg.DynamoTables.NotificationLog),
		CounterRepo:         dynamo.NewCounterRepo(dynamoClient, cfg.DynamoTables.Counters),
		Mailer:              mailer,
		SMSSender:           smsSender,
		JWTProvider:         jwtProvider,
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
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
