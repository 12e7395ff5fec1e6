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

	"github.com/joho/godotenv"
	"github.com/upal04/cardvault/internal/config"
	"github.com/upal04/cardvault/internal/database"
	"github.com/upal04/cardvault/internal/handlers"
	"github.com/upal04/cardvault/internal/repositories"
	"github.com/upal04/cardvault/internal/services"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create postgres pool: %v", err)
	}
	defer postgresPool.Close()

	if err := database.Migrate(ctx, postgresPool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create redis client: %v", err)
	}
	defer redisClient.Close()

	// Wire repositories and services
	accountRepo := repositories.NewPostgresAccountRepository(postgresPool)
	cardRepo := repositories.NewPostgresCardRepository(postgresPool)
	sessionRepo := repositories.NewRedisSessionRepository(redisClient)

	authService := services.NewAuthService(accountRepo, sessionRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.StrictPasswords)
	vaultService := services.NewVaultService(cardRepo, accountRepo)

	router := handlers.NewRouter(authService, vaultService, cfg.DevKey)

	// Start Server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
