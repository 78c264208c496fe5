// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Annany2002/opentextbook-backend/api"
	"github.com/Annany2002/opentextbook-backend/config"
	"github.com/Annany2002/opentextbook-backend/internal/logger"
	"github.com/Annany2002/opentextbook-backend/internal/session"
	"github.com/Annany2002/opentextbook-backend/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting OpenTextbook server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.Environment, cfg.LogLevel)

	// 2. Initialize Database Connection
	db, err := storage.ConnectDatabase(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		customLog.Println("Closing database connection...")
		if err := db.Close(); err != nil {
			customLog.Printf("Error closing database: %v", err)
		}
	}()

	// 3. Session Store
	store, closeStore, err := openSessionStore(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize session store: %v", err)
	}
	defer closeStore()
	sessions := session.NewManager(store, cfg.SessionSecret, cfg.SessionMaxAge, cfg.IsProduction())

	// 4. Setup Router (passing dependencies)
	router, limiter := api.SetupRouter(db, cfg, sessions)
	defer limiter.Stop()

	// 5. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		customLog.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			customLog.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	customLog.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		customLog.Printf("Server forced to shutdown: %v", err)
	}
}

func openSessionStore(cfg *config.Config) (session.Store, func(), error) {
	if cfg.SessionStore == config.SessionStoreRedis {
		store := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		customLog.Printf("Session store: redis at %s", cfg.RedisAddr)
		return store, func() { store.Close() }, nil
	}

	store := session.NewMemoryStore(time.Hour)
	customLog.Println("Session store: in-memory")
	return store, store.Close, nil
}
