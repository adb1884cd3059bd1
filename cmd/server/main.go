package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kshitijm/tripledger/internal/auth"
	"github.com/kshitijm/tripledger/internal/middleware"
	"github.com/kshitijm/tripledger/internal/router"
	"github.com/kshitijm/tripledger/internal/storage/sqlite"
	"github.com/kshitijm/tripledger/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// tokenTTL reads TOKEN_TTL (e.g. "12h"). Zero means the auth package default.
func tokenTTL() time.Duration {
	raw := os.Getenv("TOKEN_TTL")
	if raw == "" {
		return 0
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		slog.Warn("Ignoring invalid TOKEN_TTL", "value", raw)
		return 0
	}
	return ttl
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/tripledger.db")
	addr := ":" + getEnv("PORT", "8080")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, tokenTTL())

	mux := router.New(store, jwtManager)

	// Wrap with h2c so HTTP/2 works without TLS behind a terminating proxy
	handler := h2c.NewHandler(middleware.CORS(mux), &http2.Server{})

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Close()
	}()

	slog.Info("Server starting", "address", addr)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}
