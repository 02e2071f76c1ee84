package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/EternisAI/agent-key/internal/admin"
	internalhttp "github.com/EternisAI/agent-key/internal/api/http"
	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/auth"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db"
	grpcserver "github.com/EternisAI/agent-key/internal/grpc/server"
	grpctls "github.com/EternisAI/agent-key/internal/grpc/tls"
	"github.com/EternisAI/agent-key/internal/metrics"
	"github.com/EternisAI/agent-key/internal/vault"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var AppVersion string

const authCacheCleanupInterval = time.Minute

func main() {
	InitConfig()

	slog.Info("Agent Key Server", "version", AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.RunMigrations(config.DB.Url, config.DB.Schema); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	pool, err := db.InitDB(ctx, config.DB)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := db.NewStore(pool, config.Checkout.StoreTimeout)

	v, err := vault.Open(config.Vault.MasterKeyPath)
	if err != nil {
		slog.Error("Failed to open vault", "path", config.Vault.MasterKeyPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Vault ready", "recipient", v.Recipient())

	m := metrics.New()
	sink := audit.NewSink()

	tokenCache := auth.NewCache(config.Auth.CacheTTL)
	go tokenCache.StartCleanup(ctx, authCacheCleanupInterval)

	services := &internalhttp.Services{
		Store: store,
		Auth:  auth.NewService(store, sink, tokenCache, auth.Config{BootstrapEnabled: config.Bootstrap.Enabled}),
		Admin: admin.NewService(store, v, sink),
		Checkouts: checkout.NewService(store, v, sink, m, checkout.Config{
			DefaultTTLSeconds: config.Checkout.DefaultTTLSeconds,
			MinTTLSeconds:     config.Checkout.MinTTLSeconds,
		}),
		Metrics: m,
	}

	creds, err := grpctls.ServerCredentials(config.Grpc.TLS)
	if err != nil {
		slog.Error("Failed to load gRPC TLS credentials", "error", err)
		os.Exit(1)
	}
	grpcSrv := grpcserver.NewServer(config.Grpc.Port, store, creds)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"PUT", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, config.Http, services)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Http.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	go func() {
		if err := grpcSrv.Start(); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down servers...")
	cancel()

	var wg sync.WaitGroup
	shutdownTimeout := 10 * time.Second

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server stopped")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := grpcSrv.StopWithTimeout(shutdownTimeout); err != nil {
			slog.Error("gRPC server shutdown error", "error", err)
		}
	}()

	wg.Wait()
	slog.Info("Shutdown complete")
}
