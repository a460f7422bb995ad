package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/config"
	"newsdesk/config/database"
	"newsdesk/internal/article/repository"
	"newsdesk/internal/article/service"
	authsvc "newsdesk/internal/auth/service"
	"newsdesk/pkg/logger"
	"newsdesk/router"
	"newsdesk/socket"
	"newsdesk/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	articleStore, closeStore := openStore(ctx, cfg)
	defer closeStore()

	hub := socket.NewHub()
	go hub.Run()
	defer hub.Close()

	auth := authsvc.NewService(authsvc.Options{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		TTL:      cfg.TokenTTL,
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.Setup(router.Deps{
			Articles:    service.NewArticleService(articleStore, auth, hub),
			Auth:        auth,
			Hub:         hub,
			CORSOrigins: cfg.CORSAllowedOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("newsdesk listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

// openStore connects the configured article store. An unreachable database is fatal.
func openStore(ctx context.Context, cfg config.Config) (service.Store, func()) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Sugar.Warn("Using in-memory article store; data is lost on restart")
		return repository.NewMemoryRepository(), func() {}
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Sugar.Fatalf("Could not connect to database: %v", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		logger.Sugar.Fatalf("Could not prepare schema: %v", err)
	}
	return repository.NewArticleRepository(db), func() { db.Close() }
}
