package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moyen/internal/config"
	"moyen/internal/db"
	"moyen/internal/engine"
	"moyen/internal/mqtt"
	"moyen/internal/orchestrator"
	"moyen/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stdout, nil)).Error("load config failed", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open session store failed", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// The hub needs the service for resets and the service needs the hub to
	// publish, so the hub is started after the engine is built.
	var hub *mqtt.Hub
	var publisher orchestrator.TurnPublisher
	if cfg.MQTTBrokerURL != "" {
		hub = mqtt.NewHub(mqtt.HubConfig{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, nil, logger)
		publisher = hub
	}

	eng, err := engine.Build(cfg.EngineConfig, store, publisher, logger)
	if err != nil {
		logger.Error("build engine failed", "error", err)
		os.Exit(1)
	}
	logger.Info("engine ready",
		"intents", eng.Catalog.Len(),
		"classes", len(eng.Classifier.Classes()),
		"confidence_threshold", cfg.ConfidenceThreshold,
		"session_store", cfg.SessionStore,
	)

	if hub != nil {
		hub.SetResetter(eng.Service)
		if err := hub.Start(ctx); err != nil {
			logger.Error("start mqtt hub failed", "error", err)
			os.Exit(1)
		}
	}

	router := newRouter(eng.Service, healthInfo{
		Intents:      eng.Catalog.Len(),
		SessionStore: cfg.SessionStore,
	}, cfg.CORSAllowedOrigins, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("moyen server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func openSessionStore(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		store, err := db.NewPostgres(ctx, cfg.DBDSN, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		go purgeLoop(ctx, store, cfg.SessionTTL, logger)
		return store, store.Close, nil
	case config.SessionStoreSQLite:
		store, err := db.NewSQLite(cfg.SQLitePath, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store := session.NewMemoryStore(cfg.SessionTTL)
		go store.RunSweeper(ctx, time.Minute)
		return store, func() {}, nil
	}
}

func purgeLoop(ctx context.Context, store *db.PostgresStore, ttl time.Duration, logger *slog.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired sessions failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}
