package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/planora/collab-server/auth"
	"github.com/planora/collab-server/config"
	"github.com/planora/collab-server/coordinator"
	"github.com/planora/collab-server/gateway"
	"github.com/planora/collab-server/presence"
	"github.com/planora/collab-server/server"
)

func main() {
	cfg := config.Load()

	backend := gateway.NewClient(cfg.APIGatewayURL, cfg.DocumentServiceURL, cfg.InternalAPIKey, cfg.DocumentServiceAPIKey)

	var tracker presence.Tracker
	if cfg.RedisURL != "" {
		redisTracker, err := presence.NewRedisTracker(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisTracker.Close()
		tracker = redisTracker
		log.Printf("Using Redis presence at %s", cfg.RedisURL)
	} else {
		tracker = presence.NewMemoryTracker()
	}

	coord := coordinator.New(backend, backend, coordinator.Options{
		Debounce:         cfg.AutosaveDebounce,
		SnapshotInterval: cfg.SnapshotInterval,
		SessionTTL:       cfg.SessionTTL,
		Presence:         tracker,
	})

	hub := server.NewHub(coord, server.LastWriterWins{}, auth.NewVerifier(cfg.JWTSecret))
	go hub.Run()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewHandler(hub, tracker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Collab server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	// Every still-open document gets its final save and snapshot.
	coord.Close(shutdownCtx)
}
