package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-dashboard/agents/dashboard"
	"creator-dashboard/agents/dashboard/web"
	"creator-dashboard/agents/dashboard/youtube"
	"creator-dashboard/shared/ai"
	"creator-dashboard/shared/config"
	"creator-dashboard/shared/monitoring"
	"creator-dashboard/shared/scheduler"
	"creator-dashboard/shared/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	keys, err := storage.NewKeyStore(cfg.Storage.DataDir, cfg.Storage.KeyMaxAge)
	if err != nil {
		log.Fatalf("Failed to open key store: %v", err)
	}

	sessions := dashboard.NewSessionStore(cfg.Session.IdleTimeout)
	monitor := monitoring.NewMonitor()
	s := scheduler.New(cfg.Schedule, monitor, dashboard.NewHousekeeping(sessions, keys))

	if len(os.Args) > 1 && os.Args[1] == "--once" {
		fmt.Println("Running housekeeping once...")
		if err := s.RunOnce(ctx); err != nil {
			log.Fatalf("Failed to run: %v", err)
		}
		return
	}

	videos, err := youtube.NewClient(ctx, &cfg.YouTube)
	if err != nil {
		log.Fatalf("Failed to create YouTube client: %v", err)
	}

	analyzer, err := ai.NewAnalyzer(ctx, &cfg.AI)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	controller := dashboard.NewController(dashboard.Services{
		Videos:        videos,
		Insights:      analyzer,
		Keys:          keys,
		DefaultAPIKey: cfg.YouTube.DefaultAPIKey,
		Monitor:       monitor,
	})

	server, err := web.NewServer(controller, sessions, videos, analyzer, monitor, web.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  cfg.Server.SecureCookies,
	})
	if err != nil {
		log.Fatalf("Failed to create web server: %v", err)
	}

	go func() {
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Scheduler failed: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Dashboard listening on :%d", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}
