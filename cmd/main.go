package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chat-planet/chat-service/config"
	"github.com/chat-planet/chat-service/internal/registry"
	httpx "github.com/chat-planet/chat-service/internal/transport/http"
	"github.com/chat-planet/chat-service/internal/transport/ws"
	"github.com/chat-planet/chat-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- registry ---
	rooms := registry.New()

	// --- WS Hub & Gateway ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, rooms, ws.Options{
		PingInterval:   cfg.PingInterval(),
		MaxMessageSize: cfg.WS.MaxMessageSize,
	})

	// --- HTTP ---
	handler := httpx.NewHandler(rooms)
	router := httpx.NewRouter(handler, wsServer, cfg.CORS.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: /chat hijacks the connection and manages
		// its own write deadlines
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsServer.Shutdown()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
