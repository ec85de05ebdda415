package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/filkovsp/WEB-Drawing-App/internal/config"
	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/export"
	mw "github.com/filkovsp/WEB-Drawing-App/internal/middleware"
	"github.com/filkovsp/WEB-Drawing-App/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Every websocket connection gets its own engine over recording surfaces.
	newEngine := func() (*engine.Engine, error) {
		opts := append(cfg.EngineOptions(), engine.WithLogger(slog.Default()))
		return engine.New(cfg.CanvasWidth, cfg.CanvasHeight, opts...)
	}

	hub := session.NewHub()
	go hub.Run()

	sessionHandler := session.NewHandler(hub, newEngine, cfg.Origins())
	exportHandler := export.NewHandler(hub)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/sessions", sessionHandler.List).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/view", sessionHandler.View).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/snapshot.png", exportHandler.Snapshot).Methods("GET")

	// WebSocket endpoint, one drawing session per connection
	r.HandleFunc("/ws", sessionHandler.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr,
		"canvas", fmt.Sprintf("%dx%d", cfg.CanvasWidth, cfg.CanvasHeight))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
