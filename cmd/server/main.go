package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/internal/auth"
	"github.com/inamate/whiteboard/internal/board"
	"github.com/inamate/whiteboard/internal/collab"
	"github.com/inamate/whiteboard/internal/config"
	"github.com/inamate/whiteboard/internal/discovery"
	"github.com/inamate/whiteboard/internal/export"
	mw "github.com/inamate/whiteboard/internal/middleware"
	"github.com/inamate/whiteboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		slog.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	boardService := board.NewService(st, nil)
	boardHandler := board.NewHandler(boardService)

	hub := collab.NewHub(boardService.Load, boardService.Save, cfg.SaveInterval)
	boardService.SetLive(hub)
	go hub.Run()

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	exportHandler := export.NewHandler(boardService)

	wsHandler := collab.NewHandler(hub, authService.BoardAuthenticator(cfg.AllowGuests), cfg.OriginHosts())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/boards", boardHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/boards/{boardId}/snapshot", boardHandler.GetSnapshot).Methods("GET")
	api.HandleFunc("/boards/{boardId}/history", boardHandler.History).Methods("GET")
	api.HandleFunc("/boards/{boardId}/export.pdf", exportHandler.ExportPDF).Methods("GET")
	api.HandleFunc("/boards/{boardId}/thumbnail.png", exportHandler.Thumbnail).Methods("GET")

	r.Handle("/ws/board/{boardId}", wsHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.MDNSEnabled {
		advert, err := discovery.Advertise(cfg.MDNSInstance, cfg.Port, []string{"path=/ws/board"})
		if err != nil {
			slog.Warn("mdns advertise failed", "error", err)
		} else {
			slog.Info("advertising on mdns", "service", discovery.ServiceType)
			defer advert.Shutdown()
		}
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty boards
		slog.Info("saving all boards...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
