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

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/printloom/printloom/backend-go/internal/artwork"
	"github.com/printloom/printloom/backend-go/internal/auth"
	"github.com/printloom/printloom/backend-go/internal/canvas"
	"github.com/printloom/printloom/backend-go/internal/config"
	"github.com/printloom/printloom/backend-go/internal/db"
	"github.com/printloom/printloom/backend-go/internal/export"
	"github.com/printloom/printloom/backend-go/internal/layout"
	"github.com/printloom/printloom/backend-go/internal/ledger"
	mw "github.com/printloom/printloom/backend-go/internal/middleware"
	"github.com/printloom/printloom/backend-go/internal/realtime"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		slog.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	store := db.NewStore(pool)

	ledgerService := ledger.NewService(pool, cfg.FreeTrials)
	ledgerHandler := ledger.NewHandler(ledgerService)

	authService := auth.NewService(store, ledgerService, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	canvasService := canvas.NewService(store)
	canvasHandler := canvas.NewHandler(canvasService, cfg.DefaultPadding)

	hub := realtime.NewHub()
	go hub.Run()

	layoutHandler := layout.NewHandler(ledgerService, canvasService, hub)
	artworkHandler := artwork.NewHandler(cfg.ArtworkDir, cfg.ArtworkDPI)
	exportHandler := export.NewHandler(canvasService, cfg.CanvasBaseURL)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Artwork endpoints (public, the editor uploads before login completes)
	r.HandleFunc("/artwork/upload", artworkHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/artwork/").Handler(artworkHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")

	api.HandleFunc("/credits", ledgerHandler.GetCredits).Methods("GET")
	api.HandleFunc("/credits/cost", ledgerHandler.GetCost).Methods("GET")
	api.HandleFunc("/credits/topup", ledgerHandler.TopUp).Methods("POST")

	api.HandleFunc("/artwork/{artworkId}", artworkHandler.Delete).Methods("DELETE")

	api.HandleFunc("/canvases", canvasHandler.List).Methods("GET")
	api.HandleFunc("/canvases", canvasHandler.Create).Methods("POST")
	api.HandleFunc("/canvases/{canvasId}", canvasHandler.Get).Methods("GET")
	api.HandleFunc("/canvases/{canvasId}", canvasHandler.Delete).Methods("DELETE")
	api.HandleFunc("/canvases/{canvasId}/snapshots/latest", canvasHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/canvases/{canvasId}/layers/import", canvasHandler.ImportLayers).Methods("POST")
	api.HandleFunc("/canvases/{canvasId}/auto-nest", layoutHandler.AutoNest).Methods("POST")
	api.HandleFunc("/canvases/{canvasId}/smart-fill", layoutHandler.SmartFill).Methods("POST")
	api.HandleFunc("/canvases/{canvasId}/proof.pdf", exportHandler.Proof).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/canvas/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, canvasService)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *realtime.Hub, authSvc *auth.Service, canvases *canvas.Service) {
	vars := mux.Vars(r)
	canvasID := vars["canvasId"]

	// Auth via query param: browsers cannot set headers on ws upgrades
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := canvases.Get(r.Context(), canvasID, userID); err != nil {
		http.Error(w, "canvas not accessible", http.StatusForbidden)
		return
	}

	user, err := authSvc.GetUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:5173", "localhost:3000"},
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := realtime.NewClient(hub, conn, userID, user.DisplayName, canvasID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
