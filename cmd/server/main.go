package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/math-adventure/backend/internal/auth"
	"github.com/math-adventure/backend/internal/cache"
	"github.com/math-adventure/backend/internal/config"
	"github.com/math-adventure/backend/internal/daily"
	"github.com/math-adventure/backend/internal/database"
	"github.com/math-adventure/backend/internal/gamification"
	"github.com/math-adventure/backend/internal/jobs"
	"github.com/math-adventure/backend/internal/middleware"
	"github.com/math-adventure/backend/internal/players"
	"github.com/math-adventure/backend/internal/problems"
)

func main() {
	setupLogger()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithError(err).Warn("Unknown LOG_LEVEL, keeping info")
	}

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	log.WithField("driver", cfg.DBDriver).Info("Database ready")

	var leaderboardCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, leaderboard will not be cached")
		} else {
			leaderboardCache = rc
			defer rc.Close()
		}
	}

	// Initialize services
	authService := auth.NewService(auth.NewStore(db), auth.NewTokenIssuer(cfg.JWTSecret), cfg.SessionTTL)
	progressStore := gamification.NewStore(db)
	progression := gamification.NewService(progressStore, leaderboardCache, cfg.LeaderboardCacheTTL)
	problemService := problems.NewService(progression, nil)
	dailyService := daily.NewService(daily.NewStore(db), progression)
	playerService := players.NewService(players.NewStore(db), progressStore)

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	gamificationHandler := gamification.NewHandler(progression)
	problemHandler := problems.NewHandler(problemService)
	dailyHandler := daily.NewHandler(dailyService)
	playerHandler := players.NewHandler(playerService)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/check-username", authHandler.CheckUsername).Methods("GET")
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/problem", problemHandler.GetProblem).Methods("GET")
	api.HandleFunc("/players", playerHandler.List).Methods("GET")
	api.HandleFunc("/players/{id:[0-9]+}/stats", playerHandler.Stats).Methods("GET")
	api.HandleFunc("/leaderboard", gamificationHandler.Leaderboard).Methods("GET")

	optional := api.PathPrefix("").Subrouter()
	optional.Use(middleware.OptionalAuth(authService))
	optional.HandleFunc("/auth/validate", authHandler.Validate).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireAuth(authService))
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	protected.HandleFunc("/submit", problemHandler.Submit).Methods("POST")
	protected.HandleFunc("/daily-challenge", dailyHandler.Get).Methods("GET")
	protected.HandleFunc("/daily-challenge/submit", dailyHandler.Submit).Methods("POST")
	protected.HandleFunc("/daily-challenge/stats", dailyHandler.Stats).Methods("GET")
	protected.HandleFunc("/avatars", gamificationHandler.ListAvatars).Methods("GET")
	protected.HandleFunc("/avatars/select", gamificationHandler.SelectAvatar).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(spaHandler{dir: cfg.StaticDir}).Methods("GET", "HEAD")
		log.WithField("dir", cfg.StaticDir).Info("Serving frontend")
	}

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := jobs.NewScheduler(authService, cfg.SessionCleanupSchedule)
	if err := scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}

	go func() {
		log.Infof("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("Received %s, shutting down", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	cancel()
	scheduler.Stop()
	log.Info("Server stopped")
}

func setupLogger() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}
