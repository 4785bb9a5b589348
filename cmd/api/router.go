package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/postboard/internal/auth"
	"github.com/crucial707/postboard/internal/cache"
	"github.com/crucial707/postboard/internal/clock"
	"github.com/crucial707/postboard/internal/config"
	"github.com/crucial707/postboard/internal/handlers"
	"github.com/crucial707/postboard/internal/middleware"
	"github.com/crucial707/postboard/internal/models"
	"github.com/crucial707/postboard/internal/posts"
	"github.com/crucial707/postboard/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires repositories, services and handlers onto a chi router.
// store backs the post list cache; clk drives token expiry.
func newRouter(db *sql.DB, cfg config.Config, store cache.Store, clk clock.Clock) (http.Handler, error) {
	tokens, err := auth.NewTokenService(
		[]byte(cfg.JWTSecret),
		cfg.JWTAlgorithm,
		time.Duration(cfg.TokenExpireMinutes)*time.Minute,
		clk,
	)
	if err != nil {
		return nil, err
	}

	userRepo := repo.NewUserRepo(db)
	postRepo := repo.NewPostRepo(db)

	listCache := cache.NewReadThrough[[]models.Post]("posts", store, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	guard := posts.NewGuard(postRepo, listCache, cfg.PostMaxLength)
	resolver := auth.NewResolver(tokens, userRepo)

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Tokens: tokens}
	postHandler := &handlers.PostHandler{Guard: guard}
	userHandler := &handlers.UserHandler{Repo: userRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"postboard API"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public, rate limited per client IP
	limiter := middleware.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(resolver))

		r.Get("/posts", postHandler.ListPosts)
		r.Post("/posts", postHandler.CreatePost)
		r.Delete("/posts/{id}", postHandler.DeletePost)

		r.Get("/users", userHandler.ListUsers)
		r.Get("/users/{id}", userHandler.GetUser)
	})

	return r, nil
}
