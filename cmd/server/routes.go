package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lohit-Behera/canva/internal/api"
	"github.com/Lohit-Behera/canva/internal/auth"
	"github.com/Lohit-Behera/canva/internal/config"
	"github.com/Lohit-Behera/canva/internal/forms"
	"github.com/Lohit-Behera/canva/internal/logging"
	"github.com/Lohit-Behera/canva/internal/metrics"
	"github.com/Lohit-Behera/canva/internal/middleware"
)

// services are the dependencies the router mounts.
type services struct {
	auth  *auth.Service
	forms *forms.Service
}

func newRouter(cfg *config.Config, svc services) http.Handler {
	cookies := auth.Cookies{Secure: cfg.CookieSecure, SameSite: cfg.CookieSameSite}
	authHandler := auth.NewHandler(svc.auth, cookies)
	formHandler := forms.NewHandler(svc.forms)

	requireAuth := middleware.RequireAuth(svc.auth, cookies)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	upload := middleware.UploadOptions{
		MaxBytes: cfg.MaxUploadBytes,
		Memory:   cfg.MediaMemory,
		Dir:      cfg.UploadDir,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.With(middleware.SingleFile("avatar", upload), middleware.ResizeImage(cfg.ImageMaxWidth)).
					Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/auth/google", authHandler.GoogleAuth)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/logout", authHandler.Logout)
				r.Get("/details", authHandler.Details)
				r.Get("/activity", authHandler.Activity)
			})
		})

		// Form routes (protected)
		r.Route("/forms", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(middleware.SingleFile("thumbnail", upload), middleware.ResizeImage(cfg.ImageMaxWidth)).
				Post("/create", formHandler.Create)
			r.Get("/get/{formId}", formHandler.Get)
			r.Get("/all", formHandler.List)
			r.Delete("/delete/{formId}", formHandler.Delete)
		})
	})

	return r
}
