package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Henjin888/hejin-music-platform/internal/config"
	authsvc "github.com/Henjin888/hejin-music-platform/internal/services/auth"
	modsvc "github.com/Henjin888/hejin-music-platform/internal/services/moderation"
	musicsvc "github.com/Henjin888/hejin-music-platform/internal/services/music"
	ratesvc "github.com/Henjin888/hejin-music-platform/internal/services/rate"
	userssvc "github.com/Henjin888/hejin-music-platform/internal/services/users"
	"github.com/Henjin888/hejin-music-platform/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	UserService       *userssvc.Service
	MusicService      *musicsvc.Service
	ModerationService *modsvc.Service
	RateLimiter       *ratesvc.Limiter
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.UserService, deps.AuthService)
	musicHandler := handlers.NewMusicHandler(deps.MusicService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService, deps.RateLimiter, deps.Logger)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	optionalAuthMW := OptionalAuthMiddleware(deps.AuthService)
	uploaderRoleMW := RequireRole("creator", "admin")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.With(authMW).Get("/users/me", authHandler.Me)

	r.Route("/music", func(r chi.Router) {
		r.Get("/", musicHandler.List)
		r.With(optionalAuthMW).Get("/{id}", musicHandler.Detail)
		r.With(authMW, uploaderRoleMW).Post("/", musicHandler.Upload)
	})

	r.With(authMW).Post("/reports", moderationHandler.SubmitReport)

	// Admin endpoints: the moderation service re-checks the admin role
	// itself, the route middleware only fails fast.
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, RequireRole("admin"))
		r.Get("/reports", moderationHandler.ListReports)
		r.Post("/reports/{id}/process", moderationHandler.ProcessReport)
		r.Post("/blacklist", moderationHandler.AddToBlacklist)
		r.Get("/blacklist", moderationHandler.ListBlacklist)
		r.Post("/music/{id}/audit", moderationHandler.AuditMusic)
		r.Post("/filters", moderationHandler.AddContentFilter)
	})
}
