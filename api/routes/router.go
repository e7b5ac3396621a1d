package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gearshare-backend/api/controllers"
	"github.com/angelmondragon/gearshare-backend/api/middleware"
	"github.com/angelmondragon/gearshare-backend/internal/auth"
	"github.com/angelmondragon/gearshare-backend/internal/bookings"
	"github.com/angelmondragon/gearshare-backend/internal/listings"
	"github.com/angelmondragon/gearshare-backend/pkg/auth/session"
	"github.com/angelmondragon/gearshare-backend/pkg/config"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/metrics"
)

// Dependencies are the collaborators the HTTP surface is built from.
// RateLimiter may be nil, which disables auth throttling.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Sessions    session.AccessSessionChecker
	RateLimiter middleware.RateLimitStore
	Auth        auth.Service
	Listings    listings.Service
	Bookings    bookings.Service
	Readiness   []controllers.ReadinessCheck
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	requireAuth, err := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	if err != nil {
		return nil, fmt.Errorf("auth middleware: %w", err)
	}
	loginLimit := middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), deps.RateLimiter, logg)
	registerLimit := middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), deps.RateLimiter, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, deps.Readiness...))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.With(registerLimit).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(loginLimit).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(deps.Auth, logg))
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.ServiceList(deps.Listings, logg))
			r.Get("/{id}", controllers.ServiceDetail(deps.Listings, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/owner/{userId}", controllers.ServicesByOwner(deps.Listings, logg))
				r.Post("/", controllers.ServiceCreate(deps.Listings, cfg.Media.MaxUploadBytes, logg))
				r.Put("/{id}", controllers.ServiceUpdate(deps.Listings, cfg.Media.MaxUploadBytes, logg))
				r.Delete("/{id}", controllers.ServiceDelete(deps.Listings, logg))
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", controllers.BookingCreate(deps.Bookings, logg))
			r.Get("/user/{userId}", controllers.BookingsForRenter(deps.Bookings, logg))
			r.Get("/my-services", controllers.BookingsForMyServices(deps.Bookings, logg))
			r.Get("/{id}", controllers.BookingDetail(deps.Bookings, logg))
			r.Put("/{id}/approve", controllers.BookingApprove(deps.Bookings, logg))
			r.Put("/{id}/reject", controllers.BookingReject(deps.Bookings, logg))
			r.Delete("/{id}", controllers.BookingCancel(deps.Bookings, logg))
		})
	})

	return r, nil
}
