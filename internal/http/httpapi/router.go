// Package httpapi wires the handlers onto the chi router.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"server/internal/auth"
	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Options carries the cross-cutting pieces the router needs beyond the
// handler container itself.
type Options struct {
	Tokens          *auth.JWTManager
	CORSOrigins     []string
	RateLimitPerMin int
	Registry        *prometheus.Registry
}

// NewRouter builds the full route table.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.CORSOrigins),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	if opts.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/signup", app.Signup)
		r.Post("/login", app.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.Tokens))

		r.Get("/v1/me", app.Me)
		r.Get("/v1/coupons", app.MyCoupons)
		r.Get("/v1/leaderboard", app.Leaderboard)
		r.Post("/v1/checkin", app.CheckIn)

		r.Route("/v1/scan", func(r chi.Router) {
			r.Post("/start", app.ScanStart)
			r.Post("/{id}/submit", app.ScanSubmit)
			r.Post("/{id}/cancel", app.ScanCancel)
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/users", app.AdminListUsers)
			r.Get("/stats", app.AdminStats)
			r.Post("/users/{id}/checkin", app.AdminCheckIn)
			r.Post("/users/{id}/coupons/{couponID}/redeem", app.AdminRedeemCoupon)
		})
	})

	return r
}
