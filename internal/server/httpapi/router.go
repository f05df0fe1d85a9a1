// Package httpapi exposes the session manager and the OAuth broker over
// HTTP: JSON bodies, {message} errors and the refresh token cookie.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/verixa/internal/logging"
	"github.com/dmitrijs2005/verixa/internal/server/metrics"
	"github.com/dmitrijs2005/verixa/internal/server/models"
	"github.com/dmitrijs2005/verixa/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// UserService is the session manager as seen by the handlers.
type UserService interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ResendVerification(ctx context.Context, email string) error
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	RefreshTTL() time.Duration
}

// OAuthBroker runs the federation flow.
type OAuthBroker interface {
	Redirect(provider string) (string, error)
	Callback(ctx context.Context, provider, code string) (*services.TokenPair, error)
}

// RouterDeps collects what NewRouter needs. Metrics and Gatherer are
// optional; without a Gatherer /metrics is not mounted.
type RouterDeps struct {
	Users        UserService
	Broker       OAuthBroker
	Metrics      metrics.Recorder
	Gatherer     prometheus.Gatherer
	Logger       logging.Logger
	CookieSecure bool
}

// NewRouter returns the HTTP API:
//
//	POST /auth/register, /auth/login, /auth/logout, /auth/refresh, /auth/resend-verification
//	GET  /auth/me (Bearer access token)
//	GET  /oauth?provider=, /oauth/callback/{provider}?code=
//	GET  /healthz, /metrics
func NewRouter(deps *RouterDeps) http.Handler {
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	log := deps.Logger.With("module", "http")

	h := &Handler{
		users:        deps.Users,
		broker:       deps.Broker,
		metrics:      rec,
		log:          log,
		cookieSecure: deps.CookieSecure,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/refresh", h.Refresh)
		r.Post("/resend-verification", h.ResendVerification)

		r.With(h.requireAccessToken).Get("/me", h.Me)
	})

	r.Route("/oauth", func(r chi.Router) {
		r.Get("/", h.OAuthRedirect)
		r.Get("/callback/{provider}", h.OAuthCallback)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}
