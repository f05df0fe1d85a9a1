package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/dmitrijs2005/verixa/internal/logging"
	"github.com/dmitrijs2005/verixa/internal/server/metrics"
	"github.com/go-chi/chi/v5"
)

// Handler holds the HTTP handlers of the API.
type Handler struct {
	users        UserService
	broker       OAuthBroker
	metrics      metrics.Recorder
	log          logging.Logger
	cookieSecure bool
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type meResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	IsVerified    bool    `json:"isVerified"`
	OAuthProvider *string `json:"oauthProvider"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, "register", http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.users.Register(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.metrics.RecordOperation("register", metrics.OutcomeSuccess)
		writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered", UserID: id})
	case errors.Is(err, common.ErrorValidation):
		h.fail(w, "register", http.StatusBadRequest, "A valid email and a non-empty password are required")
	case errors.Is(err, common.ErrorAlreadyExists):
		h.fail(w, "register", http.StatusConflict, "User already exists")
	default:
		h.internal(w, r, "register", err)
	}
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, "login", http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.metrics.RecordOperation("login", metrics.OutcomeSuccess)
		h.setRefreshCookie(w, pair.RefreshToken, h.users.RefreshTTL())
		writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
	case errors.Is(err, common.ErrorUnauthorized):
		h.fail(w, "login", http.StatusUnauthorized, "Invalid credentials")
	default:
		h.internal(w, r, "login", err)
	}
}

// Logout handles POST /auth/logout. The refresh token comes from the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.users.Logout(r.Context(), refreshTokenFromCookie(r))
	switch {
	case err == nil:
		h.metrics.RecordOperation("logout", metrics.OutcomeSuccess)
		h.clearRefreshCookie(w)
		writeMessage(w, http.StatusOK, "Logged out successfully")
	case errors.Is(err, common.ErrMissingToken):
		h.fail(w, "logout", http.StatusBadRequest, "No refresh token found")
	default:
		h.log.Warn(r.Context(), "logout failed", "error", err)
		h.fail(w, "logout", http.StatusInternalServerError, "Error logging out")
	}
}

// Refresh handles POST /auth/refresh. The refresh token comes from the cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	access, err := h.users.Refresh(r.Context(), refreshTokenFromCookie(r))
	switch {
	case err == nil:
		h.metrics.RecordOperation("refresh", metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: access})
	case errors.Is(err, common.ErrMissingToken):
		h.fail(w, "refresh", http.StatusUnauthorized, "No refresh token")
	case errors.Is(err, common.ErrRefreshTokenMismatch):
		h.fail(w, "refresh", http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		h.fail(w, "refresh", http.StatusForbidden, "Invalid token")
	default:
		h.internal(w, r, "refresh", err)
	}
}

// ResendVerification handles POST /auth/resend-verification.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, "resend_verification", http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.users.ResendVerification(r.Context(), req.Email)
	switch {
	case err == nil:
		h.metrics.RecordOperation("resend_verification", metrics.OutcomeSuccess)
		writeMessage(w, http.StatusOK, "Verification email resent")
	case errors.Is(err, common.ErrorNotFound):
		h.fail(w, "resend_verification", http.StatusNotFound, "User not found")
	case errors.Is(err, common.ErrAlreadyVerified):
		h.fail(w, "resend_verification", http.StatusBadRequest, "User is already verified")
	default:
		h.internal(w, r, "resend_verification", err)
	}
}

// Me handles GET /auth/me behind requireAccessToken.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		ID:            u.ID,
		Email:         u.Email,
		IsVerified:    u.IsVerified,
		OAuthProvider: u.OAuthProvider,
	})
}

// OAuthRedirect handles GET /oauth?provider=<name>.
func (h *Handler) OAuthRedirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.broker.Redirect(r.URL.Query().Get("provider"))
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedProvider) {
			h.fail(w, "oauth_redirect", http.StatusBadRequest, "Unsupported provider")
			return
		}
		h.internal(w, r, "oauth_redirect", err)
		return
	}

	h.metrics.RecordOperation("oauth_redirect", metrics.OutcomeSuccess)
	http.Redirect(w, r, target, http.StatusFound)
}

// OAuthCallback handles GET /oauth/callback/{provider}?code=<code>. A
// federated sign-in gets the same access token body and refresh cookie as a
// local login.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	pair, err := h.broker.Callback(r.Context(), provider, r.URL.Query().Get("code"))
	switch {
	case err == nil:
		h.metrics.RecordOperation("oauth_callback", metrics.OutcomeSuccess)
		h.setRefreshCookie(w, pair.RefreshToken, h.users.RefreshTTL())
		writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
	case errors.Is(err, common.ErrMissingCode):
		h.fail(w, "oauth_callback", http.StatusBadRequest, "Authorization code missing")
	case errors.Is(err, common.ErrUnsupportedProvider):
		h.fail(w, "oauth_callback", http.StatusBadRequest, "Unsupported provider")
	case errors.Is(err, common.ErrTokenExchangeFailed):
		h.fail(w, "oauth_callback", http.StatusBadRequest, "Failed to get access token")
	case errors.Is(err, common.ErrUpstreamFailure):
		h.fail(w, "oauth_callback", http.StatusBadGateway, "Identity provider unavailable")
	case errors.Is(err, common.ErrorAlreadyExists):
		h.fail(w, "oauth_callback", http.StatusConflict, "Email is already registered")
	default:
		h.internal(w, r, "oauth_callback", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, status int, msg string) {
	h.metrics.RecordOperation(op, metrics.OutcomeFailure)
	writeMessage(w, status, msg)
}

// internal logs err and answers 500 without exposing it.
func (h *Handler) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Error(r.Context(), "request failed", "operation", op, "error", err)
	h.fail(w, op, http.StatusInternalServerError, "Internal server error")
}
