package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newGoogle(tokenURL, userInfoURL string) *GoogleProvider {
	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  CallbackURL("http://localhost:4000", GoogleProviderName),
		TokenURL:     tokenURL,
		UserInfoURL:  userInfoURL,
		Timeout:      time.Second,
	})
}

func TestGoogleProvider_AuthorizationURL(t *testing.T) {
	p := newGoogle("", "")

	raw := p.AuthorizationURL("")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "/o/oauth2/auth", u.Path)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:4000/oauth/callback/google", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))

	withState, _ := url.Parse(p.AuthorizationURL("xyz"))
	assert.Equal(t, "xyz", withState.Query().Get("state"))
}

func TestGoogleProvider_ExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "http://localhost:4000/oauth/callback/google", r.PostForm.Get("redirect_uri"))
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "provider-token", "token_type": "Bearer", "expires_in": 3600})
	}))
	defer srv.Close()

	tok, err := newGoogle(srv.URL, "").ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "provider-token", tok)
}

func TestGoogleProvider_ExchangeCode_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "no access token in response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"token_type": "Bearer"})
			},
			want: common.ErrTokenExchangeFailed,
		},
		{
			name: "code rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
			},
			want: common.ErrTokenExchangeFailed,
		},
		{
			name: "provider error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: common.ErrUpstreamFailure,
		},
		{
			name: "slow provider",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(1500 * time.Millisecond)
				writeJSON(w, http.StatusOK, map[string]any{"access_token": "late"})
			},
			want: common.ErrUpstreamFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newGoogle(srv.URL, "").ExchangeCode(context.Background(), "c")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGoogleProvider_ExchangeCode_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newGoogle(addr, "").ExchangeCode(context.Background(), "c")
	assert.ErrorIs(t, err, common.ErrUpstreamFailure)
}

func TestGoogleProvider_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "1234567890", "email": "user@gmail.com", "verified_email": true})
	}))
	defer srv.Close()

	p := newGoogle("", srv.URL)

	profile, err := p.FetchProfile(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, &Profile{ID: "1234567890", Email: "user@gmail.com"}, profile)

	_, err = p.FetchProfile(context.Background(), "wrong-token")
	assert.ErrorIs(t, err, common.ErrUpstreamFailure)
}

func TestGoogleProvider_FetchProfile_BadDocuments(t *testing.T) {
	bodies := map[string]string{
		"malformed json": "{not json",
		"missing id":     `{"email":"user@gmail.com"}`,
		"missing email":  `{"id":"1"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newGoogle("", srv.URL).FetchProfile(context.Background(), "t")
			assert.ErrorIs(t, err, common.ErrUpstreamFailure)
		})
	}
}

func TestRegistry(t *testing.T) {
	g := newGoogle("", "")
	r := NewRegistry(g)

	got, err := r.Get("google")
	require.NoError(t, err)
	assert.Same(t, g, got)

	got, err = r.Get("Google")
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = r.Get("github")
	assert.ErrorIs(t, err, common.ErrUnsupportedProvider)

	assert.Equal(t, []string{"google"}, r.Names())
}

func TestCallbackURL(t *testing.T) {
	assert.Equal(t, "http://localhost:4000/oauth/callback/google", CallbackURL("http://localhost:4000/", "google"))
	assert.Equal(t, "https://a.example/oauth/callback/google", CallbackURL("https://a.example", "google"))
}
