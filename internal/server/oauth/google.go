package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"golang.org/x/oauth2"
)

const (
	GoogleProviderName = "google"

	defaultGoogleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultGoogleTokenURL    = "https://oauth2.googleapis.com/token"
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	defaultProviderTimeout = 5 * time.Second
	maxProfileBytes        = 1 << 20
)

// GoogleConfig configures GoogleProvider. The URL fields default to Google's
// endpoints and exist so tests can point them at httptest servers.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string

	// Timeout bounds each outbound call. Zero means 5s.
	Timeout time.Duration
}

// GoogleProvider implements Provider for Google accounts.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	client      *http.Client
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultGoogleAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultGoogleTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultGoogleUserInfoURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *GoogleProvider) Name() string { return GoogleProviderName }

func (p *GoogleProvider) AuthorizationURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// ExchangeCode posts the code to the token endpoint. A response without an
// access token, including a 4xx rejection, yields
// common.ErrTokenExchangeFailed; transport errors and 5xx responses yield
// common.ErrUpstreamFailure.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		var uerr *url.Error
		switch {
		case errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode >= http.StatusInternalServerError:
			return "", fmt.Errorf("%w: token endpoint status %d", common.ErrUpstreamFailure, rerr.Response.StatusCode)
		case errors.As(err, &uerr):
			return "", fmt.Errorf("%w: %w", common.ErrUpstreamFailure, err)
		default:
			return "", fmt.Errorf("%w: %w", common.ErrTokenExchangeFailed, err)
		}
	}
	if tok.AccessToken == "" {
		return "", common.ErrTokenExchangeFailed
	}
	return tok.AccessToken, nil
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// FetchProfile reads the v2 userinfo document. Any failure, including a
// profile without id or email, is common.ErrUpstreamFailure.
func (p *GoogleProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUpstreamFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading user info: %w", common.ErrUpstreamFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user info status %d", common.ErrUpstreamFailure, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: parsing user info: %w", common.ErrUpstreamFailure, err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: incomplete user info", common.ErrUpstreamFailure)
	}

	return &Profile{ID: info.ID, Email: info.Email}, nil
}

var _ Provider = (*GoogleProvider)(nil)
