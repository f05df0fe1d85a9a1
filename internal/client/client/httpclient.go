package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/dmitrijs2005/verixa/internal/netx"
)

// HTTPClient talks to the auth server's JSON API. It keeps the access token
// and the refresh token (read from the Set-Cookie header) in memory. The
// refresh cookie is sent explicitly to /auth/refresh and /auth/logout.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c *HTTPClient) Register(ctx context.Context, email string, password []byte) (string, error) {
	var out struct {
		UserID string `json:"userId"`
	}
	err := c.call(ctx, http.MethodPost, "/auth/register", credentials{Email: email, Password: string(password)}, nil, &out, http.StatusCreated)
	if err != nil {
		return "", err
	}
	return out.UserID, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) error {
	var out accessTokenResponse
	var refresh string
	err := c.call(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: string(password)},
		func(resp *http.Response) { refresh = refreshCookie(resp) }, &out, http.StatusOK)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken, c.refreshToken = out.AccessToken, refresh
	c.mu.Unlock()
	return nil
}

// Me returns the current user. An expired access token is refreshed once and
// the call retried.
func (c *HTTPClient) Me(ctx context.Context) (*User, error) {
	var u User
	err := c.call(ctx, http.MethodGet, "/auth/me", nil, nil, &u, http.StatusOK)
	if errors.Is(err, ErrUnauthorized) && c.hasRefreshToken() {
		if rerr := c.Refresh(ctx); rerr != nil {
			return nil, err
		}
		err = c.call(ctx, http.MethodGet, "/auth/me", nil, nil, &u, http.StatusOK)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Refresh(ctx context.Context) error {
	if !c.hasRefreshToken() {
		return ErrNotLoggedIn
	}
	var out accessTokenResponse
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", nil, nil, &out, http.StatusOK); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = out.AccessToken
	c.mu.Unlock()
	return nil
}

// Logout revokes the refresh token on the server and forgets both tokens.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if !c.hasRefreshToken() {
		return ErrNotLoggedIn
	}
	if err := c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, http.StatusOK); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken, c.refreshToken = "", ""
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) ResendVerification(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.call(ctx, http.MethodPost, "/auth/resend-verification", body, nil, nil, http.StatusOK)
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

func (c *HTTPClient) hasRefreshToken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken != ""
}

// call sends one request with the stored credentials attached. onOK sees the
// response before its body is decoded into out.
func (c *HTTPClient) call(ctx context.Context, method, path string, body any,
	onOK func(*http.Response), out any, want int) error {

	req, err := netx.NewJSONRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.refreshToken != "" {
		req.AddCookie(&http.Cookie{Name: common.RefreshTokenCookieName, Value: c.refreshToken})
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}

	if resp.StatusCode != want {
		return mapStatus(resp.StatusCode, netx.ErrorMessage(resp))
	}
	if onOK != nil {
		onOK(resp)
	}
	if out == nil {
		resp.Body.Close()
		return nil
	}
	return netx.DecodeJSON(resp, out)
}

func refreshCookie(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == common.RefreshTokenCookieName {
			return ck.Value
		}
	}
	return ""
}

func mapTransportError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}

func mapStatus(status int, message string) error {
	apiErr := &APIError{Status: status, Message: message}
	switch {
	case status == http.StatusUnauthorized:
		return errors.Join(ErrUnauthorized, apiErr)
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return errors.Join(ErrUnavailable, apiErr)
	default:
		return apiErr
	}
}
