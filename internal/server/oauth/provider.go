// Package oauth implements the OAuth2 authorization-code federation flow:
// a registry of identity providers and a broker that turns a provider
// callback into a local session.
package oauth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/verixa/internal/common"
)

// Profile is the subset of the provider's user info needed to resolve a
// local account.
type Profile struct {
	ID    string
	Email string
}

// Provider is one OAuth2 identity provider.
type Provider interface {
	Name() string
	// AuthorizationURL returns the provider consent URL. An empty state is
	// omitted from the URL.
	AuthorizationURL(state string) string
	// ExchangeCode trades an authorization code for a provider access token.
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// Registry maps provider names to providers.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any provider with the same name.
func (r *Registry) Register(p Provider) {
	r.providers[strings.ToLower(p.Name())] = p
}

// Get returns the named provider or common.ErrUnsupportedProvider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedProvider, name)
	}
	return p, nil
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CallbackURL is the redirect URI registered with a provider:
// {baseURL}/oauth/callback/{provider}.
func CallbackURL(baseURL, provider string) string {
	return strings.TrimRight(baseURL, "/") + "/oauth/callback/" + provider
}
