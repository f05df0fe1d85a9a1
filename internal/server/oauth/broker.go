package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/dmitrijs2005/verixa/internal/logging"
	"github.com/dmitrijs2005/verixa/internal/server/metrics"
	"github.com/dmitrijs2005/verixa/internal/server/models"
	"github.com/dmitrijs2005/verixa/internal/server/services"
)

// Stage is a step of one federation attempt. A failure is reported with the
// last stage reached.
type Stage string

const (
	StageRedirect         Stage = "redirect"
	StageCallbackReceived Stage = "callback_received"
	StageCodeExchanged    Stage = "code_exchanged"
	StageProfileFetched   Stage = "profile_fetched"
	StageUserResolved     Stage = "user_resolved"
	StageTokensIssued     Stage = "tokens_issued"
)

// FederatedSignIn resolves a provider identity to a local user and issues
// its tokens. Implemented by services.UserService.
type FederatedSignIn interface {
	ResolveFederated(ctx context.Context, identity models.FederatedIdentity) (*models.User, error)
	IssueTokens(ctx context.Context, userID string) (*services.TokenPair, error)
}

// Broker drives the authorization-code flow for every registered provider.
type Broker struct {
	registry *Registry
	users    FederatedSignIn
	metrics  metrics.Recorder
	log      logging.Logger
}

func NewBroker(registry *Registry, users FederatedSignIn, rec metrics.Recorder, log logging.Logger) *Broker {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Broker{registry: registry, users: users, metrics: rec, log: log.With("module", "oauth")}
}

// Redirect returns the consent URL for provider.
func (b *Broker) Redirect(provider string) (string, error) {
	p, err := b.registry.Get(provider)
	if err != nil {
		b.log.Warn(context.Background(), "oauth redirect failed", "provider", provider, "stage", string(StageRedirect), "error", err)
		return "", err
	}
	b.log.Debug(context.Background(), "oauth redirect", "provider", p.Name(), "stage", string(StageRedirect))
	return p.AuthorizationURL(""), nil
}

// Callback completes a federation attempt: exchange the code, fetch the
// profile, resolve the local user and issue an access/refresh pair.
func (b *Broker) Callback(ctx context.Context, provider, code string) (*services.TokenPair, error) {
	stage := StageCallbackReceived

	pair, err := b.callback(ctx, provider, code, &stage)
	if err != nil {
		b.log.Warn(ctx, "oauth callback failed", "provider", provider, "stage", string(stage), "error", err)
		return nil, err
	}
	return pair, nil
}

func (b *Broker) callback(ctx context.Context, provider, code string, stage *Stage) (*services.TokenPair, error) {
	if code == "" {
		return nil, common.ErrMissingCode
	}
	p, err := b.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	accessToken, err := p.ExchangeCode(ctx, code)
	b.metrics.RecordOAuthExchange(p.Name(), time.Since(started))
	if err != nil {
		return nil, err
	}
	*stage = StageCodeExchanged

	profile, err := p.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	*stage = StageProfileFetched

	user, err := b.users.ResolveFederated(ctx, models.FederatedIdentity{
		Provider:   p.Name(),
		ProviderID: profile.ID,
		Email:      profile.Email,
	})
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, errors.Join(common.ErrUpstreamFailure, err)
		}
		return nil, err
	}
	*stage = StageUserResolved

	pair, err := b.users.IssueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	*stage = StageTokensIssued

	b.log.Info(ctx, "oauth sign-in complete", "provider", p.Name(), "user_id", user.ID)
	return pair, nil
}
