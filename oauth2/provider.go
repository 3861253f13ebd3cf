package oauth2

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// stateBytes is the amount of randomness in a CSRF state (1024 bits).
const stateBytes = 128

// Exchanger builds authorization URLs and performs token exchanges. *Adapter
// is the production implementation.
type Exchanger interface {
	AuthorizationURL(cfg ProviderConfig, state string, scopes []string, extras []Param) (string, error)
	Exchange(ctx context.Context, cfg ProviderConfig, req TokenRequest) (*TokenResponse, error)
}

// CookieJar stores private (encrypted and authenticated) cookies.
type CookieJar interface {
	SetPrivate(w http.ResponseWriter, cookie *http.Cookie) error
	GetPrivate(r *http.Request, name string) (string, bool)
	Remove(w http.ResponseWriter, name, path string)
}

// Provider runs the redirect and callback legs of the authorization code flow
// against one named upstream provider.
type Provider struct {
	config    ProviderConfig
	exchanger Exchanger
	cookies   CookieJar
	newState  func() (string, error)
}

// ProviderOption defines a function type to modify the Provider instance.
type ProviderOption func(*Provider)

// WithStateGenerator replaces the CSRF state generator (primarily for testing)
func WithStateGenerator(f func() (string, error)) ProviderOption {
	return func(p *Provider) {
		p.newState = f
	}
}

// NewProvider binds cfg to an exchanger and cookie jar.
func NewProvider(cfg ProviderConfig, exchanger Exchanger, cookies CookieJar, options ...ProviderOption) (*Provider, error) {
	if cfg.Name == "" {
		return nil, errors.New("[NewProvider] provider name is required")
	}
	if exchanger == nil {
		return nil, errors.New("[NewProvider] exchanger is required")
	}
	if cookies == nil {
		return nil, errors.New("[NewProvider] cookie jar is required")
	}

	p := &Provider{
		config:    cfg,
		exchanger: exchanger,
		cookies:   cookies,
		newState:  GenerateState,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Name is the provider name used in routes and cookie names.
func (p *Provider) Name() string {
	return p.config.Name
}

// StateCookieName is the cookie holding the pending CSRF state for this provider.
func (p *Provider) StateCookieName() string {
	return "oauth2_state_" + p.config.Name
}

// Redirect stores a fresh CSRF state in a private cookie and sends the user
// agent to the provider with a 303.
func (p *Provider) Redirect(w http.ResponseWriter, r *http.Request, scopes []string, extras ...Param) error {
	state, err := p.newState()
	if err != nil {
		return errors.Wrap(err, "[Provider.Redirect] failed to generate state")
	}

	target, err := p.exchanger.AuthorizationURL(p.config, state, scopes, extras)
	if err != nil {
		return err
	}

	if err := p.cookies.SetPrivate(w, &http.Cookie{
		Name:     p.StateCookieName(),
		Value:    state,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}); err != nil {
		return errors.Wrap(err, "[Provider.Redirect] failed to set state cookie")
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
	return nil
}

// Callback checks the state returned by the provider against the cookie set
// by Redirect and exchanges the code. The exchanger is never called unless
// the state matches. The state cookie is single use.
func (p *Provider) Callback(w http.ResponseWriter, r *http.Request) (*TokenResponse, error) {
	query := r.URL.Query()
	code, state := query.Get("code"), query.Get("state")
	if code == "" || state == "" {
		return nil, &apperrors.ProviderError{Message: "missing code or state in callback query"}
	}

	stored, ok := p.cookies.GetPrivate(r, p.StateCookieName())
	if !ok {
		log.Ctx(r.Context()).Error().Str("provider", p.config.Name).
			Msg("the OAuth2 state cookie was missing, it may have been blocked by the client")
		return nil, &apperrors.ProviderError{Message: "The OAuth2 state returned from the server did not match the stored state"}
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(state)) != 1 {
		log.Ctx(r.Context()).Warn().Str("provider", p.config.Name).
			Msg("the OAuth2 state returned from the server did not match the stored state")
		return nil, &apperrors.ProviderError{Message: "The OAuth2 state returned from the server did not match the stored state"}
	}
	p.cookies.Remove(w, p.StateCookieName(), "/")

	token, err := p.exchanger.Exchange(r.Context(), p.config, AuthorizationCode(code))
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("provider", p.config.Name).Msg("OAuth2 token exchange failed")
		var status *apperrors.ExchangeStatusError
		if apperrors.As(err, &status) || apperrors.Is(err, apperrors.ErrExchangeFailure) {
			return nil, err
		}
		return nil, &apperrors.ProviderError{Message: "token exchange failed"}
	}

	if token.Scope == nil {
		if scope := query.Get("scope"); scope != "" {
			token.Scope = &scope
		}
	}
	return token, nil
}

// Refresh trades a stored refresh token for a new token response.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return p.exchanger.Exchange(ctx, p.config, RefreshToken(refreshToken))
}

// GenerateState returns 128 random bytes encoded as unpadded base64url.
func GenerateState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate random data")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
