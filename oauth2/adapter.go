package oauth2

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds every call to a provider's token endpoint.
const DefaultTimeout = 5 * time.Second

// Adapter talks to any OAuth2 provider described by a ProviderConfig.
type Adapter struct {
	client    *http.Client
	userAgent string
}

// AdapterOption defines a function type to modify the Adapter instance.
type AdapterOption func(*Adapter)

// WithHTTPClient replaces the adapter's HTTP client.
func WithHTTPClient(client *http.Client) AdapterOption {
	return func(a *Adapter) {
		a.client = client
	}
}

// WithUserAgent sets the User-Agent sent to providers.
func WithUserAgent(userAgent string) AdapterOption {
	return func(a *Adapter) {
		a.userAgent = userAgent
	}
}

// NewAdapter creates an Adapter whose requests time out after timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewAdapter(timeout time.Duration, options ...AdapterOption) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	a := &Adapter{
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// AuthorizationURL builds the URL the user agent is sent to. Parameters are
// appended in a fixed order: response_type, client_id, state, redirect_uri,
// scope and then the extras. Extras never override the core parameters.
func (a *Adapter) AuthorizationURL(cfg ProviderConfig, state string, scopes []string, extras []Param) (string, error) {
	u, err := url.Parse(cfg.AuthURI)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", &apperrors.InvalidURIError{URI: cfg.AuthURI}
	}

	var query []string
	if u.RawQuery != "" {
		query = append(query, u.RawQuery)
	}
	add := func(name, value string) {
		query = append(query, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}

	add("response_type", string(CodeResponseType))
	add("client_id", cfg.ClientID)
	add("state", state)
	if cfg.RedirectURI != "" {
		add("redirect_uri", cfg.RedirectURI)
	}
	if len(scopes) > 0 {
		add("scope", strings.Join(scopes, " "))
	}
	for _, extra := range extras {
		switch {
		case extra.Name == "response_type", extra.Name == "client_id", extra.Name == "state":
			continue
		case extra.Name == "redirect_uri" && cfg.RedirectURI != "":
			continue
		case extra.Name == "scope" && len(scopes) > 0:
			continue
		}
		add(extra.Name, extra.Value)
	}

	u.RawQuery = strings.Join(query, "&")
	return u.String(), nil
}

// Exchange posts req to the provider's token endpoint and decodes the JSON
// response. A non-2xx status is an ExchangeStatusError; transport failures
// are ErrExchangeFailure.
func (a *Adapter) Exchange(ctx context.Context, cfg ProviderConfig, req TokenRequest) (*TokenResponse, error) {
	var body []string
	add := func(name, value string) {
		body = append(body, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}

	switch req.Grant {
	case AuthorizationCodeGrant:
		add("grant_type", string(AuthorizationCodeGrant))
		add("code", req.Value)
		if cfg.RedirectURI != "" {
			add("redirect_uri", cfg.RedirectURI)
		}
	case RefreshTokenGrant:
		add("grant_type", string(RefreshTokenGrant))
		add("refresh_token", req.Value)
	default:
		return nil, errors.Errorf("[Adapter.Exchange] unsupported grant type %q", req.Grant)
	}
	add("client_id", cfg.ClientID)
	add("client_secret", cfg.ClientSecret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURI, strings.NewReader(strings.Join(body, "&")))
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrExchangeFailure, err.Error())
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if a.userAgent != "" {
		httpReq.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("provider", cfg.Name).Msg("token exchange request failed")
		return nil, errors.Wrap(apperrors.ErrExchangeFailure, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.ExchangeStatusError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrExchangeFailure, err.Error())
	}

	var tr TokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, errors.Wrap(err, "[Adapter.Exchange] failed to decode token response")
	}
	return &tr, nil
}
