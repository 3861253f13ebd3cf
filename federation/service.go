package federation

import (
	"context"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/lmaotrigine/indieauth/internal/utils"
	"github.com/lmaotrigine/indieauth/oauth2"
	"github.com/lmaotrigine/indieauth/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// UserFetcher resolves a provider access token to its user.
type UserFetcher interface {
	User(ctx context.Context, accessToken string) (*User, error)
}

// Minter issues gateway tokens.
type Minter interface {
	Mint(ctx context.Context, sub, aud string) (string, *token.Token, error)
}

// Refresher trades a provider refresh token for a new grant.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error)
}

// Service turns a completed provider login into a gateway token for the
// allowed users only.
type Service struct {
	users     UserFetcher
	repo      Repo
	minter    Minter
	refresher Refresher
	audience  string
	allowed   map[int64]struct{}
	newID     func() string
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithIDGenerator replaces the ULID record id generator (primarily for testing)
func WithIDGenerator(f func() string) ServiceOption {
	return func(s *Service) {
		s.newID = f
	}
}

// NewService creates a Service minting tokens for audience. Only provider
// users listed in allowed may log in.
func NewService(users UserFetcher, repo Repo, minter Minter, refresher Refresher, audience string, allowed []int64, options ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("[NewService] user fetcher is required")
	}
	if repo == nil {
		return nil, errors.New("[NewService] identity repo is required")
	}
	if minter == nil {
		return nil, errors.New("[NewService] minter is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewService] refresher is required")
	}

	s := &Service{
		users:     users,
		repo:      repo,
		minter:    minter,
		refresher: refresher,
		audience:  audience,
		allowed:   make(map[int64]struct{}, len(allowed)),
		newID:     utils.NewULID,
	}
	for _, id := range allowed {
		s.allowed[id] = struct{}{}
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Complete looks up the provider user, records the grant and mints a token
// with the user's name as subject.
func (s *Service) Complete(ctx context.Context, grant *oauth2.TokenResponse) (string, error) {
	user, err := s.users.User(ctx, grant.AccessToken)
	if err != nil {
		return "", err
	}
	if _, ok := s.allowed[user.ID]; !ok {
		log.Ctx(ctx).Warn().Int64("user_id", user.ID).Msg("federated login from user outside the allow list")
		return "", apperrors.ErrUserNotAllowed
	}
	if user.Name == "" {
		return "", errors.Wrap(apperrors.ErrMissingClaim, "[Service.Complete] provider user has no name")
	}

	identity := &Identity{
		ID:           s.newID(),
		UserID:       user.ID,
		AccessToken:  grant.AccessToken,
		RefreshToken: utils.Value(grant.RefreshToken),
	}
	if err := s.repo.Insert(ctx, identity); err != nil {
		return "", errors.Wrap(err, "[Service.Complete] failed to store federated identity")
	}

	raw, _, err := s.minter.Mint(ctx, user.Name, s.audience)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Complete] failed to mint token")
	}
	log.Ctx(ctx).Info().Str("identity", identity.ID).Str("sub", user.Name).Msg("federated login completed")
	return raw, nil
}

// Refresh exchanges the stored refresh token of identity id and saves the new grant.
func (s *Service) Refresh(ctx context.Context, id string) (*Identity, error) {
	identity, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] failed to load federated identity")
	}
	if identity.RefreshToken == "" {
		return nil, &apperrors.ProviderError{Message: "identity has no refresh token"}
	}

	grant, err := s.refresher.Refresh(ctx, identity.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] refresh exchange failed")
	}

	identity.AccessToken = grant.AccessToken
	if grant.RefreshToken != nil {
		identity.RefreshToken = *grant.RefreshToken
	}
	if err := s.repo.UpdateTokens(ctx, identity.ID, identity.AccessToken, identity.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] failed to store refreshed tokens")
	}
	return identity, nil
}
