package token

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/lmaotrigine/indieauth/internal/utils"
	"github.com/pkg/errors"
)

// Token is the signed payload carried by every bearer token.
type Token struct {
	Jti    string   `json:"jti"`
	Sub    string   `json:"sub"`
	Aud    string   `json:"aud"`
	Iss    string   `json:"iss"`
	Iat    string   `json:"iat"`
	Scopes []string `json:"scopes"`
}

// Issuer mints tokens and records each one in the audit table.
type Issuer struct {
	signer  *Signer
	repo    Repo
	issuer  string
	newID   func() string
	nowTime func() time.Time
}

// IssuerOption defines a function type to modify the Issuer instance.
type IssuerOption func(*Issuer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowTime = nowFunc
	}
}

// WithIDGenerator replaces the ULID token id generator (primarily for testing)
func WithIDGenerator(f func() string) IssuerOption {
	return func(i *Issuer) {
		i.newID = f
	}
}

// NewIssuer creates an Issuer that signs with keyPair and stamps iss with issuer.
func NewIssuer(keyPair *KeyPair, repo Repo, issuer string, options ...IssuerOption) (*Issuer, error) {
	if keyPair == nil {
		return nil, errors.New("[NewIssuer] key pair is required")
	}
	if repo == nil {
		return nil, errors.New("[NewIssuer] token repo is required")
	}
	if issuer == "" {
		return nil, errors.New("[NewIssuer] issuer is required")
	}

	i := &Issuer{
		signer:  NewSigner(keyPair),
		repo:    repo,
		issuer:  issuer,
		newID:   utils.NewULID,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	return i, nil
}

// Mint creates a token for sub and aud. Tokens carry no expiry.
func (i *Issuer) Mint(ctx context.Context, sub, aud string) (string, *Token, error) {
	if sub == "" || aud == "" {
		return "", nil, errors.Wrap(apperrors.ErrMissingClaim, "[Issuer.Mint] refusing to mint")
	}

	tok := &Token{
		Jti: i.newID(),
		Sub: sub,
		Aud: aud,
		Iss: i.issuer,
		Iat: i.nowTime().UTC().Format(time.RFC3339),
	}

	if err := i.repo.Insert(ctx, &Record{
		ID:  tok.Jti,
		Sub: tok.Sub,
		Aud: tok.Aud,
		Iss: tok.Iss,
		Iat: tok.Iat,
	}); err != nil {
		return "", nil, errors.Wrap(err, "[Issuer.Mint] failed to record token")
	}

	claims, err := json.Marshal(struct {
		Jti string `json:"jti"`
		Sub string `json:"sub"`
		Aud string `json:"aud"`
		Iss string `json:"iss"`
		Iat string `json:"iat"`
	}{tok.Jti, tok.Sub, tok.Aud, tok.Iss, tok.Iat})
	if err != nil {
		return "", nil, errors.Wrap(apperrors.ErrTokenCreation, err.Error())
	}

	signed, err := i.signer.Sign(claims, nil)
	if err != nil {
		return "", nil, errors.Wrap(apperrors.ErrTokenCreation, err.Error())
	}
	return signed, tok, nil
}
