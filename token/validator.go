package token

import (
	"encoding/json"
	"time"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/pkg/errors"
)

// Validator checks tokens against the public key only. It never touches storage.
type Validator struct {
	signer  *Signer
	nowTime func() time.Time
}

// NewValidator creates a Validator for keyPair.
func NewValidator(keyPair *KeyPair) *Validator {
	return &Validator{
		signer:  NewSigner(keyPair),
		nowTime: time.Now,
	}
}

// Validate verifies raw and decodes its payload.
func (v *Validator) Validate(raw string) (*Token, error) {
	message, _, err := v.signer.Verify(raw)
	if err != nil {
		return nil, err
	}

	var tok Token
	if err := json.Unmarshal(message, &tok); err != nil {
		return nil, errors.Wrap(apperrors.ErrTokenValidation, "token payload is not a claim set")
	}
	if tok.Jti == "" || tok.Sub == "" {
		return nil, errors.Wrap(apperrors.ErrTokenValidation, "token payload is missing jti or sub")
	}

	var times struct {
		Exp string `json:"exp"`
		Nbf string `json:"nbf"`
	}
	_ = json.Unmarshal(message, &times)
	now := v.nowTime()
	if times.Exp != "" {
		exp, err := time.Parse(time.RFC3339, times.Exp)
		if err != nil || !now.Before(exp) {
			return nil, errors.Wrap(apperrors.ErrTokenValidation, "token has expired")
		}
	}
	if times.Nbf != "" {
		nbf, err := time.Parse(time.RFC3339, times.Nbf)
		if err != nil || now.Before(nbf) {
			return nil, errors.Wrap(apperrors.ErrTokenValidation, "token is not valid yet")
		}
	}
	return &tok, nil
}
