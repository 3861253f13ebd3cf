package token

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/pkg/errors"
)

// v2PublicHeader prefixes every PASETO v2.public token.
const v2PublicHeader = "v2.public."

var b64 = base64.RawURLEncoding

// Signer produces and checks PASETO v2.public tokens. The Ed25519 primitive
// comes from jwt.SigningMethodEdDSA; the envelope is PASETO's.
type Signer struct {
	method    *jwt.SigningMethodEd25519
	keyPair   *KeyPair
	publicKey ed25519.PublicKey
}

// NewSigner creates a signer for the given key pair.
func NewSigner(keyPair *KeyPair) *Signer {
	return &Signer{
		method:    jwt.SigningMethodEdDSA,
		keyPair:   keyPair,
		publicKey: keyPair.PublicKey(),
	}
}

// Sign wraps message (and an optional footer) into a v2.public token.
func (s *Signer) Sign(message, footer []byte) (string, error) {
	sig, err := s.method.Sign(string(pae([]byte(v2PublicHeader), message, footer)), s.keyPair.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with ed25519")
	}

	body := make([]byte, 0, len(message)+len(sig))
	body = append(body, message...)
	body = append(body, sig...)

	token := v2PublicHeader + b64.EncodeToString(body)
	if len(footer) > 0 {
		token += "." + b64.EncodeToString(footer)
	}
	return token, nil
}

// Verify checks the envelope and signature of token and returns the signed
// message and footer.
func (s *Signer) Verify(token string) (message, footer []byte, err error) {
	if !strings.HasPrefix(token, v2PublicHeader) {
		return nil, nil, errors.Wrap(apperrors.ErrTokenValidation, "unsupported token header")
	}

	parts := strings.Split(token[len(v2PublicHeader):], ".")
	if len(parts) > 2 {
		return nil, nil, errors.Wrap(apperrors.ErrTokenValidation, "too many token segments")
	}

	body, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, nil, errors.Wrap(apperrors.ErrTokenValidation, "token body is not base64url")
	}
	if len(body) < ed25519.SignatureSize {
		return nil, nil, errors.Wrap(apperrors.ErrTokenValidation, "token body too short")
	}
	if len(parts) == 2 {
		if footer, err = b64.DecodeString(parts[1]); err != nil {
			return nil, nil, errors.Wrap(apperrors.ErrTokenValidation, "token footer is not base64url")
		}
	}

	split := len(body) - ed25519.SignatureSize
	message, sig := body[:split], body[split:]
	if err := s.method.Verify(string(pae([]byte(v2PublicHeader), message, footer)), sig, s.publicKey); err != nil {
		return nil, nil, errors.Wrap(apperrors.ErrTokenValidation, "invalid token signature")
	}
	return message, footer, nil
}

// pae is PASETO's pre-authentication encoding.
func pae(pieces ...[]byte) []byte {
	out := le64(uint64(len(pieces)))
	for _, p := range pieces {
		out = append(out, le64(uint64(len(p)))...)
		out = append(out, p...)
	}
	return out
}

func le64(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	b[7] &= 0x7f
	return b
}
