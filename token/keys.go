package token

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"
)

// KeyPair is the Ed25519 key material used to sign and verify tokens.
// It is built once at startup and never mutated.
type KeyPair struct {
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
}

// NewKeyPairFromHex decodes hex key material. The private half may be either
// the 32 byte seed or the 64 byte seed||public form, and must match publicHex.
func NewKeyPairFromHex(publicHex, privateHex string) (*KeyPair, error) {
	public, err := hex.DecodeString(publicHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode public key hex")
	}
	if len(public) != ed25519.PublicKeySize {
		return nil, errors.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(public))
	}

	private, err := hex.DecodeString(privateHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode private key hex")
	}

	var privateKey ed25519.PrivateKey
	switch len(private) {
	case ed25519.SeedSize:
		privateKey = ed25519.NewKeyFromSeed(private)
	case ed25519.PrivateKeySize:
		privateKey = ed25519.NewKeyFromSeed(private[:ed25519.SeedSize])
		if !bytes.Equal(privateKey, private) {
			return nil, errors.New("private key is not a valid seed||public pair")
		}
	default:
		return nil, errors.Errorf("private key must be %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(private))
	}

	derived, ok := privateKey.Public().(ed25519.PublicKey)
	if !ok || !bytes.Equal(derived, public) {
		return nil, errors.New("public key does not match private key")
	}

	return &KeyPair{
		publicKey:  derived,
		privateKey: privateKey,
	}, nil
}

// GenerateKeyPair creates a fresh random key pair.
func GenerateKeyPair() (*KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate ed25519 key")
	}
	return &KeyPair{
		publicKey:  public,
		privateKey: private,
	}, nil
}

// PublicKey returns a copy of the verification key.
func (k *KeyPair) PublicKey() ed25519.PublicKey {
	return bytes.Clone(k.publicKey)
}

// Seed returns a copy of the private seed.
func (k *KeyPair) Seed() []byte {
	return bytes.Clone(k.privateKey.Seed())
}

// PublicHex exports the public key in the format read by NewKeyPairFromHex.
func (k *KeyPair) PublicHex() string {
	return hex.EncodeToString(k.publicKey)
}

// PrivateHex exports the 64 byte private key in the format read by NewKeyPairFromHex.
func (k *KeyPair) PrivateHex() string {
	return hex.EncodeToString(k.privateKey)
}
