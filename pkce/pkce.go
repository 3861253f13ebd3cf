// Package pkce generates and checks Proof Key for Code Exchange verifier/challenge pairs.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	// MethodS256 is the only supported challenge method.
	MethodS256 = "S256"

	MinVerifierLength     = 43
	MaxVerifierLength     = 128
	DefaultVerifierLength = MaxVerifierLength

	verifierChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-.~_"
)

// Generate returns a fresh (verifier, challenge) pair.
func Generate() (verifier, challenge string) {
	verifier = NewVerifier(DefaultVerifierLength)
	return verifier, Challenge(verifier)
}

// NewVerifier returns a random verifier of the given length. It panics when
// length lies outside [43, 128].
func NewVerifier(length int) string {
	if length < MinVerifierLength || length > MaxVerifierLength {
		panic(fmt.Sprintf("code verifier length must be between %d and %d characters, got %d",
			MinVerifierLength, MaxVerifierLength, length))
	}

	max := big.NewInt(int64(len(verifierChars)))
	ret := make([]byte, length)
	for i := range ret {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("pkce: crypto/rand failed: " + err.Error())
		}
		ret[i] = verifierChars[num.Int64()]
	}
	return string(ret)
}

// Challenge computes base64url(SHA-256(verifier)) without padding.
func Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// Verify reports whether verifier hashes to challenge.
func Verify(verifier, challenge string) bool {
	return subtle.ConstantTimeCompare([]byte(Challenge(verifier)), []byte(challenge)) == 1
}
