package cookies

import (
	"crypto/sha256"
	"io"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	hashKeyInfo  = "indieauth cookie hash key"
	blockKeyInfo = "indieauth cookie block key"

	// MinSecretLength is the shortest master secret accepted by NewJar.
	MinSecretLength = 32
)

// Jar reads and writes private cookies: values are encrypted with AES and
// authenticated with HMAC-SHA256, so clients can neither read nor forge them.
type Jar struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewJar derives the cookie keys from secret with HKDF. secure controls the
// Secure attribute on every cookie written.
func NewJar(secret []byte, secure bool) (*Jar, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.Errorf("[NewJar] cookie secret must be at least %d bytes", MinSecretLength)
	}

	hashKey, err := deriveKey(secret, hashKeyInfo, 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, blockKeyInfo, 32)
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	// Lifetimes are enforced by the cookie attributes.
	codec.MaxAge(0)
	return &Jar{
		codec:  codec,
		secure: secure,
	}, nil
}

func deriveKey(secret []byte, info string, length int) ([]byte, error) {
	key := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, errors.Wrap(err, "[NewJar] failed to derive cookie key")
	}
	return key, nil
}

// SetPrivate encrypts cookie.Value and writes the cookie. HttpOnly is always
// set, Secure follows the jar and SameSite defaults to Lax.
func (j *Jar) SetPrivate(w http.ResponseWriter, cookie *http.Cookie) error {
	encoded, err := j.codec.Encode(cookie.Name, cookie.Value)
	if err != nil {
		return errors.Wrapf(err, "[Jar.SetPrivate] failed to encode cookie %q", cookie.Name)
	}

	c := *cookie
	c.Value = encoded
	c.HttpOnly = true
	c.Secure = j.secure
	if c.SameSite == http.SameSiteDefaultMode {
		c.SameSite = http.SameSiteLaxMode
	}
	if c.Path == "" {
		c.Path = "/"
	}
	http.SetCookie(w, &c)
	return nil
}

// GetPrivate returns the decrypted value of the named cookie. Missing,
// tampered and foreign cookies all report false.
func (j *Jar) GetPrivate(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	var value string
	if err := j.codec.Decode(name, cookie.Value, &value); err != nil {
		return "", false
	}
	return value, true
}

// Remove expires the named cookie on the client.
func (j *Jar) Remove(w http.ResponseWriter, name, path string) {
	if path == "" {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
