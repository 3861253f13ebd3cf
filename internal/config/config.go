package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/lmaotrigine/indieauth/oauth2"
)

type Config interface {
	EnvConfig
	CorsConfig
	PasetoConfig
	OAuthConfig
	StorageConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetIdentityURL() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// PasetoConfig exposes the hex encoded Ed25519 signing key.
type PasetoConfig interface {
	GetPasetoPublic() string
	GetPasetoPrivate() string
}

type OAuthConfig interface {
	GetProviderNames() []string
	GetProvider(name string) (oauth2.ProviderConfig, error)
	GetOAuthHTTPTimeout() time.Duration
	GetGitLabUserURL() string
	GetGitLabAllowedUsers() []int64
	GetGitLabScopes() []string
}

type StorageConfig interface {
	GetDatabaseDriver() string
	GetDatabaseURL() string
	GetValkeyAddr() string
	GetValkeyPrefix() string
	GetAuthCodeTTL() time.Duration
}

type SecurityConfig interface {
	GetCookieSecret() string
	GetCookieSecure() bool
	GetRevocationCacheTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Paseto
	OAuth
	Storage
	Security
}

// New loads a .env file from the working directory, if there is one, and
// returns the environment backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
