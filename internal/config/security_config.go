package config

import "time"

const (
	cookieSecretEnvVar       = "COOKIE_SECRET"
	cookieSecureEnvVar       = "COOKIE_SECURE"
	revocationCacheTTLEnvVar = "REVOCATION_CACHE_TTL"
)

type Security struct{}

var _ SecurityConfig = Security{}

// GetCookieSecret returns the hex encoded cookie master key. When empty the
// cookie keys are derived from the token signing key.
func (Security) GetCookieSecret() string {
	return GetEnv(cookieSecretEnvVar, "")
}

func (Security) GetCookieSecure() bool {
	return GetEnvBool(cookieSecureEnvVar, EnvVars{}.GetEnv() != DevEnv)
}

func (Security) GetRevocationCacheTTL() time.Duration {
	return GetEnvDuration(revocationCacheTTLEnvVar, time.Minute)
}
