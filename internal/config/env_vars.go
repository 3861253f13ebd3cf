package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	identityURLEnvVar = "IDENTITY_URL"
	logLevelEnvVar    = "LOG_LEVEL"

	// DefaultIdentityURL is the canonical "me" served by this gateway.
	DefaultIdentityURL = "https://5ht2.me"

	// DevEnv enables coloured route logging and insecure cookies.
	DevEnv = "DEV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "indieauth")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, DevEnv)
}

// GetIdentityURL returns the single identity this server authenticates,
// without a trailing slash.
func (EnvVars) GetIdentityURL() string {
	return strings.TrimSuffix(GetEnv(identityURLEnvVar, DefaultIdentityURL), "/")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// GetEnvSlice splits a comma separated variable, dropping blank entries.
func GetEnvSlice(envVar string, defaultValue []string) []string {
	var parts []string
	for _, part := range strings.Split(os.Getenv(envVar), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return defaultValue
	}
	return parts
}
