package config

import "time"

const (
	databaseDriverEnvVar = "DATABASE_DRIVER"
	databaseURLEnvVar    = "DATABASE_URL"
	valkeyAddrEnvVar     = "VALKEY_ADDR"
	valkeyPrefixEnvVar   = "VALKEY_PREFIX"
	authCodeTTLEnvVar    = "AUTH_CODE_TTL"
)

type Storage struct{}

var _ StorageConfig = Storage{}

// GetDatabaseDriver is either "sqlite" or "postgres".
func (Storage) GetDatabaseDriver() string {
	return GetEnv(databaseDriverEnvVar, "sqlite")
}

func (Storage) GetDatabaseURL() string {
	return GetEnv(databaseURLEnvVar, "./file.db")
}

// GetValkeyAddr is empty unless codes should live in valkey instead of SQL.
func (Storage) GetValkeyAddr() string {
	return GetEnv(valkeyAddrEnvVar, "")
}

func (Storage) GetValkeyPrefix() string {
	return GetEnv(valkeyPrefixEnvVar, "indieauth")
}

func (Storage) GetAuthCodeTTL() time.Duration {
	return GetEnvDuration(authCodeTTLEnvVar, 15*time.Minute)
}
