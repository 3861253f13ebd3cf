package config

const (
	pasetoPublicEnvVar  = "PASETO_PUBLIC"
	pasetoPrivateEnvVar = "PASETO_PRIVATE"
)

type Paseto struct{}

var _ PasetoConfig = Paseto{}

func (Paseto) GetPasetoPublic() string {
	return GetEnv(pasetoPublicEnvVar, "")
}

func (Paseto) GetPasetoPrivate() string {
	return GetEnv(pasetoPrivateEnvVar, "")
}
