package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/lmaotrigine/indieauth/oauth2"
	"github.com/pkg/errors"
)

const (
	providersEnvVar     = "OAUTH_PROVIDERS"
	oauthTimeoutEnvVar  = "OAUTH_HTTP_TIMEOUT"
	gitlabUserURLEnvVar = "GITLAB_USER_URL"
	gitlabAllowedEnvVar = "GITLAB_ALLOWED_USERS"
	gitlabScopesEnvVar  = "GITLAB_SCOPES"
)

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetProviderNames() []string {
	return GetEnvSlice(providersEnvVar, []string{"gitlab"})
}

// GetProvider reads OAUTH_<NAME>_{AUTH_URI,TOKEN_URI,CLIENT_ID,CLIENT_SECRET,REDIRECT_URI}.
func (OAuth) GetProvider(name string) (oauth2.ProviderConfig, error) {
	prefix := "OAUTH_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"
	cfg := oauth2.ProviderConfig{
		Name:         name,
		AuthURI:      GetEnv(prefix+"AUTH_URI", ""),
		TokenURI:     GetEnv(prefix+"TOKEN_URI", ""),
		ClientID:     GetEnv(prefix+"CLIENT_ID", ""),
		ClientSecret: GetEnv(prefix+"CLIENT_SECRET", ""),
		RedirectURI:  GetEnv(prefix+"REDIRECT_URI", ""),
	}

	var missing []string
	if cfg.AuthURI == "" {
		missing = append(missing, prefix+"AUTH_URI")
	}
	if cfg.TokenURI == "" {
		missing = append(missing, prefix+"TOKEN_URI")
	}
	if cfg.ClientID == "" {
		missing = append(missing, prefix+"CLIENT_ID")
	}
	if len(missing) > 0 {
		return oauth2.ProviderConfig{}, errors.Errorf("provider %q is missing %s", name, strings.Join(missing, ", "))
	}
	return cfg, nil
}

func (OAuth) GetOAuthHTTPTimeout() time.Duration {
	return GetEnvDuration(oauthTimeoutEnvVar, 5*time.Second)
}

func (OAuth) GetGitLabUserURL() string {
	return GetEnv(gitlabUserURLEnvVar, "https://git.5ht2.me/api/v4/user")
}

// GetGitLabAllowedUsers returns the numeric GitLab user ids allowed to log in.
// Entries that are not integers are ignored.
func (OAuth) GetGitLabAllowedUsers() []int64 {
	var ids []int64
	for _, raw := range GetEnvSlice(gitlabAllowedEnvVar, []string{"34"}) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (OAuth) GetGitLabScopes() []string {
	return GetEnvSlice(gitlabScopesEnvVar, []string{"read_user"})
}
