package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/pkg/errors"
	xoauth2 "golang.org/x/oauth2"
)

// User is the part of the GitLab user resource this service reads.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// GitLab looks up the user behind a GitLab access token.
type GitLab struct {
	userURL   string
	userAgent string
	base      *http.Client
}

// NewGitLab creates a client for the given /api/v4/user endpoint.
func NewGitLab(userURL, userAgent string, timeout time.Duration) *GitLab {
	return &GitLab{
		userURL:   userURL,
		userAgent: userAgent,
		base:      &http.Client{Timeout: timeout},
	}
}

// User fetches the user owning accessToken.
func (g *GitLab) User(ctx context.Context, accessToken string) (*User, error) {
	client := xoauth2.NewClient(
		context.WithValue(ctx, xoauth2.HTTPClient, g.base),
		xoauth2.StaticTokenSource(&xoauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userURL, nil)
	if err != nil {
		return nil, &apperrors.ProviderError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &apperrors.ProviderError{Message: fmt.Sprintf("failed to get user info: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ProviderError{Message: fmt.Sprintf("GitLab API error: %s", resp.Status)}
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "[GitLab.User] failed to decode user info")
	}
	return &user, nil
}
