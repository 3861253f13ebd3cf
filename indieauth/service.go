package indieauth

import (
	"context"
	"net/url"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/lmaotrigine/indieauth/internal/utils"
	"github.com/lmaotrigine/indieauth/pkce"
	"github.com/pkg/errors"
)

// AuthRequest holds the query of GET /auth.
type AuthRequest struct {
	Me                  string
	ClientID            string
	RedirectURI         string
	State               string
	ResponseType        string
	CodeChallenge       string
	CodeChallengeMethod string
}

// Approval is what the identity owner is shown before approving a grant.
type Approval struct {
	ClientID string `json:"client_id"`
	Me       string `json:"me"`
	Code     string `json:"code"`
}

// ExchangeRequest holds the parameters of POST /auth.
type ExchangeRequest struct {
	ClientID     string
	RedirectURI  string
	Code         string
	CodeVerifier string
}

// Me is the identity assertion returned from a successful exchange.
type Me struct {
	Me          string  `json:"me"`
	AccessToken *string `json:"access_token,omitempty"`
	Scope       *string `json:"scope,omitempty"`
}

// Service runs the three steps of the IndieAuth authorization-code flow.
type Service struct {
	codes   CodeRepo
	me      string
	newCode func() string
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithCodeGenerator replaces the ULID code generator (primarily for testing)
func WithCodeGenerator(f func() string) ServiceOption {
	return func(s *Service) {
		s.newCode = f
	}
}

// NewService creates the flow controller for the single identity me.
func NewService(codes CodeRepo, me string, options ...ServiceOption) (*Service, error) {
	if codes == nil {
		return nil, errors.New("[NewService] codes repo is required")
	}
	if me == "" {
		return nil, errors.New("[NewService] identity URL is required")
	}

	s := &Service{
		codes:   codes,
		me:      me,
		newCode: utils.NewULID,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Me returns the canonical identity this service speaks for.
func (s *Service) Me() string {
	return s.me
}

// Issue validates an authorization request and stores a new, unapproved code.
func (s *Service) Issue(ctx context.Context, req AuthRequest) (*Approval, error) {
	switch req.ResponseType {
	case ResponseTypeCode, ResponseTypeID:
	default:
		return nil, &apperrors.ResponseTypeError{ResponseType: req.ResponseType}
	}
	// Unknown identities look exactly like unknown codes.
	if req.Me != s.me {
		return nil, apperrors.ErrNotFound
	}
	if req.CodeChallengeMethod != pkce.MethodS256 {
		return nil, &apperrors.ChallengeMethodError{Method: req.CodeChallengeMethod}
	}

	code := &AuthorizationCode{
		Code:          s.newCode(),
		ClientID:      req.ClientID,
		RedirectURI:   req.RedirectURI,
		State:         req.State,
		ResponseType:  req.ResponseType,
		CodeChallenge: req.CodeChallenge,
		Authorized:    false,
	}
	if err := s.codes.Insert(ctx, code); err != nil {
		return nil, errors.Wrap(err, "[Service.Issue] failed to store code")
	}

	return &Approval{
		ClientID: code.ClientID,
		Me:       req.Me,
		Code:     code.Code,
	}, nil
}

// Authorize marks code as approved by the owner and returns the client
// redirect carrying code and state.
func (s *Service) Authorize(ctx context.Context, code string) (string, error) {
	stored, err := s.codes.Authorize(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Authorize] failed to authorize code")
	}
	if stored.Code != code {
		return "", apperrors.ErrNotFound
	}

	redirect, err := appendCodeAndState(stored.RedirectURI, stored.Code, stored.State)
	if err != nil {
		return "", apperrors.ErrNotFound
	}
	return redirect, nil
}

// Exchange trades an approved code and its PKCE verifier for the identity.
// The code is gone after the first success.
func (s *Service) Exchange(ctx context.Context, req ExchangeRequest) (*Me, error) {
	_, err := s.codes.ConsumeAuthorized(ctx, req.Code, pkce.Challenge(req.CodeVerifier))
	if err == nil {
		return &Me{Me: s.me}, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.Exchange] failed to consume code")
	}

	// Nothing was deleted, work out which rejection applies.
	stored, err := s.codes.Get(ctx, req.Code)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[Service.Exchange] failed to load code")
	}
	if !stored.Authorized {
		return nil, apperrors.ErrNotFound
	}
	if !pkce.Verify(req.CodeVerifier, stored.CodeChallenge) {
		return nil, &apperrors.InvalidCodeVerifierError{Verifier: req.CodeVerifier}
	}
	return nil, apperrors.ErrNotFound
}

func appendCodeAndState(redirectURI, code, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() {
		return "", errors.Errorf("redirect uri %q is not absolute", redirectURI)
	}

	params := url.Values{}
	params.Set("code", code)
	params.Set("state", state)
	if u.RawQuery == "" {
		u.RawQuery = params.Encode()
	} else {
		u.RawQuery += "&" + params.Encode()
	}
	return u.String(), nil
}
