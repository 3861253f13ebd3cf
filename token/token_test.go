package token_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	apperrors "github.com/lmaotrigine/indieauth/internal/errors"
	"github.com/lmaotrigine/indieauth/internal/utils"
	"github.com/lmaotrigine/indieauth/token"
	tokenfakerepo "github.com/lmaotrigine/indieauth/token/repofake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	issuer   = "indieauth/test +https://5ht2.me/.well-known/botinfo"
	audience = "https://5ht2.me"
	subject  = "lmaotrigine"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testFixture struct {
	keyPair   *token.KeyPair
	repo      *tokenfakerepo.FakeTokenRepo
	issuer    *token.Issuer
	validator *token.Validator
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	keyPair, err := token.GenerateKeyPair()
	require.NoError(t, err)

	repo := tokenfakerepo.NewFakeTokensRepo()
	iss, err := token.NewIssuer(keyPair, repo, issuer, token.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	return &testFixture{
		keyPair:   keyPair,
		repo:      repo,
		issuer:    iss,
		validator: token.NewValidator(keyPair),
	}
}

func TestKeyPairHexRoundTrip(t *testing.T) {
	keyPair, err := token.GenerateKeyPair()
	require.NoError(t, err)

	loaded, err := token.NewKeyPairFromHex(keyPair.PublicHex(), keyPair.PrivateHex())
	require.NoError(t, err)
	require.Equal(t, keyPair.PublicHex(), loaded.PublicHex())
	require.Equal(t, keyPair.PrivateHex(), loaded.PrivateHex())

	fromSeed, err := token.NewKeyPairFromHex(keyPair.PublicHex(), keyPair.PrivateHex()[:64])
	require.NoError(t, err)
	require.Equal(t, keyPair.PrivateHex(), fromSeed.PrivateHex())
}

func TestKeyPairFromHexRejections(t *testing.T) {
	a, err := token.GenerateKeyPair()
	require.NoError(t, err)
	b, err := token.GenerateKeyPair()
	require.NoError(t, err)

	tests := []struct {
		name       string
		publicHex  string
		privateHex string
	}{
		{"mismatched halves", b.PublicHex(), a.PrivateHex()},
		{"bad public hex", "zz", a.PrivateHex()},
		{"short public", a.PublicHex()[:10], a.PrivateHex()},
		{"bad private hex", a.PublicHex(), "not-hex"},
		{"short private", a.PublicHex(), a.PrivateHex()[:20]},
		{"tampered public tail", a.PublicHex(), a.PrivateHex()[:64] + b.PublicHex()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.NewKeyPairFromHex(tt.publicHex, tt.privateHex)
			require.Error(t, err)
		})
	}
}

func TestMintValidateRoundTrip(t *testing.T) {
	f := setupTestFixture(t)

	raw, minted, err := f.issuer.Mint(context.Background(), subject, audience)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, "v2.public."))

	got, err := f.validator.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, minted.Jti, got.Jti)
	require.Equal(t, subject, got.Sub)
	require.Equal(t, audience, got.Aud)
	require.Equal(t, issuer, got.Iss)
	require.Equal(t, "2024-03-01T12:00:00Z", got.Iat)
	require.Nil(t, got.Scopes)
}

func TestMintWritesAuditRecord(t *testing.T) {
	f := setupTestFixture(t)

	_, minted, err := f.issuer.Mint(context.Background(), subject, audience)
	require.NoError(t, err)

	record, err := f.repo.Get(context.Background(), minted.Jti)
	require.NoError(t, err)
	require.Equal(t, &token.Record{
		ID:  minted.Jti,
		Sub: subject,
		Aud: audience,
		Iss: issuer,
		Iat: "2024-03-01T12:00:00Z",
	}, record)
}

func TestMintRejectsEmptyClaims(t *testing.T) {
	tests := []struct {
		name string
		sub  string
		aud  string
	}{
		{"empty subject", "", audience},
		{"empty audience", subject, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)

			raw, minted, err := f.issuer.Mint(context.Background(), tt.sub, tt.aud)
			require.ErrorIs(t, err, apperrors.ErrMissingClaim)
			require.Empty(t, raw)
			require.Nil(t, minted)
			require.Zero(t, f.repo.Len(), "nothing is recorded for a refused mint")
		})
	}
}

func TestMintUniqueIDs(t *testing.T) {
	f := setupTestFixture(t)

	seen := map[string]bool{}
	for range 20 {
		_, minted, err := f.issuer.Mint(context.Background(), subject, audience)
		require.NoError(t, err)
		require.False(t, seen[minted.Jti])
		seen[minted.Jti] = true
	}
	require.Equal(t, 20, f.repo.Len())
}

func TestValidateRejections(t *testing.T) {
	f := setupTestFixture(t)
	raw, _, err := f.issuer.Mint(context.Background(), subject, audience)
	require.NoError(t, err)

	other := setupTestFixture(t)
	foreign, _, err := other.issuer.Mint(context.Background(), subject, audience)
	require.NoError(t, err)

	body := strings.TrimPrefix(raw, "v2.public.")
	decoded, err := base64.RawURLEncoding.DecodeString(body)
	require.NoError(t, err)
	decoded[0] ^= 0x01
	tampered := "v2.public." + base64.RawURLEncoding.EncodeToString(decoded)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"jwt", "eyJhbGciOiJFZERTQSJ9.e30.sig"},
		{"local purpose", strings.Replace(raw, "v2.public.", "v2.local.", 1)},
		{"v4 header", strings.Replace(raw, "v2.public.", "v4.public.", 1)},
		{"not base64", "v2.public.!!!!"},
		{"too short", "v2.public." + base64.RawURLEncoding.EncodeToString([]byte("short"))},
		{"too many segments", raw + ".Zm9v.YmFy"},
		{"tampered body", tampered},
		{"signed by another key", foreign},
		{"footer added", raw + "." + base64.RawURLEncoding.EncodeToString([]byte("kid"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.validator.Validate(tt.raw)
			require.ErrorIs(t, err, apperrors.ErrTokenValidation)
		})
	}
}

func TestValidateExpiredToken(t *testing.T) {
	f := setupTestFixture(t)
	signer := token.NewSigner(f.keyPair)

	claims, err := json.Marshal(map[string]string{
		"jti": "01HTEST", "sub": subject, "aud": audience, "iss": issuer,
		"iat": "2020-01-01T00:00:00Z", "exp": "2020-01-02T00:00:00Z",
	})
	require.NoError(t, err)
	raw, err := signer.Sign(claims, nil)
	require.NoError(t, err)

	_, err = f.validator.Validate(raw)
	require.ErrorIs(t, err, apperrors.ErrTokenValidation)
}

func TestSignerFooterRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	signer := token.NewSigner(f.keyPair)

	raw, err := signer.Sign([]byte(`{"sub":"x"}`), []byte("footer"))
	require.NoError(t, err)

	message, footer, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, `{"sub":"x"}`, string(message))
	require.Equal(t, "footer", string(footer))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		headers   []string
		cookie    string
		hasCookie bool
		want      string
		wantErr   bool
	}{
		{name: "no sources", wantErr: true},
		{name: "empty cookie", cookie: "", hasCookie: true, wantErr: true},
		{name: "cookie only", cookie: "v2.public.c", hasCookie: true, want: "v2.public.c"},
		{name: "header only", headers: []string{"v2.public.h"}, want: "v2.public.h"},
		{name: "bearer header", headers: []string{"Bearer v2.public.h"}, want: "v2.public.h"},
		{name: "header wins over cookie", headers: []string{"v2.public.h"}, cookie: "v2.public.c", hasCookie: true, want: "v2.public.h"},
		{name: "blank header", headers: []string{"  "}, wantErr: true},
		{name: "two headers", headers: []string{"v2.public.a", "v2.public.b"}, wantErr: true},
		{name: "two headers and cookie", headers: []string{"v2.public.a", "v2.public.b"}, cookie: "v2.public.c", hasCookie: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := token.Extract(tt.headers, tt.cookie, tt.hasCookie)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrNoTokenInRequest)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRevocationChecker(t *testing.T) {
	f := setupTestFixture(t)
	checker := token.NewRevocationChecker(f.repo, time.Minute)
	ctx := context.Background()

	_, minted, err := f.issuer.Mint(ctx, subject, audience)
	require.NoError(t, err)

	require.NoError(t, checker.Check(ctx, minted))
	require.NoError(t, checker.Check(ctx, minted))
	assert.Equal(t, 1, f.repo.Gets(), "second check should be served from cache")

	require.NoError(t, checker.Revoke(ctx, minted, minted.Jti))
	require.ErrorIs(t, checker.Check(ctx, minted), apperrors.ErrTokenRevoked)
}

func TestRevocationCheckerUnknownRecordIsAccepted(t *testing.T) {
	f := setupTestFixture(t)
	checker := token.NewRevocationChecker(f.repo, time.Minute)

	require.NoError(t, checker.Check(context.Background(), &token.Token{Jti: "unrecorded", Sub: subject}))
}

func TestRevocationCheckerExpiredRecord(t *testing.T) {
	f := setupTestFixture(t)
	checker := token.NewRevocationChecker(f.repo, time.Minute)
	ctx := context.Background()

	require.NoError(t, f.repo.Insert(ctx, &token.Record{
		ID: "expired", Sub: subject, Aud: audience, Iss: issuer, Iat: "2020-01-01T00:00:00Z",
		Exp: utils.Ptr(time.Now().Add(-time.Hour).Unix()),
	}))
	require.ErrorIs(t, checker.Check(ctx, &token.Token{Jti: "expired", Sub: subject}), apperrors.ErrTokenRevoked)
}

func TestRevokeOtherSubject(t *testing.T) {
	f := setupTestFixture(t)
	checker := token.NewRevocationChecker(f.repo, time.Minute)
	ctx := context.Background()

	_, minted, err := f.issuer.Mint(ctx, subject, audience)
	require.NoError(t, err)

	err = checker.Revoke(ctx, &token.Token{Jti: "x", Sub: "someone-else"}, minted.Jti)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, checker.Check(ctx, minted))

	err = checker.Revoke(ctx, minted, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNewIssuerValidation(t *testing.T) {
	keyPair, err := token.GenerateKeyPair()
	require.NoError(t, err)
	repo := tokenfakerepo.NewFakeTokensRepo()

	_, err = token.NewIssuer(nil, repo, issuer)
	require.Error(t, err)
	_, err = token.NewIssuer(keyPair, nil, issuer)
	require.Error(t, err)
	_, err = token.NewIssuer(keyPair, repo, "")
	require.Error(t, err)
}
