package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/lmaotrigine/indieauth/federation"
	"github.com/lmaotrigine/indieauth/indieauth"
	"github.com/lmaotrigine/indieauth/internal/config"
	"github.com/lmaotrigine/indieauth/internal/cookies"
	"github.com/lmaotrigine/indieauth/oauth2"
	"github.com/lmaotrigine/indieauth/server"
	"github.com/lmaotrigine/indieauth/store/sqlstore"
	"github.com/lmaotrigine/indieauth/store/valkeystore"
	"github.com/lmaotrigine/indieauth/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

const gitlabProvider = "gitlab"

// app holds everything built from the configuration.
type app struct {
	db         *sqlstore.DB
	valkey     valkey.Client
	handler    http.Handler
	federation *federation.Service
}

// applicationIdentifier is sent as User-Agent and stamped into every token's iss.
func applicationIdentifier(cfg config.EnvConfig) string {
	return fmt.Sprintf("%s/%s +%s/.well-known/botinfo", cfg.GetAppName(), Version, cfg.GetIdentityURL())
}

func setupLogger(cfg config.EnvConfig) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.GetEnv() == config.DevEnv {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// cookieSecret decodes COOKIE_SECRET, or falls back to the signing seed. The
// jar derives its own keys from either with HKDF.
func cookieSecret(cfg config.SecurityConfig, keyPair *token.KeyPair) ([]byte, error) {
	if raw := cfg.GetCookieSecret(); raw != "" {
		secret, err := hex.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.Wrap(err, "COOKIE_SECRET is not valid hex")
		}
		return secret, nil
	}
	return keyPair.Seed(), nil
}

func openDatabase(ctx context.Context, cfg config.StorageConfig, migrate bool) (*sqlstore.DB, error) {
	db, err := sqlstore.Open(ctx, cfg.GetDatabaseDriver(), cfg.GetDatabaseURL())
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func newApp(ctx context.Context, cfg config.Config, migrate bool) (*app, error) {
	keyPair, err := token.NewKeyPairFromHex(cfg.GetPasetoPublic(), cfg.GetPasetoPrivate())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load the PASETO key pair")
	}

	db, err := openDatabase(ctx, cfg, migrate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open the database")
	}
	a := &app{db: db}

	if err := a.build(ctx, cfg, keyPair); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context, cfg config.Config, keyPair *token.KeyPair) error {
	appIdent := applicationIdentifier(cfg)

	var codes indieauth.CodeRepo = sqlstore.NewCodeRepo(a.db)
	if addr := cfg.GetValkeyAddr(); addr != "" {
		client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
		if err != nil {
			return errors.Wrap(err, "failed to connect to valkey")
		}
		a.valkey = client
		codes = valkeystore.NewCodeRepo(client, cfg.GetValkeyPrefix(), cfg.GetAuthCodeTTL())
		log.Ctx(ctx).Info().Str("addr", addr).Msg("authorization codes kept in valkey")
	}

	indieAuth, err := indieauth.NewService(codes, cfg.GetIdentityURL())
	if err != nil {
		return err
	}

	tokens := sqlstore.NewTokenRepo(a.db)
	issuer, err := token.NewIssuer(keyPair, tokens, appIdent)
	if err != nil {
		return err
	}

	secret, err := cookieSecret(cfg, keyPair)
	if err != nil {
		return err
	}
	jar, err := cookies.NewJar(secret, cfg.GetCookieSecure())
	if err != nil {
		return err
	}

	adapter := oauth2.NewAdapter(cfg.GetOAuthHTTPTimeout(), oauth2.WithUserAgent(appIdent))
	var logins []server.Login
	for _, name := range cfg.GetProviderNames() {
		if name != gitlabProvider {
			return errors.Errorf("no federated login is implemented for provider %q", name)
		}
		providerConfig, err := cfg.GetProvider(name)
		if err != nil {
			return err
		}
		provider, err := oauth2.NewProvider(providerConfig, adapter, jar)
		if err != nil {
			return err
		}

		a.federation, err = federation.NewService(
			federation.NewGitLab(cfg.GetGitLabUserURL(), appIdent, cfg.GetOAuthHTTPTimeout()),
			sqlstore.NewIdentityRepo(a.db),
			issuer,
			provider,
			cfg.GetIdentityURL(),
			cfg.GetGitLabAllowedUsers(),
		)
		if err != nil {
			return err
		}
		logins = append(logins, server.Login{Provider: provider, Scopes: cfg.GetGitLabScopes(), Completer: a.federation})
	}

	a.handler, err = server.New(cfg, server.Dependencies{
		IndieAuth:   indieAuth,
		Issuer:      issuer,
		Validator:   token.NewValidator(keyPair),
		Revocations: token.NewRevocationChecker(tokens, cfg.GetRevocationCacheTTL()),
		Cookies:     jar,
		Logins:      logins,
	})
	return err
}

func (a *app) Close() {
	if a.valkey != nil {
		a.valkey.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close the database")
		}
	}
}
