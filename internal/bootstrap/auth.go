package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gitnudge/portal/config"
	"github.com/gitnudge/portal/internal/adapters/devauth"
	"github.com/gitnudge/portal/internal/adapters/oidc"
	redisadapter "github.com/gitnudge/portal/internal/adapters/redis"
	"github.com/gitnudge/portal/internal/ports"
	"github.com/gitnudge/portal/internal/service"
)

// sessionKeyPrefix namespaces sessions next to the flags:<device> hashes.
const sessionKeyPrefix = "session:"

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

func (c AuthConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// BuildAuthService wires the sign-in provider for the configured mode to the
// Redis session store. Without Redis it returns (nil, nil) and sign-in stays
// off; a provider that cannot be built is an error.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		cfg.logger().Warn("sign-in disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil, nil
	}

	prov, err := newAuthProvider(cfg)
	if err != nil {
		return nil, err
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, sessionKeyPrefix),
		Logger:   cfg.Logger,
	}), nil
}

//nolint:ireturn // the mode decides the concrete provider.
func newAuthProvider(cfg AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return newDevProvider(cfg)
	case config.AuthModeOAuth:
		return newGoogleProvider(cfg.Auth.OAuth)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func newDevProvider(cfg AuthConfig) (*devauth.Provider, error) {
	dev := cfg.Auth.DevAuth
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:    dev.UserID,
		Email:     dev.Email,
		FirstName: dev.FirstName,
		LastName:  dev.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("mock sign-in: %w", err)
	}
	cfg.logger().Warn("mock sign-in enabled; do not use in production", "user_id", dev.UserID)
	return prov, nil
}

func newGoogleProvider(oauth config.OAuthConfig) (*oidc.Provider, error) {
	var missing []error
	if oauth.ClientID == "" {
		missing = append(missing, errors.New("client id"))
	}
	if oauth.ClientSecret == "" {
		missing = append(missing, errors.New("client secret"))
	}
	if oauth.DiscoveryURL == "" {
		missing = append(missing, errors.New("discovery url"))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("google sign-in is missing: %w", errors.Join(missing...))
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		return nil, fmt.Errorf("google sign-in: %w", err)
	}
	return prov, nil
}
