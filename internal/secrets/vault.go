// Package secrets resolves exchange API credentials from HashiCorp Vault.
// Resolution is fail-soft: a disabled or unreachable Vault leaves the
// locally configured credentials in place.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"adaptive-trading-framework/config"

	"github.com/hashicorp/vault/api"
	"github.com/rs/zerolog"
)

var (
	// ErrResolverDisabled is returned when Vault is not enabled.
	ErrResolverDisabled = errors.New("vault resolver is disabled")

	// ErrCredentialsNotFound is returned when no secret exists for the
	// exchange.
	ErrCredentialsNotFound = errors.New("exchange credentials not found")
)

// Credentials is one exchange's API key pair.
type Credentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// Resolver reads exchange credentials from a Vault KV v2 mount.
type Resolver struct {
	client *api.Client
	cfg    config.VaultConfig
	logger zerolog.Logger
}

// NewResolver creates a resolver. When Vault is disabled the resolver is
// still returned, with every lookup reporting ErrResolverDisabled.
func NewResolver(cfg config.VaultConfig, logger zerolog.Logger) (*Resolver, error) {
	r := &Resolver{
		cfg:    cfg,
		logger: logger.With().Str("component", "secrets").Logger(),
	}
	if !cfg.Enabled {
		return r, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	r.client = client
	return r, nil
}

// Enabled reports whether Vault lookups are active.
func (r *Resolver) Enabled() bool {
	return r.cfg.Enabled && r.client != nil
}

// ExchangeCredentials reads the API key pair stored for an exchange.
func (r *Resolver) ExchangeCredentials(ctx context.Context, exchange string) (*Credentials, error) {
	if !r.Enabled() {
		return nil, ErrResolverDisabled
	}

	path := fmt.Sprintf("%s/data/%s/%s", r.cfg.MountPath, r.cfg.SecretPath, exchange)

	secret, err := r.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, ErrCredentialsNotFound
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret format at %s", path)
	}

	creds := &Credentials{
		APIKey:    getString(data, "api_key"),
		APISecret: getString(data, "api_secret"),
	}
	if creds.APIKey == "" && creds.APISecret == "" {
		return nil, ErrCredentialsNotFound
	}
	return creds, nil
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
