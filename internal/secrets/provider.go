package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Source defines where secrets are loaded from
type Source string

const (
	// SourceEnvironment loads secrets from environment variables
	SourceEnvironment Source = "environment"
	// SourceVault loads secrets from Azure Key Vault
	SourceVault Source = "vault"
	// SourceAuto picks environment in development and vault everywhere else
	SourceAuto Source = "auto"
)

// Provider resolves named secrets from the configured source. The secret
// names mirror the Functions app settings (SqlConnectionString,
// AzureWebJobsStorage) so a deployed app's Key Vault references map 1:1.
type Provider struct {
	source Source
	vault  *VaultClient
	logger *zap.Logger
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       Source
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewProvider creates a new secrets provider
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := cfg.Source
	if source == SourceAuto {
		switch cfg.Environment {
		case "development", "local", "":
			source = SourceEnvironment
		default:
			source = SourceVault
		}
		logger.Info("Resolved secret source",
			zap.String("source", string(source)),
			zap.String("environment", cfg.Environment),
		)
	}

	p := &Provider{source: source, logger: logger}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	}

	return p, nil
}

// GetSecret retrieves a secret by name. For the environment source the
// name is the environment variable; for vault it is the Key Vault secret.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("environment variable %q not set", name)
		}
		return value, nil
	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv returns the environment variable when set, otherwise
// falls back to the configured source. Lets an operator override a vault
// secret locally without touching the vault.
func (p *Provider) GetSecretOrEnv(ctx context.Context, name, envName string) (string, error) {
	if v := os.Getenv(envName); v != "" {
		return v, nil
	}
	return p.GetSecret(ctx, name)
}

// Source returns the resolved secret source
func (p *Provider) Source() Source {
	return p.source
}
