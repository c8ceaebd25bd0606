package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/haugen-io/outbind/internal/secrets"
	"go.uber.org/zap"
)

// LoadWithSecrets loads configuration and resolves secrets from the
// configured source. In development secrets come from environment
// variables; with USE_AZURE_KEY_VAULT=true in staging/production they
// come from Azure Key Vault.
//
// The secret names match the Functions app settings the deployed app
// already uses: SqlConnectionString for the database and
// AzureWebJobsStorage for the storage account the queue lives in.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	// Database: the full ADO-style connection string is a single secret
	if connStr, err := provider.GetSecretOrEnv(ctx, "SqlConnectionString", "SQLCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Database.ConnectionString = connStr
	}

	// Queue: storage account connection string
	if connStr, err := provider.GetSecretOrEnv(ctx, "AzureWebJobsStorage", "AZUREWEBJOBSSTORAGE"); err == nil && connStr != "" {
		cfg.Queue.ConnectionString = connStr
	}

	// Function keys (only consulted when auth level is not anonymous)
	if key, err := provider.GetSecretOrEnv(ctx, "function-key", "FUNCTION_KEY"); err == nil && key != "" {
		cfg.Auth.FunctionKey = key
	}
	if key, err := provider.GetSecretOrEnv(ctx, "function-admin-key", "FUNCTION_ADMIN_KEY"); err == nil && key != "" {
		cfg.Auth.AdminKey = key
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}
