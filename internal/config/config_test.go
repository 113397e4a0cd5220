package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depfix/depfix/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Registry: config.RegistryConfig{
			SandboxTimeout: config.DefaultSandboxTimeout,
		},
		Style: config.StyleConfig{
			RequireKeyword: "require",
		},
		Observability: config.ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveSandboxTimeout(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Registry.SandboxTimeout = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidSandboxTimeout)
}

func TestValidateRejectsUnknownRequireKeyword(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Style.RequireKeyword = "esm"
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidRequireKeyword)
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Observability.LogLevel = "verbose"
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidLogLevel)
}

func TestLoadConfigWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "require", cfg.Style.RequireKeyword)
	assert.Equal(t, config.DefaultSandboxTimeout, cfg.Registry.SandboxTimeout)
}
