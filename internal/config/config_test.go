package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("ARGUS_SITE_ID", "120073")
	t.Setenv("ARGUS_REQ_USERNAME", "testadmin")
	t.Setenv("ARGUS_REQ_PASSWORD", "GCPem8iVT3Kkrh4z")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setEnvCredentials(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Gateway.Environment)
	assert.Equal(t, 30, cfg.Gateway.Timeout)
	assert.Equal(t, "env", cfg.Secrets.Backend)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "9090", cfg.Metrics.Port)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setEnvCredentials(t)
	t.Setenv("ARGUS_ENVIRONMENT", "live")
	t.Setenv("ARGUS_TIMEOUT", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEVELOPMENT", "true")
	t.Setenv("METRICS_PORT", "9191")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "live", cfg.Gateway.Environment)
	assert.Equal(t, 10, cfg.Gateway.Timeout)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.Development)
	assert.Equal(t, "9191", cfg.Metrics.Port)
}

func TestLoadFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad environment",
			env:     map[string]string{"ARGUS_ENVIRONMENT": "staging", "ARGUS_SITE_ID": "1", "ARGUS_REQ_USERNAME": "u", "ARGUS_REQ_PASSWORD": "p"},
			wantErr: "ARGUS_ENVIRONMENT",
		},
		{
			name:    "env backend requires site id",
			env:     map[string]string{"ARGUS_REQ_USERNAME": "u", "ARGUS_REQ_PASSWORD": "p"},
			wantErr: "ARGUS_SITE_ID is required",
		},
		{
			name:    "env backend requires password",
			env:     map[string]string{"ARGUS_SITE_ID": "1", "ARGUS_REQ_USERNAME": "u"},
			wantErr: "ARGUS_REQ_PASSWORD is required",
		},
		{
			name:    "vault backend requires address",
			env:     map[string]string{"SECRETS_BACKEND": "vault"},
			wantErr: "VAULT_ADDR is required",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"SECRETS_BACKEND": "gcp"},
			wantErr: "unsupported secrets backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv_SecretsBackendSkipsInlineCredentials(t *testing.T) {
	t.Setenv("SECRETS_BACKEND", "local")
	t.Setenv("SECRETS_LOCAL_DIR", "/var/run/secrets")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Secrets.Backend)
	assert.Equal(t, "/var/run/secrets", cfg.Secrets.LocalDir)
	assert.Empty(t, cfg.Gateway.SiteID)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))

	t.Setenv("SOME_BOOL", "yes")
	assert.False(t, getEnvAsBool("SOME_BOOL", false))

	assert.Equal(t, "fallback", getEnv("UNSET_KEY_FOR_TEST", "fallback"))
}
