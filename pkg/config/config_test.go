package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("gateway")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "http://localhost:3000/api/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.RequestTimeout)
	assert.Equal(t, 100, cfg.Upstream.PageSize)
	assert.Equal(t, 1_000_000.0, cfg.Catalog.MaxPrice)
	assert.Equal(t, time.Hour, cfg.Visits.DefaultDuration)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEGOBI_SERVER_PORT", "9000")
	t.Setenv("NEGOBI_UPSTREAM_PAGE_SIZE", "25")

	cfg, err := Load("gateway")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Upstream.PageSize)
}

func TestUpstreamValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         UpstreamConfig
		environment string
		wantErr     bool
	}{
		{
			name:        "development allows localhost without credentials",
			cfg:         UpstreamConfig{BaseURL: "http://localhost:3000/api/v1"},
			environment: EnvDevelopment,
		},
		{
			name:        "production rejects localhost",
			cfg:         UpstreamConfig{BaseURL: "http://localhost:3000/api/v1", Email: "a@b.c", Password: "x"},
			environment: EnvProduction,
			wantErr:     true,
		},
		{
			name:        "production requires credentials",
			cfg:         UpstreamConfig{BaseURL: "https://erp.negobi.app/api/v1"},
			environment: EnvProduction,
			wantErr:     true,
		},
		{
			name:        "production accepts full configuration",
			cfg:         UpstreamConfig{BaseURL: "https://erp.negobi.app/api/v1", Email: "a@b.c", Password: "x"},
			environment: EnvProduction,
		},
		{
			name:        "staging enforced like production",
			cfg:         UpstreamConfig{BaseURL: "https://erp.negobi.app/api/v1"},
			environment: EnvStaging,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.environment)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
