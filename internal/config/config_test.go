package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloair/veloair/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENROUTE_API_KEY", "ors-key")
	t.Setenv("WAQI_API_KEY", "waqi-token")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.False(t, cfg.OTELEnabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPENROUTE_API_KEY", "ors-key")
	t.Setenv("WAQI_API_KEY", "waqi-token")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.OTELEnabled)
	assert.Equal(t, "maps-key", cfg.GoogleMapsAPIKey)
}

func TestValidate_MissingKeys(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "missing openroute key",
			cfg:  config.Config{WAQIToken: "waqi-token"},
			want: "OPENROUTE_API_KEY",
		},
		{
			name: "missing waqi token",
			cfg:  config.Config{OpenRouteAPIKey: "ors-key"},
			want: "WAQI_API_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
