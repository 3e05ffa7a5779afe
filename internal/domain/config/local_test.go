package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeConfigKey(t *testing.T) {
	tests := []struct {
		in      string
		want    ConfigKey
		wantErr bool
	}{
		{in: "network", want: ConfigKeyNetwork},
		{in: "Plan_Format", want: ConfigKeyPlanFormat},
		{in: "plan.format", want: ConfigKeyPlanFormat},
		{in: "non_interactive", want: ConfigKeyNonInteractive},
		{in: "namespace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeConfigKey(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "Available keys")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalConfigSet(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		c := &LocalConfig{}
		require.NoError(t, c.Set(ConfigKeyNetwork, "preview"))
		require.NoError(t, c.Set(ConfigKeyPlanFormat, "YAML"))
		require.NoError(t, c.Set(ConfigKeyTimeout, "30s"))
		require.NoError(t, c.Set(ConfigKeyNonInteractive, "true"))

		assert.Equal(t, LocalConfig{Network: "preview", PlanFormat: "yaml", Timeout: "30s", NonInteractive: true}, *c)
		assert.Equal(t, "true", c.Get(ConfigKeyNonInteractive))
	})

	t.Run("invalid values", func(t *testing.T) {
		c := &LocalConfig{}
		assert.Error(t, c.Set(ConfigKeyNetwork, "sepolia"))
		assert.Error(t, c.Set(ConfigKeyPlanFormat, "toml"))
		assert.Error(t, c.Set(ConfigKeyTimeout, "-1s"))
		assert.Error(t, c.Set(ConfigKeyNonInteractive, "maybe"))
		assert.Equal(t, LocalConfig{}, *c)
	})

	t.Run("unset returns the old value", func(t *testing.T) {
		c := &LocalConfig{Network: "mainnet"}
		assert.Equal(t, "mainnet", c.Unset(ConfigKeyNetwork))
		assert.Empty(t, c.Network)
	})
}
