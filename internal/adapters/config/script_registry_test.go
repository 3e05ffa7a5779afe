package config

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

func registryWith(scripts map[string]config.ScriptEntry) *ScriptRegistryAdapter {
	return NewScriptRegistryAdapter(&config.RuntimeConfig{
		Project: &config.ProjectConfig{Scripts: scripts},
	})
}

func TestScriptRegistry(t *testing.T) {
	ctx := context.Background()
	proposalHash := strings.Repeat("02", 28)
	hash, err := cardano.ParseHash28(proposalHash)
	require.NoError(t, err)

	stakedAddr := cardano.ScriptAddress(hash)
	stake := cardano.KeyCredential(cardano.Hash28{0x09})
	stakedAddr.Stake = &stake
	staked, err := stakedAddr.Bech32(cardano.Testnet)
	require.NoError(t, err)

	t.Run("defaults to the enterprise address", func(t *testing.T) {
		reg := registryWith(map[string]config.ScriptEntry{
			"proposal": {Hash: proposalHash, ReferenceInput: strings.Repeat("d2", 32) + "#1"},
		})
		script, err := reg.Script(ctx, models.ScriptProposal)
		require.NoError(t, err)

		assert.Equal(t, models.ScriptProposal, script.Role)
		assert.Equal(t, hash, script.Hash)
		assert.True(t, script.Address.Equal(cardano.ScriptAddress(hash)))
		require.NotNil(t, script.ReferenceInput)
		assert.Equal(t, uint32(1), script.ReferenceInput.Index)
	})

	t.Run("explicit address", func(t *testing.T) {
		reg := registryWith(map[string]config.ScriptEntry{
			"proposal": {Hash: proposalHash, Address: staked},
		})
		script, err := reg.Script(ctx, models.ScriptProposal)
		require.NoError(t, err)
		assert.True(t, script.Address.Equal(stakedAddr))
		assert.Nil(t, script.ReferenceInput)
	})

	tests := []struct {
		name  string
		entry config.ScriptEntry
		item  string
	}{
		{"bad hash", config.ScriptEntry{Hash: "abcd"}, "scripts.proposal.hash"},
		{"bad address", config.ScriptEntry{Hash: proposalHash, Address: "addr_test1nope"}, "scripts.proposal.address"},
		{"foreign address", config.ScriptEntry{Hash: strings.Repeat("03", 28), Address: staked}, "scripts.proposal.address"},
		{"bad reference", config.ScriptEntry{Hash: proposalHash, ReferenceInput: "xyz#0"}, "scripts.proposal.reference_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registryWith(map[string]config.ScriptEntry{"proposal": tt.entry})
			_, err := reg.Script(ctx, models.ScriptProposal)

			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.item, cfgErr.Item)
		})
	}

	t.Run("missing role", func(t *testing.T) {
		reg := NewScriptRegistryAdapter(&config.RuntimeConfig{})
		_, err := reg.Script(ctx, models.ScriptTreasury)

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "scripts.treasury", cfgErr.Item)
	})
}
