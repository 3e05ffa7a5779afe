package models

import (
	"slices"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
)

// DAOConfig holds the parameters set once when the DAO is deployed
type DAOConfig struct {
	Name                   string          `json:"name"`
	GovernanceToken        cardano.AssetID `json:"governanceToken"`
	ThresholdPercent       uint32          `json:"thresholdPercent"`
	MinProposalDurationMs  uint64          `json:"minProposalDurationMs"`
	MaxProposalDurationMs  uint64          `json:"maxProposalDurationMs"`
	QuorumVotes            uint64          `json:"quorumVotes"`
	MinProposalCreateVotes uint64          `json:"minProposalCreateVotes"`

	// Script hashes allowed to hold proposals and actions. Order is kept as stored on chain.
	WhitelistedProposalScripts []cardano.ScriptHash `json:"whitelistedProposalScripts"`
	WhitelistedActionScripts   []cardano.ScriptHash `json:"whitelistedActionScripts"`
}

// AllowsProposalScript reports whether proposals may live at the given script
func (c *DAOConfig) AllowsProposalScript(h cardano.ScriptHash) bool {
	return slices.Contains(c.WhitelistedProposalScripts, h)
}

// AllowsActionScript reports whether actions may live at the given script
func (c *DAOConfig) AllowsActionScript(h cardano.ScriptHash) bool {
	return slices.Contains(c.WhitelistedActionScripts, h)
}
