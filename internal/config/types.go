package config

import (
	"time"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Network selects address prefixes; NetworkName is the configured name
	Network     cardano.Network
	NetworkName string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// Now pins the clock for reproducible plans, zero means wall clock
	Now time.Time

	// Plan settings
	PlanFormat        string // json or yaml
	MinOutputLovelace uint64
	TxValidity        time.Duration

	// Resolved project file
	Project *ProjectConfig
}

// ProjectConfig is the contents of tally.toml
type ProjectConfig struct {
	Network string                 `toml:"network"`
	DAO     DAOSection             `toml:"dao"`
	Scripts map[string]ScriptEntry `toml:"scripts"`
	Plan    PlanSection            `toml:"plan"`
}

// DAOSection holds the DAO parameters used when encoding a fresh DAO datum
type DAOSection struct {
	Name                       string   `toml:"name"`
	GovernanceToken            string   `toml:"governance_token"`
	ThresholdPercent           uint32   `toml:"threshold_percent"`
	MinProposalDuration        Duration `toml:"min_proposal_duration"`
	MaxProposalDuration        Duration `toml:"max_proposal_duration"`
	QuorumVotes                uint64   `toml:"quorum_votes"`
	MinProposalCreateVotes     uint64   `toml:"min_proposal_create_votes"`
	WhitelistedProposalScripts []string `toml:"whitelisted_proposal_scripts"`
	WhitelistedActionScripts   []string `toml:"whitelisted_action_scripts"`
}

// ScriptEntry describes one deployed validator
type ScriptEntry struct {
	Hash           string `toml:"hash"`
	Address        string `toml:"address,omitempty"`
	ReferenceInput string `toml:"reference_input,omitempty"`
}

// PlanSection tunes generated transaction plans
type PlanSection struct {
	Format            string   `toml:"format"`
	MinOutputLovelace uint64   `toml:"min_output_lovelace"`
	TxValidity        Duration `toml:"tx_validity"`
}

// Duration decodes TOML strings such as "72h"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
