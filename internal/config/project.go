package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// ProjectFile is the name of the project configuration file
const ProjectFile = "tally.toml"

// loadProjectConfig loads .env files and parses tally.toml. Values may reference
// environment variables with ${VAR}.
func loadProjectConfig(projectRoot string) (*ProjectConfig, error) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}

	path := filepath.Join(projectRoot, ProjectFile)
	cfg := &ProjectConfig{Scripts: map[string]ScriptEntry{}}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ProjectFile, err)
	}
	if _, err := toml.Decode(os.ExpandEnv(string(raw)), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}
	if cfg.Scripts == nil {
		cfg.Scripts = map[string]ScriptEntry{}
	}
	return cfg, nil
}

// DAOConfig converts the [dao] table to the DAO record it describes
func (p *ProjectConfig) DAOConfig() (*models.DAOConfig, error) {
	d := p.DAO
	if d.Name == "" {
		return nil, &domain.ConfigurationError{Item: "dao.name", Reason: "is required"}
	}
	token, err := cardano.ParseAssetID(d.GovernanceToken)
	if err != nil {
		return nil, &domain.ConfigurationError{Item: "dao.governance_token", Reason: err.Error()}
	}
	if d.ThresholdPercent > 100 {
		return nil, &domain.ConfigurationError{Item: "dao.threshold_percent", Reason: fmt.Sprintf("%d is above 100", d.ThresholdPercent)}
	}
	if d.MinProposalDuration.Duration < 0 || d.MaxProposalDuration.Duration < d.MinProposalDuration.Duration {
		return nil, &domain.ConfigurationError{Item: "dao.max_proposal_duration", Reason: "must not be shorter than min_proposal_duration"}
	}

	proposals, err := parseHashes("dao.whitelisted_proposal_scripts", d.WhitelistedProposalScripts)
	if err != nil {
		return nil, err
	}
	actions, err := parseHashes("dao.whitelisted_action_scripts", d.WhitelistedActionScripts)
	if err != nil {
		return nil, err
	}

	return &models.DAOConfig{
		Name:                       d.Name,
		GovernanceToken:            token,
		ThresholdPercent:           d.ThresholdPercent,
		MinProposalDurationMs:      uint64(d.MinProposalDuration.Milliseconds()),
		MaxProposalDurationMs:      uint64(d.MaxProposalDuration.Milliseconds()),
		QuorumVotes:                d.QuorumVotes,
		MinProposalCreateVotes:     d.MinProposalCreateVotes,
		WhitelistedProposalScripts: proposals,
		WhitelistedActionScripts:   actions,
	}, nil
}

func parseHashes(item string, values []string) ([]cardano.ScriptHash, error) {
	out := make([]cardano.ScriptHash, 0, len(values))
	for i, v := range values {
		h, err := cardano.ParseHash28(v)
		if err != nil {
			return nil, &domain.ConfigurationError{Item: fmt.Sprintf("%s[%d]", item, i), Reason: err.Error()}
		}
		out = append(out, h)
	}
	return out, nil
}
