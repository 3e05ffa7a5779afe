package config

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// ScriptRegistryAdapter resolves deployed validators from the [scripts] table
// of the project file
type ScriptRegistryAdapter struct {
	entries map[string]config.ScriptEntry
}

// NewScriptRegistryAdapter creates a new adapter
func NewScriptRegistryAdapter(cfg *config.RuntimeConfig) *ScriptRegistryAdapter {
	entries := map[string]config.ScriptEntry{}
	if cfg.Project != nil && cfg.Project.Scripts != nil {
		entries = cfg.Project.Scripts
	}
	return &ScriptRegistryAdapter{entries: entries}
}

// Script returns the validator registered for role. The address defaults to
// the enterprise address of the script hash.
func (a *ScriptRegistryAdapter) Script(ctx context.Context, role models.ScriptRole) (*models.Script, error) {
	item := fmt.Sprintf("scripts.%s", role)
	entry, ok := a.entries[string(role)]
	if !ok || entry.Hash == "" {
		return nil, &domain.ConfigurationError{Item: item, Reason: "is not configured"}
	}

	hash, err := cardano.ParseHash28(entry.Hash)
	if err != nil {
		return nil, &domain.ConfigurationError{Item: item + ".hash", Reason: err.Error()}
	}

	script := &models.Script{
		Role:    role,
		Hash:    hash,
		Address: cardano.ScriptAddress(hash),
	}

	if entry.Address != "" {
		addr, _, err := cardano.ParseAddress(entry.Address)
		if err != nil {
			return nil, &domain.ConfigurationError{Item: item + ".address", Reason: err.Error()}
		}
		if addr.Payment != cardano.ScriptCredential(hash) {
			return nil, &domain.ConfigurationError{Item: item + ".address", Reason: "payment credential does not match the script hash"}
		}
		script.Address = addr
	}

	if entry.ReferenceInput != "" {
		ref, err := cardano.ParseOutputReference(entry.ReferenceInput)
		if err != nil {
			return nil, &domain.ConfigurationError{Item: item + ".reference_input", Reason: err.Error()}
		}
		script.ReferenceInput = &ref
	}

	return script, nil
}

// Ensure the adapter implements the interface
var _ usecase.ScriptRegistry = (*ScriptRegistryAdapter)(nil)
