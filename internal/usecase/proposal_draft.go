package usecase

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// ProposalDraft is the YAML document a proposal is created from
type ProposalDraft struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Creator     string        `yaml:"creator"`
	Seed        string        `yaml:"seed,omitempty"`
	Duration    time.Duration `yaml:"duration"`
	Options     int           `yaml:"options"`
	Actions     []ActionDraft `yaml:"actions,omitempty"`
}

// ActionDraft describes one treasury action attached to a proposal option.
// ActivationTime wins over ActivationDelay, which counts from the voting end.
type ActionDraft struct {
	Name            string        `yaml:"name"`
	Description     string        `yaml:"description"`
	Option          uint32        `yaml:"option"`
	ActivationTime  *time.Time    `yaml:"activation_time,omitempty"`
	ActivationDelay time.Duration `yaml:"activation_delay,omitempty"`
	Treasury        string        `yaml:"treasury,omitempty"`
	Targets         []TargetDraft `yaml:"targets"`
}

// TargetDraft is one payment of an action. Tokens are keyed by asset unit.
type TargetDraft struct {
	Address  string            `yaml:"address"`
	Lovelace uint64            `yaml:"lovelace"`
	Tokens   map[string]uint64 `yaml:"tokens,omitempty"`
	Datum    string            `yaml:"datum,omitempty"`
}

// ParseProposalDraft decodes a draft, rejecting unknown keys
func ParseProposalDraft(raw []byte) (*ProposalDraft, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var draft ProposalDraft
	if err := dec.Decode(&draft); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: draft is empty", domain.ErrInvalidDraft)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDraft, err)
	}
	return &draft, nil
}

// Validate checks the parts of a draft that do not depend on chain state
func (d *ProposalDraft) Validate() error {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	if d.Creator == "" {
		problems = append(problems, "creator is required")
	}
	if d.Duration <= 0 {
		problems = append(problems, "duration must be positive")
	}
	if d.Options < 2 {
		problems = append(problems, fmt.Sprintf("a proposal needs at least 2 options, got %d", d.Options))
	}
	for i, a := range d.Actions {
		if strings.TrimSpace(a.Name) == "" {
			problems = append(problems, fmt.Sprintf("actions[%d]: name is required", i))
		}
		if int(a.Option) >= d.Options {
			problems = append(problems, fmt.Sprintf("actions[%d]: option %d is out of range", i, a.Option))
		}
		if len(a.Targets) == 0 {
			problems = append(problems, fmt.Sprintf("actions[%d]: at least one target is required", i))
		}
		for j, t := range a.Targets {
			if t.Lovelace == 0 && len(t.Tokens) == 0 {
				problems = append(problems, fmt.Sprintf("actions[%d].targets[%d]: nothing to pay", i, j))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDraft, strings.Join(problems, "; "))
	}
	return nil
}

// SeedRef parses the optional seed output reference
func (d *ProposalDraft) SeedRef() (*cardano.OutputReference, error) {
	if d.Seed == "" {
		return nil, nil
	}
	ref, err := cardano.ParseOutputReference(d.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: seed: %v", domain.ErrInvalidDraft, err)
	}
	return &ref, nil
}

// parseDraftAddress parses an address and checks it belongs to the configured network
func parseDraftAddress(field, s string, network cardano.Network) (cardano.Address, error) {
	addr, n, err := cardano.ParseAddress(s)
	if err != nil {
		return cardano.Address{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidDraft, field, err)
	}
	if n != network {
		return cardano.Address{}, fmt.Errorf("%w: %s is a %s address, expected %s", domain.ErrInvalidDraft, field, n, network)
	}
	return addr, nil
}

// toTarget converts a target draft to its on-chain form
func (t *TargetDraft) toTarget(field string, network cardano.Network) (models.Target, error) {
	addr, err := parseDraftAddress(field+".address", t.Address, network)
	if err != nil {
		return models.Target{}, err
	}

	target := models.Target{Address: addr, Lovelace: t.Lovelace, Datum: models.NoDatum()}
	if len(t.Tokens) > 0 {
		target.Tokens = cardano.Assets{}
		for unit, qty := range t.Tokens {
			id, err := cardano.ParseAssetID(unit)
			if err != nil {
				return models.Target{}, fmt.Errorf("%w: %s.tokens: %v", domain.ErrInvalidDraft, field, err)
			}
			if qty == 0 {
				return models.Target{}, fmt.Errorf("%w: %s.tokens: zero quantity of %s", domain.ErrInvalidDraft, field, unit)
			}
			target.Tokens[id] = qty
		}
	}

	if t.Datum != "" {
		raw, err := hex.DecodeString(strings.TrimPrefix(t.Datum, "0x"))
		if err != nil {
			return models.Target{}, fmt.Errorf("%w: %s.datum: %v", domain.ErrInvalidDraft, field, err)
		}
		if _, err := plutus.Unmarshal(raw); err != nil {
			return models.Target{}, fmt.Errorf("%w: %s.datum: %v", domain.ErrInvalidDraft, field, err)
		}
		target.Datum = models.InlineDatum(raw)
	}
	return target, nil
}

// activationMs resolves the activation time of an action given the voting end
func (a *ActionDraft) activationMs(endTimeMs uint64) uint64 {
	if a.ActivationTime != nil {
		return models.TimeMs(*a.ActivationTime)
	}
	return endTimeMs + durationMs(a.ActivationDelay)
}
