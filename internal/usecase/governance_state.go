package usecase

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/identifier"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// DAOState is the DAO configuration output and the script holding it
type DAOState struct {
	Script *models.Script
	UTxO   *models.UTxO
	Config *models.DAOConfig
}

// GovernanceState reads DAO, proposal and action records from chain outputs.
// Records that fail to decode are reported, not returned.
type GovernanceState struct {
	utxos   UTxOSource
	scripts ScriptRegistry
	index   ExecutionIndex
	clock   Clock
	log     *slog.Logger
}

// NewGovernanceState creates a new GovernanceState
func NewGovernanceState(utxos UTxOSource, scripts ScriptRegistry, index ExecutionIndex, clock Clock, log *slog.Logger) *GovernanceState {
	return &GovernanceState{
		utxos:   utxos,
		scripts: scripts,
		index:   index,
		clock:   clock,
		log:     log,
	}
}

// Now returns the clock time every projection uses
func (s *GovernanceState) Now() time.Time {
	return s.clock.Now()
}

// Script returns the registered script for a role
func (s *GovernanceState) Script(ctx context.Context, role models.ScriptRole) (*models.Script, error) {
	return s.scripts.Script(ctx, role)
}

// Outputs returns the outputs at an address in reference order
func (s *GovernanceState) Outputs(ctx context.Context, address cardano.Address) ([]*models.UTxO, error) {
	return s.sortedUTxOs(ctx, address)
}

// LoadDAO returns the DAO configuration held at the DAO script
func (s *GovernanceState) LoadDAO(ctx context.Context) (*DAOState, error) {
	script, err := s.scripts.Script(ctx, models.ScriptDAO)
	if err != nil {
		return nil, err
	}

	utxos, err := s.sortedUTxOs(ctx, script.Address)
	if err != nil {
		return nil, err
	}

	var found *DAOState
	for _, u := range utxos {
		data, ok := s.datum(u)
		if !ok {
			continue
		}
		cfg, err := codec.DecodeDAOConfig(data)
		if err != nil {
			s.log.Debug("skipping output at DAO script", "ref", u.Ref, "error", err)
			continue
		}
		if found != nil {
			s.log.Warn("several DAO configurations found, using the first", "used", found.UTxO.Ref, "ignored", u.Ref)
			continue
		}
		found = &DAOState{Script: script, UTxO: u, Config: cfg}
	}

	if found == nil {
		return nil, fmt.Errorf("%w: no DAO configuration at the DAO script", domain.ErrNotFound)
	}
	return found, nil
}

// LoadProposals decodes every proposal at the proposal script and projects
// its status at the current time
func (s *GovernanceState) LoadProposals(ctx context.Context) ([]*ProposalEntry, []InvalidRecord, error) {
	script, err := s.scripts.Script(ctx, models.ScriptProposal)
	if err != nil {
		return nil, nil, err
	}

	utxos, err := s.sortedUTxOs(ctx, script.Address)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	var entries []*ProposalEntry
	var invalid []InvalidRecord
	for _, u := range utxos {
		data, ok := s.datum(u)
		if !ok {
			invalid = append(invalid, InvalidRecord{Ref: u.Ref, Reason: "no inline datum"})
			continue
		}
		p, err := codec.DecodeProposal(data, now)
		if err != nil {
			s.log.Warn("skipping invalid proposal record", "ref", u.Ref, "error", err)
			invalid = append(invalid, InvalidRecord{Ref: u.Ref, Reason: err.Error()})
			continue
		}

		id := identifier.DeriveProposalID(p.Identifier)
		entry := &ProposalEntry{ID: id, UTxO: u, Proposal: p}
		entry.Mismatch = verifyToken(u.Value, script.Hash, id, "proposal")
		if entry.Mismatch != nil {
			s.log.Warn("proposal identifier mismatch", "ref", u.Ref, "error", entry.Mismatch)
		}
		entries = append(entries, entry)
	}
	return entries, invalid, nil
}

// LoadActions decodes every action at the action script
func (s *GovernanceState) LoadActions(ctx context.Context) ([]*ActionEntry, []InvalidRecord, error) {
	script, err := s.scripts.Script(ctx, models.ScriptAction)
	if err != nil {
		return nil, nil, err
	}

	utxos, err := s.sortedUTxOs(ctx, script.Address)
	if err != nil {
		return nil, nil, err
	}

	var entries []*ActionEntry
	var invalid []InvalidRecord
	for _, u := range utxos {
		data, ok := s.datum(u)
		if !ok {
			invalid = append(invalid, InvalidRecord{Ref: u.Ref, Reason: "no inline datum"})
			continue
		}
		a, err := codec.DecodeAction(data)
		if err != nil {
			s.log.Warn("skipping invalid action record", "ref", u.Ref, "error", err)
			invalid = append(invalid, InvalidRecord{Ref: u.Ref, Reason: err.Error()})
			continue
		}

		id := identifier.DeriveActionID(a.Identifier)
		executed, err := s.index.IsExecuted(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check execution of action %s: %w", id, err)
		}

		entry := &ActionEntry{ID: id, UTxO: u, Action: a, Executed: executed}
		entry.Mismatch = verifyToken(u.Value, script.Hash, id, "action")
		if entry.Mismatch != nil {
			s.log.Warn("action identifier mismatch", "ref", u.Ref, "error", entry.Mismatch)
		}
		entries = append(entries, entry)
	}
	return entries, invalid, nil
}

// ActionsOf returns the actions attached to a proposal ordered by action index
func ActionsOf(actions []*ActionEntry, proposal *ProposalEntry) []*ActionEntry {
	out := lo.Filter(actions, func(a *ActionEntry, _ int) bool {
		return a.Action.Identifier.ProposalIdentifier == proposal.ID
	})
	slices.SortStableFunc(out, func(a, b *ActionEntry) int {
		return int(a.Action.Identifier.ActionIndex) - int(b.Action.Identifier.ActionIndex)
	})
	return out
}

// ResolveProposal finds a proposal by id prefix or exact name. Several matches
// are handed to the selector when one is available.
func ResolveProposal(ctx context.Context, entries []*ProposalEntry, ref string, selector ProposalSelector) (*ProposalEntry, error) {
	ref = strings.TrimSpace(ref)
	matches := entries
	if ref != "" {
		lower := strings.ToLower(ref)
		matches = lo.Filter(entries, func(e *ProposalEntry, _ int) bool {
			return strings.HasPrefix(e.ID.String(), lower) || strings.EqualFold(e.Proposal.Name, ref)
		})
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: proposal %q", domain.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	}

	if selector == nil {
		return nil, fmt.Errorf("%w: %q matches %d proposals", domain.ErrAmbiguous, ref, len(matches))
	}
	return selector.SelectProposal(ctx, matches, "Select a proposal")
}

// ResolveAction finds an action by id prefix
func ResolveAction(entries []*ActionEntry, ref string) (*ActionEntry, error) {
	lower := strings.ToLower(strings.TrimSpace(ref))
	if lower == "" {
		return nil, fmt.Errorf("%w: empty action id", domain.ErrNotFound)
	}
	matches := lo.Filter(entries, func(e *ActionEntry, _ int) bool {
		return strings.HasPrefix(e.ID.String(), lower)
	})
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: action %q", domain.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d actions", domain.ErrAmbiguous, ref, len(matches))
	}
}

// VotingPower sums the governance token held by a set of outputs and returns
// the outputs that hold any
func VotingPower(utxos []*models.UTxO, token cardano.AssetID) (uint64, []*models.UTxO) {
	holders := lo.Filter(utxos, func(u *models.UTxO, _ int) bool {
		return u.Value.Quantity(token) > 0
	})
	power := lo.SumBy(holders, func(u *models.UTxO) uint64 {
		return u.Value.Quantity(token)
	})
	return power, holders
}

func (s *GovernanceState) sortedUTxOs(ctx context.Context, address cardano.Address) ([]*models.UTxO, error) {
	utxos, err := s.utxos.UTxOsAt(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to query outputs: %w", err)
	}
	utxos = slices.Clone(utxos)
	slices.SortFunc(utxos, func(a, b *models.UTxO) int {
		switch {
		case a.Ref.Less(b.Ref):
			return -1
		case b.Ref.Less(a.Ref):
			return 1
		default:
			return 0
		}
	})
	return utxos, nil
}

func (s *GovernanceState) datum(u *models.UTxO) (plutus.Data, bool) {
	if len(u.RawDatum) == 0 {
		return nil, false
	}
	data, err := plutus.Unmarshal(u.RawDatum)
	if err != nil {
		s.log.Debug("output datum is not valid CBOR", "ref", u.Ref, "error", err)
		return nil, false
	}
	return data, true
}

// verifyToken checks that the output carries the token named after id under policy
func verifyToken(value cardano.Value, policy cardano.PolicyID, id cardano.Hash32, entity string) error {
	tokens := value.QuantityOfPolicy(policy)
	if tokens[cardano.AssetID{Policy: policy, Name: string(id[:])}] == 1 {
		return nil
	}

	actual := "no token"
	if names := tokens.Sorted(); len(names) > 0 {
		actual = hex.EncodeToString([]byte(names[0].Name))
	}
	return &domain.IdentifierMismatchError{Entity: entity, Expected: id.String(), Actual: actual}
}
