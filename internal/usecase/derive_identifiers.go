package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/identifier"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// DeriveIdentifiersParams contains the inputs identifiers are derived from.
// Exactly one of Seed and ProposalID is required.
type DeriveIdentifiersParams struct {
	Seed       string
	ProposalID string
	// ProposalScript defaults to the registered proposal script
	ProposalScript string
	// Actions derives ids for indexes 0..Actions-1
	Actions uint32
	// Indexes derives ids for specific action indexes
	Indexes []uint32
}

// DerivedAction is the identifier of one action index
type DerivedAction struct {
	Index      uint32                  `json:"index"`
	Identifier models.ActionIdentifier `json:"identifier"`
	ID         cardano.Hash32          `json:"id"`
}

// DerivedIdentifiers is the result of deriving identifiers
type DerivedIdentifiers struct {
	Seed       *cardano.OutputReference `json:"seed,omitempty"`
	ProposalID cardano.Hash32           `json:"proposalId"`
	Actions    []DerivedAction          `json:"actions,omitempty"`
}

// DeriveIdentifiers is the use case for computing proposal and action identifiers
type DeriveIdentifiers struct {
	scripts ScriptRegistry
}

// NewDeriveIdentifiers creates a new DeriveIdentifiers use case
func NewDeriveIdentifiers(scripts ScriptRegistry) *DeriveIdentifiers {
	return &DeriveIdentifiers{scripts: scripts}
}

// Run executes the derive identifiers use case
func (uc *DeriveIdentifiers) Run(ctx context.Context, params DeriveIdentifiersParams) (*DerivedIdentifiers, error) {
	result := &DerivedIdentifiers{}
	switch {
	case params.Seed != "" && params.ProposalID != "":
		return nil, fmt.Errorf("give either a seed or a proposal id, not both")
	case params.Seed != "":
		seed, err := cardano.ParseOutputReference(params.Seed)
		if err != nil {
			return nil, err
		}
		result.Seed = &seed
		result.ProposalID = identifier.DeriveProposalID(seed)
	case params.ProposalID != "":
		id, err := cardano.ParseHash32(params.ProposalID)
		if err != nil {
			return nil, fmt.Errorf("invalid proposal id: %w", err)
		}
		result.ProposalID = id
	default:
		return nil, fmt.Errorf("a seed or a proposal id is required")
	}

	indexes := append([]uint32{}, params.Indexes...)
	for i := uint32(0); i < params.Actions; i++ {
		indexes = append(indexes, i)
	}
	if len(indexes) == 0 {
		return result, nil
	}

	script, err := uc.proposalScript(ctx, params.ProposalScript)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		aid := models.ActionIdentifier{
			ProposalScriptHash: script,
			ProposalIdentifier: result.ProposalID,
			ActionIndex:        idx,
		}
		result.Actions = append(result.Actions, DerivedAction{
			Index:      idx,
			Identifier: aid,
			ID:         identifier.DeriveActionID(aid),
		})
	}
	return result, nil
}

func (uc *DeriveIdentifiers) proposalScript(ctx context.Context, s string) (cardano.ScriptHash, error) {
	if s != "" {
		h, err := cardano.ParseHash28(s)
		if err != nil {
			return cardano.ScriptHash{}, fmt.Errorf("invalid proposal script hash: %w", err)
		}
		return h, nil
	}
	script, err := uc.scripts.Script(ctx, models.ScriptProposal)
	if err != nil {
		return cardano.ScriptHash{}, err
	}
	return script.Hash, nil
}
