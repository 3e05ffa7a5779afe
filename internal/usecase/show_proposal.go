package usecase

import (
	"context"
	"math/big"

	"github.com/trebuchet-org/tally-cli/internal/domain/governance"
)

// ShowProposalParams contains parameters for showing a proposal
type ShowProposalParams struct {
	// Ref is an id prefix or a proposal name. Empty selects interactively.
	Ref string
}

// ProposalDetail is a proposal with its actions and vote summary
type ProposalDetail struct {
	Entry        *ProposalEntry
	Actions      []*ActionEntry
	TotalVotes   *big.Int
	WinningShare *big.Rat
}

// ShowProposal is the use case for showing proposal details
type ShowProposal struct {
	state    *GovernanceState
	selector ProposalSelector
	sink     ProgressSink
}

// NewShowProposal creates a new ShowProposal use case
func NewShowProposal(state *GovernanceState, selector ProposalSelector, sink ProgressSink) *ShowProposal {
	return &ShowProposal{
		state:    state,
		selector: selector,
		sink:     sink,
	}
}

// Run executes the show proposal use case
func (uc *ShowProposal) Run(ctx context.Context, params ShowProposalParams) (*ProposalDetail, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading proposal",
		Spinner: true,
	})

	proposals, _, err := uc.state.LoadProposals(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := ResolveProposal(ctx, proposals, params.Ref, uc.selector)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "actions",
		Message: "Loading actions",
		Spinner: true,
	})

	actions, _, err := uc.state.LoadActions(ctx)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Proposal loaded",
	})

	return &ProposalDetail{
		Entry:        entry,
		Actions:      ActionsOf(actions, entry),
		TotalVotes:   governance.TotalVotes(entry.Proposal.Tally),
		WinningShare: governance.WinningShare(entry.Proposal.Tally),
	}, nil
}
