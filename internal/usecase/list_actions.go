package usecase

import (
	"context"
	"sort"

	"github.com/samber/lo"
)

// ListActionsParams contains parameters for listing actions
type ListActionsParams struct {
	// Proposal limits the list to one proposal (id prefix or name)
	Proposal string
	// Pending hides executed actions
	Pending bool
}

// ActionListResult contains the result of listing actions
type ActionListResult struct {
	Actions []*ActionEntry
	Invalid []InvalidRecord
}

// ListActions is the use case for listing treasury actions
type ListActions struct {
	state    *GovernanceState
	selector ProposalSelector
	sink     ProgressSink
}

// NewListActions creates a new ListActions use case
func NewListActions(state *GovernanceState, selector ProposalSelector, sink ProgressSink) *ListActions {
	return &ListActions{
		state:    state,
		selector: selector,
		sink:     sink,
	}
}

// Run executes the list actions use case
func (uc *ListActions) Run(ctx context.Context, params ListActionsParams) (*ActionListResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading actions",
		Spinner: true,
	})

	actions, invalid, err := uc.state.LoadActions(ctx)
	if err != nil {
		return nil, err
	}

	if params.Proposal != "" {
		proposals, _, err := uc.state.LoadProposals(ctx)
		if err != nil {
			return nil, err
		}
		entry, err := ResolveProposal(ctx, proposals, params.Proposal, uc.selector)
		if err != nil {
			return nil, err
		}
		actions = ActionsOf(actions, entry)
	} else {
		sort.SliceStable(actions, func(i, j int) bool {
			a, b := actions[i].Action.Identifier, actions[j].Action.Identifier
			if a.ProposalIdentifier != b.ProposalIdentifier {
				return a.ProposalIdentifier.String() < b.ProposalIdentifier.String()
			}
			return a.ActionIndex < b.ActionIndex
		})
	}

	if params.Pending {
		actions = lo.Reject(actions, func(a *ActionEntry, _ int) bool { return a.Executed })
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(actions),
		Total:   len(actions),
		Message: "Actions loaded",
	})

	return &ActionListResult{Actions: actions, Invalid: invalid}, nil
}
