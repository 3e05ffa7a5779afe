package usecase

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// ListProposalsParams contains parameters for listing proposals
type ListProposalsParams struct {
	// Status filters on the projected status, empty lists all
	Status models.StatusKind
}

// ListProposals is the use case for listing proposals
type ListProposals struct {
	state *GovernanceState
	sink  ProgressSink
}

// NewListProposals creates a new ListProposals use case
func NewListProposals(state *GovernanceState, sink ProgressSink) *ListProposals {
	return &ListProposals{
		state: state,
		sink:  sink,
	}
}

// Run executes the list proposals use case
func (uc *ListProposals) Run(ctx context.Context, params ListProposalsParams) (*ProposalListResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading proposals",
		Spinner: true,
	})

	entries, invalid, err := uc.state.LoadProposals(ctx)
	if err != nil {
		return nil, err
	}

	if params.Status != "" {
		entries = lo.Filter(entries, func(e *ProposalEntry, _ int) bool {
			return e.Proposal.Status.Kind == params.Status
		})
	}

	sortProposals(entries)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(entries),
		Total:   len(entries),
		Message: "Proposals loaded",
	})

	return &ProposalListResult{
		Proposals: entries,
		Invalid:   invalid,
		Summary:   summarizeProposals(entries),
	}, nil
}

// sortProposals orders by end time, then name, then id
func sortProposals(entries []*ProposalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Proposal.EndTimeMs != b.Proposal.EndTimeMs {
			return a.Proposal.EndTimeMs < b.Proposal.EndTimeMs
		}
		if a.Proposal.Name != b.Proposal.Name {
			return a.Proposal.Name < b.Proposal.Name
		}
		return a.ID.String() < b.ID.String()
	})
}

func summarizeProposals(entries []*ProposalEntry) ProposalSummary {
	return ProposalSummary{
		Total: len(entries),
		ByStatus: lo.CountValuesBy(entries, func(e *ProposalEntry) models.StatusKind {
			return e.Proposal.Status.Kind
		}),
		Mismatched: lo.CountBy(entries, func(e *ProposalEntry) bool {
			return e.Mismatch != nil
		}),
	}
}
