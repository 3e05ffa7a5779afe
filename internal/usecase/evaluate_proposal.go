package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/governance"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// EvaluateProposalParams contains parameters for evaluating a proposal
type EvaluateProposalParams struct {
	Ref    string
	DryRun bool
}

// EvaluationResult is the plan of an evaluation with the status it settles on
type EvaluationResult struct {
	PlanResult
	Proposal *ProposalEntry
	Status   models.ProposalStatus
}

// EvaluateProposal is the use case for settling a proposal whose voting ended.
// The plan depends on chain state only, so repeated runs produce the same plan.
type EvaluateProposal struct {
	state    *GovernanceState
	selector ProposalSelector
	writer   PlanWriter
	sink     ProgressSink
	log      *slog.Logger
}

// NewEvaluateProposal creates a new EvaluateProposal use case
func NewEvaluateProposal(
	state *GovernanceState,
	selector ProposalSelector,
	writer PlanWriter,
	sink ProgressSink,
	log *slog.Logger,
) *EvaluateProposal {
	return &EvaluateProposal{
		state:    state,
		selector: selector,
		writer:   writer,
		sink:     sink,
		log:      log,
	}
}

// Run executes the evaluate proposal use case
func (uc *EvaluateProposal) Run(ctx context.Context, params EvaluateProposalParams) (*EvaluationResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading proposal",
		Spinner: true,
	})

	dao, err := uc.state.LoadDAO(ctx)
	if err != nil {
		return nil, err
	}
	proposals, _, err := uc.state.LoadProposals(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := ResolveProposal(ctx, proposals, params.Ref, uc.selector)
	if err != nil {
		return nil, err
	}
	if err := requireVerified(entry.Mismatch, entry.UTxO.Ref); err != nil {
		return nil, err
	}
	proposalScript, err := uc.state.Script(ctx, models.ScriptProposal)
	if err != nil {
		return nil, err
	}

	status, err := governance.Advance(entry.Proposal, dao.Config, uc.state.Now())
	if err != nil {
		return nil, err
	}

	updated := *entry.Proposal
	updated.Status = status

	plan := newPlan(planEvaluate)
	plan.Identifiers["proposal"] = entry.ID
	plan.Spends = append(plan.Spends, models.SpendEntry{
		Ref:      entry.UTxO.Ref,
		Redeemer: codec.ProposalEvaluateRedeemer(),
	})
	plan.AddReferenceInput(&dao.UTxO.Ref)
	addScriptReferences(plan, proposalScript)
	plan.Outputs = append(plan.Outputs, models.OutputSpec{
		Address: entry.UTxO.Address,
		Value:   entry.UTxO.Value.Clone(),
		Datum:   codec.EncodeProposal(&updated),
	})
	plan.ValidFromMs = entry.Proposal.EndTimeMs

	uc.log.Debug("planned evaluation", "proposal", entry.ID, "status", status)

	result := &EvaluationResult{
		PlanResult: PlanResult{Plan: plan},
		Proposal:   entry,
		Status:     status,
	}
	if !params.DryRun {
		result.Path, err = uc.writer.WritePlan(ctx, planName("evaluate", entry.ID), plan)
		if err != nil {
			return nil, fmt.Errorf("failed to write plan: %w", err)
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Evaluation planned",
	})
	return result, nil
}
