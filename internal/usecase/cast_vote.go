package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/governance"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// CastVoteParams contains parameters for casting a vote
type CastVoteParams struct {
	Ref    string
	Option uint32
	// Voter is the address whose governance tokens weigh the vote
	Voter  string
	DryRun bool
}

// VoteResult is the plan of a vote with the weight it carries
type VoteResult struct {
	PlanResult
	Proposal *ProposalEntry
	Weight   uint64
	Tally    []uint64
}

// CastVote is the use case for planning a vote on an active proposal
type CastVote struct {
	config   *config.RuntimeConfig
	state    *GovernanceState
	selector ProposalSelector
	writer   PlanWriter
	sink     ProgressSink
	log      *slog.Logger
}

// NewCastVote creates a new CastVote use case
func NewCastVote(
	cfg *config.RuntimeConfig,
	state *GovernanceState,
	selector ProposalSelector,
	writer PlanWriter,
	sink ProgressSink,
	log *slog.Logger,
) *CastVote {
	return &CastVote{
		config:   cfg,
		state:    state,
		selector: selector,
		writer:   writer,
		sink:     sink,
		log:      log,
	}
}

// Run executes the cast vote use case
func (uc *CastVote) Run(ctx context.Context, params CastVoteParams) (*VoteResult, error) {
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

	voter, err := parseDraftAddress("voter", params.Voter, uc.config.Network)
	if err != nil {
		return nil, err
	}
	voterUTxOs, err := uc.state.Outputs(ctx, voter)
	if err != nil {
		return nil, err
	}
	weight, holders := VotingPower(voterUTxOs, dao.Config.GovernanceToken)

	now := uc.state.Now()
	tally, err := governance.CastVote(entry.Proposal, params.Option, weight, now)
	if err != nil {
		return nil, err
	}

	updated := *entry.Proposal
	updated.Tally = tally
	updated.Status = models.Active

	plan := newPlan(planCastVote)
	plan.Identifiers["proposal"] = entry.ID
	plan.Spends = append(plan.Spends, models.SpendEntry{
		Ref:      entry.UTxO.Ref,
		Redeemer: codec.ProposalVoteRedeemer(params.Option),
	})
	addInputs(plan, holders...)
	plan.AddReferenceInput(&dao.UTxO.Ref)
	addScriptReferences(plan, proposalScript)
	plan.Outputs = append(plan.Outputs, models.OutputSpec{
		Address: entry.UTxO.Address,
		Value:   entry.UTxO.Value.Clone(),
		Datum:   codec.EncodeProposal(&updated),
	})

	nowMs := models.TimeMs(now)
	plan.ValidFromMs = nowMs
	plan.ValidToMs = min(nowMs+durationMs(uc.config.TxValidity), entry.Proposal.EndTimeMs)

	uc.log.Debug("planned vote", "proposal", entry.ID, "option", params.Option, "weight", weight)

	result := &VoteResult{
		PlanResult: PlanResult{Plan: plan},
		Proposal:   entry,
		Weight:     weight,
		Tally:      tally,
	}
	if !params.DryRun {
		result.Path, err = uc.writer.WritePlan(ctx, planName("vote", entry.ID), plan)
		if err != nil {
			return nil, fmt.Errorf("failed to write plan: %w", err)
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Vote planned",
	})
	return result, nil
}
