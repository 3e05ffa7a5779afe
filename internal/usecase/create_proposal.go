package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/governance"
	"github.com/trebuchet-org/tally-cli/internal/domain/identifier"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// CreateProposalParams contains parameters for creating a proposal
type CreateProposalParams struct {
	Draft *ProposalDraft
	// DryRun builds the plan without writing it
	DryRun bool
}

// CreateProposal is the use case for planning a new proposal with its actions
type CreateProposal struct {
	config *config.RuntimeConfig
	state  *GovernanceState
	utxos  UTxOSource
	writer PlanWriter
	sink   ProgressSink
	log    *slog.Logger
}

// NewCreateProposal creates a new CreateProposal use case
func NewCreateProposal(
	cfg *config.RuntimeConfig,
	state *GovernanceState,
	utxos UTxOSource,
	writer PlanWriter,
	sink ProgressSink,
	log *slog.Logger,
) *CreateProposal {
	return &CreateProposal{
		config: cfg,
		state:  state,
		utxos:  utxos,
		writer: writer,
		sink:   sink,
		log:    log,
	}
}

// Run executes the create proposal use case
func (uc *CreateProposal) Run(ctx context.Context, params CreateProposalParams) (*PlanResult, error) {
	draft := params.Draft
	if draft == nil {
		return nil, fmt.Errorf("%w: no draft given", domain.ErrInvalidDraft)
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading DAO configuration",
		Spinner: true,
	})

	dao, err := uc.state.LoadDAO(ctx)
	if err != nil {
		return nil, err
	}
	proposalScript, err := uc.state.Script(ctx, models.ScriptProposal)
	if err != nil {
		return nil, err
	}
	if !dao.Config.AllowsProposalScript(proposalScript.Hash) {
		return nil, &domain.ConfigurationError{
			Item:   "scripts.proposal",
			Reason: fmt.Sprintf("script %s is not whitelisted by DAO %q", proposalScript.Hash, dao.Config.Name),
		}
	}

	durMs := durationMs(draft.Duration)
	if err := governance.ValidateDuration(dao.Config, durMs); err != nil {
		return nil, err
	}

	creator, err := parseDraftAddress("creator", draft.Creator, uc.config.Network)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "creator",
		Message: "Checking creator voting power",
		Spinner: true,
	})

	creatorUTxOs, err := uc.state.Outputs(ctx, creator)
	if err != nil {
		return nil, err
	}
	power, holders := VotingPower(creatorUTxOs, dao.Config.GovernanceToken)
	if power < dao.Config.MinProposalCreateVotes {
		return nil, fmt.Errorf("%w: creator holds %d votes, %d required to create a proposal",
			domain.ErrInvalidDraft, power, dao.Config.MinProposalCreateVotes)
	}

	seed, err := uc.resolveSeed(ctx, draft, creatorUTxOs)
	if err != nil {
		return nil, err
	}

	now := uc.state.Now()
	nowMs := models.TimeMs(now)
	proposalID := identifier.DeriveProposalID(seed.Ref)
	proposal := &models.Proposal{
		Name:        draft.Name,
		Description: draft.Description,
		Tally:       make([]uint64, draft.Options),
		EndTimeMs:   nowMs + durMs,
		Status:      models.Active,
		Identifier:  seed.Ref,
	}

	plan := newPlan(planCreateProposal)
	plan.Identifiers["proposal"] = proposalID
	addInputs(plan, seed)
	addInputs(plan, holders...)
	plan.AddReferenceInput(&dao.UTxO.Ref)
	addScriptReferences(plan, proposalScript)

	proposalToken := identifier.ProposalToken(proposalScript.Hash, proposalID)
	plan.Mints = append(plan.Mints, models.MintEntry{
		Asset:    proposalToken,
		Quantity: 1,
		Redeemer: codec.ProposalCreateRedeemer(seed.Ref),
	})
	plan.Outputs = append(plan.Outputs, models.OutputSpec{
		Address: proposalScript.Address,
		Value:   cardano.Lovelace(uc.config.MinOutputLovelace).WithAsset(proposalToken, 1),
		Datum:   codec.EncodeProposal(proposal),
	})

	if len(draft.Actions) > 0 {
		if err := uc.planActions(ctx, plan, draft, dao.Config, proposalScript.Hash, proposalID, proposal.EndTimeMs); err != nil {
			return nil, err
		}
	}

	plan.ValidFromMs = nowMs
	plan.ValidToMs = nowMs + durationMs(uc.config.TxValidity)

	uc.log.Debug("planned proposal", "id", proposalID, "seed", seed.Ref, "actions", len(draft.Actions))

	result := &PlanResult{Plan: plan}
	if !params.DryRun {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "writing",
			Message: "Writing transaction plan",
		})
		result.Path, err = uc.writer.WritePlan(ctx, planName("create", proposalID), plan)
		if err != nil {
			return nil, fmt.Errorf("failed to write plan: %w", err)
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Proposal planned",
	})
	return result, nil
}

// resolveSeed returns the output whose reference becomes the proposal id.
// Without an explicit seed the first creator output is consumed.
func (uc *CreateProposal) resolveSeed(ctx context.Context, draft *ProposalDraft, creatorUTxOs []*models.UTxO) (*models.UTxO, error) {
	ref, err := draft.SeedRef()
	if err != nil {
		return nil, err
	}
	if ref == nil {
		if len(creatorUTxOs) == 0 {
			return nil, fmt.Errorf("%w: creator has no outputs to use as seed", domain.ErrInvalidDraft)
		}
		return creatorUTxOs[0], nil
	}

	seed, err := uc.utxos.UTxO(ctx, *ref)
	if err != nil {
		return nil, fmt.Errorf("failed to look up seed %s: %w", ref, err)
	}
	return seed, nil
}

func (uc *CreateProposal) planActions(
	ctx context.Context,
	plan *models.TxPlan,
	draft *ProposalDraft,
	dao *models.DAOConfig,
	proposalScript cardano.ScriptHash,
	proposalID cardano.Hash32,
	endTimeMs uint64,
) error {
	actionScript, err := uc.state.Script(ctx, models.ScriptAction)
	if err != nil {
		return err
	}
	if !dao.AllowsActionScript(actionScript.Hash) {
		return &domain.ConfigurationError{
			Item:   "scripts.action",
			Reason: fmt.Sprintf("script %s is not whitelisted by DAO %q", actionScript.Hash, dao.Name),
		}
	}
	addScriptReferences(plan, actionScript)

	for i, ad := range draft.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		treasury, err := uc.treasuryAddress(ctx, field, ad.Treasury)
		if err != nil {
			return err
		}

		action := &models.Action{
			Name:             ad.Name,
			Description:      ad.Description,
			ActivationTimeMs: ad.activationMs(endTimeMs),
			Identifier: models.ActionIdentifier{
				ProposalScriptHash: proposalScript,
				ProposalIdentifier: proposalID,
				ActionIndex:        uint32(i),
			},
			Option:          ad.Option,
			TreasuryAddress: treasury,
		}
		if action.ActivationTimeMs < endTimeMs {
			return fmt.Errorf("%w: %s activates before voting ends", domain.ErrInvalidDraft, field)
		}
		for j := range ad.Targets {
			target, err := ad.Targets[j].toTarget(fmt.Sprintf("%s.targets[%d]", field, j), uc.config.Network)
			if err != nil {
				return err
			}
			action.Targets = append(action.Targets, target)
		}

		actionID := identifier.DeriveActionID(action.Identifier)
		token := identifier.ActionToken(actionScript.Hash, actionID)
		plan.Identifiers[fmt.Sprintf("action[%d]", i)] = actionID
		plan.Mints = append(plan.Mints, models.MintEntry{
			Asset:    token,
			Quantity: 1,
			Redeemer: codec.ActionCreateRedeemer(),
		})
		plan.Outputs = append(plan.Outputs, models.OutputSpec{
			Address: actionScript.Address,
			Value:   cardano.Lovelace(uc.config.MinOutputLovelace).WithAsset(token, 1),
			Datum:   codec.EncodeAction(action),
		})
	}
	return nil
}

func (uc *CreateProposal) treasuryAddress(ctx context.Context, field, s string) (cardano.Address, error) {
	if s != "" {
		return parseDraftAddress(field+".treasury", s, uc.config.Network)
	}
	treasury, err := uc.state.Script(ctx, models.ScriptTreasury)
	if err != nil {
		return cardano.Address{}, err
	}
	return treasury.Address, nil
}
