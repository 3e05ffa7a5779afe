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
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// ExecuteActionParams contains parameters for executing an action
type ExecuteActionParams struct {
	// Ref is an action id prefix
	Ref    string
	DryRun bool
}

// ExecutionResult is the plan of an action execution
type ExecutionResult struct {
	PlanResult
	Action   *ActionEntry
	Proposal *ProposalEntry
	// Treasury are the treasury outputs the plan spends
	Treasury []*models.UTxO
	Change   cardano.Value
}

// ExecuteAction is the use case for paying out a treasury action of a passed proposal
type ExecuteAction struct {
	config *config.RuntimeConfig
	state  *GovernanceState
	writer PlanWriter
	sink   ProgressSink
	log    *slog.Logger
}

// NewExecuteAction creates a new ExecuteAction use case
func NewExecuteAction(
	cfg *config.RuntimeConfig,
	state *GovernanceState,
	writer PlanWriter,
	sink ProgressSink,
	log *slog.Logger,
) *ExecuteAction {
	return &ExecuteAction{
		config: cfg,
		state:  state,
		writer: writer,
		sink:   sink,
		log:    log,
	}
}

// Run executes the execute action use case
func (uc *ExecuteAction) Run(ctx context.Context, params ExecuteActionParams) (*ExecutionResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading action",
		Spinner: true,
	})

	actions, _, err := uc.state.LoadActions(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := ResolveAction(actions, params.Ref)
	if err != nil {
		return nil, err
	}
	if entry.Executed {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExecuted, entry.ID)
	}
	if err := requireVerified(entry.Mismatch, entry.UTxO.Ref); err != nil {
		return nil, err
	}

	proposals, _, err := uc.state.LoadProposals(ctx)
	if err != nil {
		return nil, err
	}
	proposal, err := findProposal(proposals, entry.Action.Identifier.ProposalIdentifier)
	if err != nil {
		return nil, err
	}
	if err := requireVerified(proposal.Mismatch, proposal.UTxO.Ref); err != nil {
		return nil, err
	}

	scripts, err := uc.scripts(ctx)
	if err != nil {
		return nil, err
	}
	if got := entry.Action.Identifier.ProposalScriptHash; got != scripts.proposal.Hash {
		return nil, &domain.IdentifierMismatchError{
			Entity:   "proposal script",
			Expected: scripts.proposal.Hash.String(),
			Actual:   got.String(),
		}
	}

	now := uc.state.Now()
	if err := governance.CanExecute(entry.Action, proposal.Proposal, now); err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "treasury",
		Message: "Selecting treasury outputs",
		Spinner: true,
	})

	required := entry.Action.Total()
	treasuryUTxOs, err := uc.state.Outputs(ctx, entry.Action.TreasuryAddress)
	if err != nil {
		return nil, err
	}
	selected, selectedValue, err := selectTreasury(treasuryUTxOs, required)
	if err != nil {
		return nil, err
	}

	plan := newPlan(planExecuteAction)
	plan.Identifiers["proposal"] = proposal.ID
	plan.Identifiers["action"] = entry.ID
	plan.Spends = append(plan.Spends, models.SpendEntry{
		Ref:      entry.UTxO.Ref,
		Redeemer: codec.ActionExecuteRedeemer(),
	})
	for _, u := range selected {
		plan.Spends = append(plan.Spends, models.SpendEntry{
			Ref:      u.Ref,
			Redeemer: codec.TreasurySpendRedeemer(),
		})
	}
	plan.AddReferenceInput(&proposal.UTxO.Ref)
	addScriptReferences(plan, scripts.action, scripts.treasury)

	token := identifier.ActionToken(scripts.action.Hash, entry.ID)
	plan.Mints = append(plan.Mints, models.MintEntry{
		Asset:    token,
		Quantity: -1,
		Redeemer: codec.ActionExecuteRedeemer(),
	})

	for i := range entry.Action.Targets {
		out, err := targetOutput(&entry.Action.Targets[i])
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		plan.Outputs = append(plan.Outputs, out)
	}

	// The action deposit minus its burnt token goes back to the treasury.
	change, err := selectedValue.Sub(required)
	if err != nil {
		return nil, err
	}
	deposit, err := entry.UTxO.Value.Sub(cardano.Value{Assets: cardano.Assets{token: 1}})
	if err != nil {
		return nil, fmt.Errorf("action output does not hold its token: %w", err)
	}
	change = change.Add(deposit)
	if change.Lovelace > 0 || len(change.Assets) > 0 {
		plan.Outputs = append(plan.Outputs, models.OutputSpec{
			Address: entry.Action.TreasuryAddress,
			Value:   change,
		})
	}

	nowMs := models.TimeMs(now)
	plan.ValidFromMs = entry.Action.ActivationTimeMs
	plan.ValidToMs = max(nowMs, entry.Action.ActivationTimeMs) + durationMs(uc.config.TxValidity)

	uc.log.Debug("planned execution", "action", entry.ID, "treasury_inputs", len(selected))

	result := &ExecutionResult{
		PlanResult: PlanResult{Plan: plan},
		Action:     entry,
		Proposal:   proposal,
		Treasury:   selected,
		Change:     change,
	}
	if !params.DryRun {
		result.Path, err = uc.writer.WritePlan(ctx, planName("execute", entry.ID), plan)
		if err != nil {
			return nil, fmt.Errorf("failed to write plan: %w", err)
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Execution planned",
	})
	return result, nil
}

type executionScripts struct {
	proposal *models.Script
	action   *models.Script
	treasury *models.Script
}

func (uc *ExecuteAction) scripts(ctx context.Context) (*executionScripts, error) {
	var out executionScripts
	var err error
	if out.proposal, err = uc.state.Script(ctx, models.ScriptProposal); err != nil {
		return nil, err
	}
	if out.action, err = uc.state.Script(ctx, models.ScriptAction); err != nil {
		return nil, err
	}
	if out.treasury, err = uc.state.Script(ctx, models.ScriptTreasury); err != nil {
		return nil, err
	}
	return &out, nil
}

// selectTreasury picks outputs in reference order until they cover required
func selectTreasury(utxos []*models.UTxO, required cardano.Value) ([]*models.UTxO, cardano.Value, error) {
	var selected []*models.UTxO
	var total cardano.Value
	for _, u := range utxos {
		if total.Covers(required) {
			break
		}
		if !contributes(u.Value, total, required) {
			continue
		}
		selected = append(selected, u)
		total = total.Add(u.Value)
	}
	if !total.Covers(required) {
		return nil, cardano.Value{}, fmt.Errorf("%w: need %d lovelace and %d assets, treasury outputs hold %d lovelace",
			domain.ErrInsufficientFunds, required.Lovelace, len(required.Assets), total.Lovelace)
	}
	return selected, total, nil
}

// contributes reports whether v adds something still missing from total
func contributes(v, total, required cardano.Value) bool {
	if total.Lovelace < required.Lovelace && v.Lovelace > 0 {
		return true
	}
	for id, qty := range required.Assets {
		if total.Assets[id] < qty && v.Assets[id] > 0 {
			return true
		}
	}
	return false
}

func targetOutput(t *models.Target) (models.OutputSpec, error) {
	out := models.OutputSpec{Address: t.Address, Value: t.Value()}
	if t.Datum.Present {
		datum, err := plutus.Unmarshal(t.Datum.Inline)
		if err != nil {
			return models.OutputSpec{}, fmt.Errorf("inline datum: %w", err)
		}
		out.Datum = datum
	}
	return out, nil
}
