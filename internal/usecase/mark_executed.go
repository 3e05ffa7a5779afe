package usecase

import (
	"context"
	"fmt"
)

// MarkExecutedParams contains parameters for recording an execution
type MarkExecutedParams struct {
	// Ref is an action id prefix
	Ref string
}

// MarkExecuted is the use case for recording that an action's execution was
// submitted, so later listings treat it as executed before the index catches up
type MarkExecuted struct {
	state    *GovernanceState
	recorder ExecutionRecorder
}

// NewMarkExecuted creates a new MarkExecuted use case
func NewMarkExecuted(state *GovernanceState, recorder ExecutionRecorder) *MarkExecuted {
	return &MarkExecuted{state: state, recorder: recorder}
}

// Run executes the mark executed use case
func (uc *MarkExecuted) Run(ctx context.Context, params MarkExecutedParams) (*ActionEntry, error) {
	actions, _, err := uc.state.LoadActions(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := ResolveAction(actions, params.Ref)
	if err != nil {
		return nil, err
	}
	if entry.Executed {
		return entry, nil
	}
	if err := uc.recorder.MarkExecuted(ctx, entry.ID); err != nil {
		return nil, fmt.Errorf("failed to record execution: %w", err)
	}
	entry.Executed = true
	return entry, nil
}
