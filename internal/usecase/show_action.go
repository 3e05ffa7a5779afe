package usecase

import "context"

// ShowActionParams contains parameters for showing an action
type ShowActionParams struct {
	// Ref is an action id prefix
	Ref string
}

// ShowAction is the use case for inspecting one treasury action
type ShowAction struct {
	state *GovernanceState
	sink  ProgressSink
}

// NewShowAction creates a new ShowAction use case
func NewShowAction(state *GovernanceState, sink ProgressSink) *ShowAction {
	return &ShowAction{state: state, sink: sink}
}

// Run executes the show action use case
func (uc *ShowAction) Run(ctx context.Context, params ShowActionParams) (*ActionEntry, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading actions",
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

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "complete", Message: "Action loaded"})
	return entry, nil
}
