package usecase

import (
	"context"
)

// ShowDAO is the use case for showing the on-chain DAO configuration
type ShowDAO struct {
	state *GovernanceState
	sink  ProgressSink
}

// NewShowDAO creates a new ShowDAO use case
func NewShowDAO(state *GovernanceState, sink ProgressSink) *ShowDAO {
	return &ShowDAO{
		state: state,
		sink:  sink,
	}
}

// Run executes the show DAO use case
func (uc *ShowDAO) Run(ctx context.Context) (*DAOState, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading DAO configuration",
		Spinner: true,
	})

	dao, err := uc.state.LoadDAO(ctx)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "DAO configuration loaded",
	})

	return dao, nil
}
