//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/trebuchet-org/tally-cli/internal/adapters"
	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/logging"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Shared chain state
		usecase.NewGovernanceState,

		// Use cases
		usecase.NewShowDAO,
		usecase.NewListProposals,
		usecase.NewShowProposal,
		usecase.NewListActions,
		usecase.NewShowAction,
		usecase.NewCreateProposal,
		usecase.NewCastVote,
		usecase.NewEvaluateProposal,
		usecase.NewExecuteAction,
		usecase.NewMarkExecuted,
		usecase.NewDeriveIdentifiers,
		usecase.NewDecodeDatum,
		usecase.NewEncodeDAOConfig,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,

		// App
		NewApp,
	)
	return nil, nil
}
