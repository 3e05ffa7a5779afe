package app

import (
	"log/slog"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Logger *slog.Logger

	// Read use cases
	ShowDAO       *usecase.ShowDAO
	ListProposals *usecase.ListProposals
	ShowProposal  *usecase.ShowProposal
	ListActions   *usecase.ListActions
	ShowAction    *usecase.ShowAction

	// Plan use cases
	CreateProposal   *usecase.CreateProposal
	CastVote         *usecase.CastVote
	EvaluateProposal *usecase.EvaluateProposal
	ExecuteAction    *usecase.ExecuteAction
	MarkExecuted     *usecase.MarkExecuted

	// Codec tools
	DeriveIdentifiers *usecase.DeriveIdentifiers
	DecodeDatum       *usecase.DecodeDatum
	EncodeDAOConfig   *usecase.EncodeDAOConfig

	// Local config
	ShowConfig   *usecase.ShowConfig
	SetConfig    *usecase.SetConfig
	RemoveConfig *usecase.RemoveConfig
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	showDAO *usecase.ShowDAO,
	listProposals *usecase.ListProposals,
	showProposal *usecase.ShowProposal,
	listActions *usecase.ListActions,
	showAction *usecase.ShowAction,
	createProposal *usecase.CreateProposal,
	castVote *usecase.CastVote,
	evaluateProposal *usecase.EvaluateProposal,
	executeAction *usecase.ExecuteAction,
	markExecuted *usecase.MarkExecuted,
	deriveIdentifiers *usecase.DeriveIdentifiers,
	decodeDatum *usecase.DecodeDatum,
	encodeDAOConfig *usecase.EncodeDAOConfig,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
) (*App, error) {
	return &App{
		Config:            cfg,
		Logger:            log,
		ShowDAO:           showDAO,
		ListProposals:     listProposals,
		ShowProposal:      showProposal,
		ListActions:       listActions,
		ShowAction:        showAction,
		CreateProposal:    createProposal,
		CastVote:          castVote,
		EvaluateProposal:  evaluateProposal,
		ExecuteAction:     executeAction,
		MarkExecuted:      markExecuted,
		DeriveIdentifiers: deriveIdentifiers,
		DecodeDatum:       decodeDatum,
		EncodeDAOConfig:   encodeDAOConfig,
		ShowConfig:        showConfig,
		SetConfig:         setConfig,
		RemoveConfig:      removeConfig,
	}, nil
}
