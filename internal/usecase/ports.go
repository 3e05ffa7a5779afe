package usecase

import (
	"context"
	"time"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/config"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// UTxOSource provides the unspent outputs reported by the indexing service
type UTxOSource interface {
	UTxOsAt(ctx context.Context, address cardano.Address) ([]*models.UTxO, error)
	UTxO(ctx context.Context, ref cardano.OutputReference) (*models.UTxO, error)
}

// ExecutionIndex reports whether an action was already executed. Answers come
// from a history scan and may lag behind the ledger.
type ExecutionIndex interface {
	IsExecuted(ctx context.Context, actionID cardano.Hash32) (bool, error)
}

// ExecutionRecorder records actions whose execution was submitted
type ExecutionRecorder interface {
	MarkExecuted(ctx context.Context, actionID cardano.Hash32) error
}

// ScriptRegistry resolves the deployed validators of the DAO. A missing script
// is a *domain.ConfigurationError.
type ScriptRegistry interface {
	Script(ctx context.Context, role models.ScriptRole) (*models.Script, error)
}

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// PlanWriter persists a transaction plan for the assembler and returns its location
type PlanWriter interface {
	WritePlan(ctx context.Context, name string, plan *models.TxPlan) (string, error)
}

// ProposalSelector handles interactive selection of proposals
type ProposalSelector interface {
	SelectProposal(ctx context.Context, proposals []*ProposalEntry, prompt string) (*ProposalEntry, error)
}

// LocalConfigStore manages the per-checkout defaults file
type LocalConfigStore interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, config *config.LocalConfig) error
	GetPath() string
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Use case result types

// ProposalEntry is a proposal found on chain with its derived identifier.
// Mismatch is set when the proposal token does not carry the derived id.
type ProposalEntry struct {
	ID       cardano.Hash32
	UTxO     *models.UTxO
	Proposal *models.Proposal
	Mismatch error
}

// ActionEntry is an action found on chain with its derived identifier
type ActionEntry struct {
	ID       cardano.Hash32
	UTxO     *models.UTxO
	Action   *models.Action
	Executed bool
	Mismatch error
}

// InvalidRecord is an output at a governance script whose datum could not be decoded
type InvalidRecord struct {
	Ref    cardano.OutputReference
	Reason string
}

// ProposalListResult contains the result of listing proposals
type ProposalListResult struct {
	Proposals []*ProposalEntry
	Invalid   []InvalidRecord
	Summary   ProposalSummary
}

// ProposalSummary provides summary statistics
type ProposalSummary struct {
	Total      int
	ByStatus   map[models.StatusKind]int
	Mismatched int
}

// PlanResult is returned by every use case that prepares a transaction
type PlanResult struct {
	Plan *models.TxPlan
	Path string
}
