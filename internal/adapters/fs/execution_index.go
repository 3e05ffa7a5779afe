package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// ExecutedFile lists the action identifiers the indexer has seen executed
const ExecutedFile = "executed.json"

type executedState struct {
	Executed []cardano.Hash32 `json:"executed"`
}

// ExecutionIndexAdapter implements ExecutionIndex over a JSON file. Its
// answers are only as fresh as the last export.
type ExecutionIndexAdapter struct {
	path string
}

// NewExecutionIndexAdapter creates a new ExecutionIndexAdapter
func NewExecutionIndexAdapter(cfg *config.RuntimeConfig) *ExecutionIndexAdapter {
	return &ExecutionIndexAdapter{
		path: filepath.Join(cfg.DataDir, ExecutedFile),
	}
}

// IsExecuted reports whether an action id is recorded as executed
func (s *ExecutionIndexAdapter) IsExecuted(ctx context.Context, id cardano.Hash32) (bool, error) {
	state, err := s.load()
	if err != nil {
		return false, err
	}
	return slices.Contains(state.Executed, id), nil
}

// MarkExecuted records an action id as executed
func (s *ExecutionIndexAdapter) MarkExecuted(ctx context.Context, id cardano.Hash32) error {
	state, err := s.load()
	if err != nil {
		return err
	}
	if slices.Contains(state.Executed, id) {
		return nil
	}
	state.Executed = append(state.Executed, id)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution index: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write execution index: %w", err)
	}
	return nil
}

func (s *ExecutionIndexAdapter) load() (*executedState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &executedState{}, nil
		}
		return nil, fmt.Errorf("failed to read execution index: %w", err)
	}

	var state executedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse execution index: %w", err)
	}
	return &state, nil
}

// Ensure ExecutionIndexAdapter implements ExecutionIndex
var _ usecase.ExecutionIndex = (*ExecutionIndexAdapter)(nil)
