package models

import (
	"fmt"
	"time"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
)

// StatusKind is the lifecycle stage of a proposal
type StatusKind string

const (
	StatusActive             StatusKind = "active"
	StatusReadyForEvaluation StatusKind = "ready"
	StatusFailedThreshold    StatusKind = "failed_threshold"
	StatusFailedQuorum       StatusKind = "failed_quorum"
	StatusPassed             StatusKind = "passed"
)

// ProposalStatus is the status of a proposal. WinningOption is only meaningful for Passed.
type ProposalStatus struct {
	Kind          StatusKind `json:"kind"`
	WinningOption uint32     `json:"winningOption,omitempty"`
}

var (
	Active             = ProposalStatus{Kind: StatusActive}
	ReadyForEvaluation = ProposalStatus{Kind: StatusReadyForEvaluation}
	FailedThreshold    = ProposalStatus{Kind: StatusFailedThreshold}
	FailedQuorum       = ProposalStatus{Kind: StatusFailedQuorum}
)

// Passed returns the status of a proposal won by option
func Passed(option uint32) ProposalStatus {
	return ProposalStatus{Kind: StatusPassed, WinningOption: option}
}

// IsTerminal reports whether the status can no longer change
func (s ProposalStatus) IsTerminal() bool {
	switch s.Kind {
	case StatusPassed, StatusFailedQuorum, StatusFailedThreshold:
		return true
	default:
		return false
	}
}

func (s ProposalStatus) String() string {
	if s.Kind == StatusPassed {
		return fmt.Sprintf("passed(%d)", s.WinningOption)
	}
	return string(s.Kind)
}

// ParseStatusKind parses the textual status used in filters
func ParseStatusKind(s string) (StatusKind, error) {
	switch StatusKind(s) {
	case StatusActive, StatusReadyForEvaluation, StatusFailedThreshold, StatusFailedQuorum, StatusPassed:
		return StatusKind(s), nil
	}
	return "", fmt.Errorf("unknown proposal status %q (valid: active, ready, passed, failed_quorum, failed_threshold)", s)
}

// Proposal is a governance proposal record
type Proposal struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tally       []uint64       `json:"tally"`
	EndTimeMs   uint64         `json:"endTimeMs"`
	Status      ProposalStatus `json:"status"`

	// Identifier is the seed output consumed when the proposal was created
	Identifier cardano.OutputReference `json:"identifier"`
}

// EndTime returns the end of the voting period
func (p *Proposal) EndTime() time.Time {
	return time.UnixMilli(int64(p.EndTimeMs)).UTC()
}

// Options returns the number of voting options
func (p *Proposal) Options() int {
	return len(p.Tally)
}

// ProjectStatus returns the status seen by readers at now: a stored Active status
// reads as ReadyForEvaluation once the end time has been reached.
func ProjectStatus(stored ProposalStatus, endTimeMs uint64, now time.Time) ProposalStatus {
	if stored.Kind == StatusActive && endTimeMs <= TimeMs(now) {
		return ReadyForEvaluation
	}
	return stored
}

// TimeMs converts a wall clock time to milliseconds since epoch, clamping pre-epoch times to zero
func TimeMs(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}
