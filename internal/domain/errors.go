package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when an identifier prefix matches several records
	ErrAmbiguous = errors.New("ambiguous identifier")

	// ErrProposalNotReady is returned when evaluating a proposal whose voting period is still open
	ErrProposalNotReady = errors.New("proposal is not ready for evaluation")

	// ErrAlreadyEvaluated is returned when a proposal already holds a terminal status
	ErrAlreadyEvaluated = errors.New("proposal already evaluated")

	// ErrProposalClosed is returned when voting on a proposal that no longer accepts votes
	ErrProposalClosed = errors.New("proposal is closed for voting")

	// ErrInvalidOption is returned when a voting option index is out of range
	ErrInvalidOption = errors.New("invalid voting option")

	// ErrInvalidTransition is returned for a status change the lifecycle does not allow
	ErrInvalidTransition = errors.New("invalid proposal status transition")

	// ErrActionNotExecutable is returned when an action's proposal did not pass with its option
	ErrActionNotExecutable = errors.New("action is not executable")

	// ErrAlreadyExecuted is returned when an action was already executed
	ErrAlreadyExecuted = errors.New("action already executed")

	// ErrInsufficientFunds is returned when the treasury cannot cover the action targets
	ErrInsufficientFunds = errors.New("insufficient treasury funds")

	// ErrInvalidDraft is returned when a proposal draft fails validation
	ErrInvalidDraft = errors.New("invalid proposal draft")
)

// DecodeErrorKind classifies a decode failure
type DecodeErrorKind string

const (
	MalformedAddress      DecodeErrorKind = "malformed address"
	InvalidDAORecord      DecodeErrorKind = "invalid DAO record"
	InvalidProposalRecord DecodeErrorKind = "invalid proposal record"
	InvalidActionRecord   DecodeErrorKind = "invalid action record"
	UnexpectedTag         DecodeErrorKind = "unexpected tag"
	MissingField          DecodeErrorKind = "missing field"
)

// Kind sentinels for errors.Is
var (
	ErrMalformedAddress      = &DecodeError{Kind: MalformedAddress}
	ErrInvalidDAORecord      = &DecodeError{Kind: InvalidDAORecord}
	ErrInvalidProposalRecord = &DecodeError{Kind: InvalidProposalRecord}
	ErrInvalidActionRecord   = &DecodeError{Kind: InvalidActionRecord}
	ErrUnexpectedTag         = &DecodeError{Kind: UnexpectedTag}
	ErrMissingField          = &DecodeError{Kind: MissingField}
)

// DecodeError is returned when a data tree does not have the shape a decoder expects.
// Callers should treat the record as absent.
type DecodeError struct {
	Kind   DecodeErrorKind
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Path != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Path)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches any DecodeError of the same kind
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

// IdentifierMismatchError is returned when a recomputed identifier differs from
// the one embedded in chain state. It points at wrong script or DAO parameters
// or at an incompatible validator.
type IdentifierMismatchError struct {
	Entity   string
	Expected string
	Actual   string
}

func (e *IdentifierMismatchError) Error() string {
	return fmt.Sprintf("%s identifier mismatch: expected %s, found %s", e.Entity, e.Expected, e.Actual)
}

// ConfigurationError aborts the current operation when a required script or
// parameter is missing or inconsistent.
type ConfigurationError struct {
	Item   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Item, e.Reason)
}
