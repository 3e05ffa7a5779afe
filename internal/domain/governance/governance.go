// Package governance holds the proposal lifecycle rules: status projection,
// evaluation of a closed vote and the transitions a proposal may take.
package governance

import (
	"fmt"
	"math/big"
	"time"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

// TotalVotes sums a tally without overflowing
func TotalVotes(tally []uint64) *big.Int {
	total := new(big.Int)
	for _, votes := range tally {
		total.Add(total, new(big.Int).SetUint64(votes))
	}
	return total
}

// Winner returns the option with the most votes. On exact ties the lowest index wins.
// ok is false for an empty tally.
func Winner(tally []uint64) (option uint32, votes uint64, ok bool) {
	if len(tally) == 0 {
		return 0, 0, false
	}
	for i, v := range tally {
		if v > votes {
			option, votes = uint32(i), v
		}
	}
	return option, votes, true
}

// WinningShare returns the winning option's exact share of the total vote as a
// fraction in [0, 1]. It is zero when no votes were cast.
func WinningShare(tally []uint64) *big.Rat {
	total := TotalVotes(tally)
	_, votes, ok := Winner(tally)
	if !ok || total.Sign() == 0 {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac(new(big.Int).SetUint64(votes), total)
}

// Evaluate computes the terminal status of a closed proposal. The winning share
// is compared as maxVotes*100 >= threshold*total so no rounding takes place.
// A tally with no votes that still meets quorum fails the threshold.
func Evaluate(tally []uint64, quorum uint64, thresholdPercent uint32) models.ProposalStatus {
	total := TotalVotes(tally)
	if total.Cmp(new(big.Int).SetUint64(quorum)) < 0 {
		return models.FailedQuorum
	}

	option, votes, ok := Winner(tally)
	if !ok || total.Sign() == 0 {
		return models.FailedThreshold
	}

	lhs := new(big.Int).Mul(new(big.Int).SetUint64(votes), big.NewInt(100))
	rhs := new(big.Int).Mul(new(big.Int).SetUint64(uint64(thresholdPercent)), total)
	if lhs.Cmp(rhs) >= 0 {
		return models.Passed(option)
	}
	return models.FailedThreshold
}

// Project returns the status a reader sees at now
func Project(stored models.ProposalStatus, endTimeMs uint64, now time.Time) models.ProposalStatus {
	return models.ProjectStatus(stored, endTimeMs, now)
}

// CanTransition reports whether a proposal may move from one status to another.
// Transitions only go forward and terminal statuses never change.
func CanTransition(from, to models.ProposalStatus) bool {
	switch from.Kind {
	case models.StatusActive:
		return to.Kind == models.StatusReadyForEvaluation || to.IsTerminal()
	case models.StatusReadyForEvaluation:
		return to.IsTerminal()
	default:
		return false
	}
}

// Advance evaluates a proposal that is ready and returns its terminal status
func Advance(p *models.Proposal, cfg *models.DAOConfig, now time.Time) (models.ProposalStatus, error) {
	current := Project(p.Status, p.EndTimeMs, now)
	switch {
	case current.IsTerminal():
		return models.ProposalStatus{}, fmt.Errorf("%w: %s", domain.ErrAlreadyEvaluated, current)
	case current.Kind != models.StatusReadyForEvaluation:
		return models.ProposalStatus{}, fmt.Errorf("%w: voting ends at %s", domain.ErrProposalNotReady, p.EndTime().Format(time.RFC3339))
	}

	next := Evaluate(p.Tally, cfg.QuorumVotes, cfg.ThresholdPercent)
	if !CanTransition(current, next) {
		return models.ProposalStatus{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, next)
	}
	return next, nil
}

// CastVote returns a new tally with weight added to option. Votes are only
// accepted while the proposal is Active and before its end time.
func CastVote(p *models.Proposal, option uint32, weight uint64, now time.Time) ([]uint64, error) {
	status := Project(p.Status, p.EndTimeMs, now)
	if status.Kind != models.StatusActive {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrProposalClosed, status)
	}
	if int(option) >= len(p.Tally) {
		return nil, fmt.Errorf("%w: option %d, proposal has %d options", domain.ErrInvalidOption, option, len(p.Tally))
	}
	if weight == 0 {
		return nil, fmt.Errorf("%w: vote weight must be positive", domain.ErrInvalidOption)
	}
	if p.Tally[option] > ^uint64(0)-weight {
		return nil, fmt.Errorf("%w: tally of option %d would overflow", domain.ErrInvalidOption, option)
	}

	tally := append([]uint64{}, p.Tally...)
	tally[option] += weight
	return tally, nil
}

// ValidateDuration checks a voting period against the DAO limits
func ValidateDuration(cfg *models.DAOConfig, durationMs uint64) error {
	if durationMs < cfg.MinProposalDurationMs {
		return fmt.Errorf("%w: duration %s is shorter than the minimum %s",
			domain.ErrInvalidDraft, msDuration(durationMs), msDuration(cfg.MinProposalDurationMs))
	}
	if durationMs > cfg.MaxProposalDurationMs {
		return fmt.Errorf("%w: duration %s is longer than the maximum %s",
			domain.ErrInvalidDraft, msDuration(durationMs), msDuration(cfg.MaxProposalDurationMs))
	}
	return nil
}

// CanExecute reports why an action may not be executed yet, nil when it may
func CanExecute(a *models.Action, p *models.Proposal, now time.Time) error {
	status := Project(p.Status, p.EndTimeMs, now)
	if status.Kind != models.StatusPassed {
		return fmt.Errorf("%w: proposal status is %s", domain.ErrActionNotExecutable, status)
	}
	if status.WinningOption != a.Option {
		return fmt.Errorf("%w: proposal passed with option %d, action requires option %d",
			domain.ErrActionNotExecutable, status.WinningOption, a.Option)
	}
	if a.ActivationTimeMs > models.TimeMs(now) {
		return fmt.Errorf("%w: activates at %s", domain.ErrActionNotExecutable, a.ActivationTime().Format(time.RFC3339))
	}
	return nil
}

func msDuration(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
