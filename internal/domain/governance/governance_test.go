package governance

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		tally     []uint64
		quorum    uint64
		threshold uint32
		want      models.ProposalStatus
	}{
		{"tie goes to lowest index", []uint64{10, 10}, 20, 50, models.Passed(0)},
		{"tie with later leader", []uint64{3, 10, 10}, 0, 40, models.Passed(1)},
		{"one below quorum", []uint64{50, 49}, 100, 10, models.FailedQuorum},
		{"exactly quorum", []uint64{50, 50}, 100, 50, models.Passed(0)},
		{"exact threshold passes", []uint64{60, 40}, 100, 60, models.Passed(0)},
		{"just under threshold", []uint64{59, 41}, 100, 60, models.FailedThreshold},
		{"winner not first", []uint64{1, 2, 97}, 100, 90, models.Passed(2)},
		{"zero threshold", []uint64{1, 1, 1}, 0, 0, models.Passed(0)},
		{"full threshold", []uint64{99, 1}, 0, 100, models.FailedThreshold},
		{"unanimous full threshold", []uint64{0, 5}, 5, 100, models.Passed(1)},
		{"no votes with zero quorum", []uint64{0, 0}, 0, 50, models.FailedThreshold},
		{"empty tally", nil, 0, 50, models.FailedThreshold},
		{"empty tally below quorum", nil, 1, 50, models.FailedQuorum},
		{
			name:      "no overflow near the uint64 limit",
			tally:     []uint64{^uint64(0), ^uint64(0) - 1},
			quorum:    ^uint64(0),
			threshold: 50,
			want:      models.Passed(0),
		},
		{
			// float64 division rounds this share up to exactly 0.6
			name:      "precision near the boundary",
			tally:     []uint64{599_999_999_999_999_999, 400_000_000_000_000_001},
			quorum:    1,
			threshold: 60,
			want:      models.FailedThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.tally, tt.quorum, tt.threshold))
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	tally := []uint64{7, 13, 13}
	first := Evaluate(tally, 10, 30)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Evaluate(tally, 10, 30))
	}
	assert.Equal(t, []uint64{7, 13, 13}, tally)
}

func TestWinner(t *testing.T) {
	option, votes, ok := Winner([]uint64{4, 9, 9, 1})
	require.True(t, ok)
	assert.Equal(t, uint32(1), option)
	assert.Equal(t, uint64(9), votes)

	_, _, ok = Winner(nil)
	assert.False(t, ok)
}

func TestWinningShare(t *testing.T) {
	assert.Zero(t, big.NewRat(3, 5).Cmp(WinningShare([]uint64{60, 40})))
	assert.Equal(t, 0, WinningShare([]uint64{0, 0}).Sign())
	assert.Equal(t, 0, WinningShare(nil).Sign())
}

func TestCanTransition(t *testing.T) {
	all := []models.ProposalStatus{
		models.Active,
		models.ReadyForEvaluation,
		models.FailedQuorum,
		models.FailedThreshold,
		models.Passed(0),
	}

	allowed := map[models.StatusKind][]models.StatusKind{
		models.StatusActive: {
			models.StatusReadyForEvaluation,
			models.StatusFailedQuorum,
			models.StatusFailedThreshold,
			models.StatusPassed,
		},
		models.StatusReadyForEvaluation: {
			models.StatusFailedQuorum,
			models.StatusFailedThreshold,
			models.StatusPassed,
		},
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				assert.Equal(t, contains(allowed[from.Kind], to.Kind), CanTransition(from, to))
			})
		}
	}
}

func contains(kinds []models.StatusKind, k models.StatusKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func TestStatusMonotonicity(t *testing.T) {
	p := &models.Proposal{Tally: []uint64{0, 0}, EndTimeMs: 10_000, Status: models.Active}
	cfg := &models.DAOConfig{QuorumVotes: 5, ThresholdPercent: 50}

	var seen []models.ProposalStatus
	observe := func(now int64) {
		status := Project(p.Status, p.EndTimeMs, time.UnixMilli(now))
		if n := len(seen); n == 0 || seen[n-1] != status {
			seen = append(seen, status)
		}
	}

	observe(1_000)
	tally, err := CastVote(p, 1, 6, time.UnixMilli(2_000))
	require.NoError(t, err)
	p.Tally = tally
	observe(5_000)
	observe(10_000)
	observe(12_000)

	next, err := Advance(p, cfg, time.UnixMilli(12_000))
	require.NoError(t, err)
	p.Status = next
	observe(13_000)
	observe(99_000)

	require.Equal(t, []models.ProposalStatus{models.Active, models.ReadyForEvaluation, models.Passed(1)}, seen)
	for i := 1; i < len(seen); i++ {
		assert.True(t, CanTransition(seen[i-1], seen[i]), "%s -> %s", seen[i-1], seen[i])
	}
}

func TestAdvance(t *testing.T) {
	cfg := &models.DAOConfig{QuorumVotes: 10, ThresholdPercent: 60}
	now := time.UnixMilli(5_000)

	t.Run("not ready", func(t *testing.T) {
		p := &models.Proposal{Tally: []uint64{10}, EndTimeMs: 6_000, Status: models.Active}
		_, err := Advance(p, cfg, now)
		assert.ErrorIs(t, err, domain.ErrProposalNotReady)
	})

	t.Run("already evaluated", func(t *testing.T) {
		p := &models.Proposal{Tally: []uint64{10}, EndTimeMs: 1_000, Status: models.FailedQuorum}
		_, err := Advance(p, cfg, now)
		assert.ErrorIs(t, err, domain.ErrAlreadyEvaluated)
	})

	t.Run("ready", func(t *testing.T) {
		p := &models.Proposal{Tally: []uint64{4, 6}, EndTimeMs: 5_000, Status: models.Active}
		status, err := Advance(p, cfg, now)
		require.NoError(t, err)
		assert.Equal(t, models.Passed(1), status)
	})
}

func TestCastVote(t *testing.T) {
	base := func() *models.Proposal {
		return &models.Proposal{Tally: []uint64{1, 2}, EndTimeMs: 10_000, Status: models.Active}
	}

	t.Run("adds weight to a copy", func(t *testing.T) {
		p := base()
		tally, err := CastVote(p, 0, 5, time.UnixMilli(9_999))
		require.NoError(t, err)
		assert.Equal(t, []uint64{6, 2}, tally)
		assert.Equal(t, []uint64{1, 2}, p.Tally)
	})

	t.Run("closed at end time", func(t *testing.T) {
		_, err := CastVote(base(), 0, 5, time.UnixMilli(10_000))
		assert.ErrorIs(t, err, domain.ErrProposalClosed)
	})

	t.Run("closed after evaluation", func(t *testing.T) {
		p := base()
		p.Status = models.Passed(0)
		_, err := CastVote(p, 0, 5, time.UnixMilli(1))
		assert.ErrorIs(t, err, domain.ErrProposalClosed)
	})

	t.Run("option out of range", func(t *testing.T) {
		_, err := CastVote(base(), 2, 5, time.UnixMilli(1))
		assert.ErrorIs(t, err, domain.ErrInvalidOption)
	})

	t.Run("zero weight", func(t *testing.T) {
		_, err := CastVote(base(), 1, 0, time.UnixMilli(1))
		assert.ErrorIs(t, err, domain.ErrInvalidOption)
	})

	t.Run("overflow", func(t *testing.T) {
		p := base()
		p.Tally[1] = ^uint64(0)
		_, err := CastVote(p, 1, 1, time.UnixMilli(1))
		assert.ErrorIs(t, err, domain.ErrInvalidOption)
	})
}

func TestValidateDuration(t *testing.T) {
	cfg := &models.DAOConfig{MinProposalDurationMs: 1_000, MaxProposalDurationMs: 5_000}

	assert.NoError(t, ValidateDuration(cfg, 1_000))
	assert.NoError(t, ValidateDuration(cfg, 5_000))
	assert.ErrorIs(t, ValidateDuration(cfg, 999), domain.ErrInvalidDraft)
	assert.ErrorIs(t, ValidateDuration(cfg, 5_001), domain.ErrInvalidDraft)
}

func TestCanExecute(t *testing.T) {
	now := time.UnixMilli(50_000)
	action := &models.Action{Option: 1, ActivationTimeMs: 40_000}

	tests := []struct {
		name     string
		status   models.ProposalStatus
		activate uint64
		wantErr  bool
	}{
		{"passed with matching option", models.Passed(1), 40_000, false},
		{"passed with other option", models.Passed(0), 40_000, true},
		{"failed", models.FailedThreshold, 40_000, true},
		{"not yet active", models.Passed(1), 60_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := *action
			a.ActivationTimeMs = tt.activate
			p := &models.Proposal{Status: tt.status, EndTimeMs: 10_000}
			err := CanExecute(&a, p, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrActionNotExecutable)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
