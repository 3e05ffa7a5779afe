package usecase

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
)

const (
	planCreateProposal = "create-proposal"
	planCastVote       = "cast-vote"
	planEvaluate       = "evaluate-proposal"
	planExecuteAction  = "execute-action"
)

func newPlan(kind string) *models.TxPlan {
	return &models.TxPlan{
		Kind:        kind,
		Identifiers: map[string]cardano.Hash32{},
	}
}

// planName is the file name a plan is written under
func planName(prefix string, id cardano.Hash32) string {
	return fmt.Sprintf("%s-%s", prefix, id.String()[:8])
}

// addInputs appends wallet inputs, skipping refs already spent or added
func addInputs(plan *models.TxPlan, utxos ...*models.UTxO) {
	for _, u := range utxos {
		if lo.Contains(plan.Inputs, u.Ref) {
			continue
		}
		if lo.ContainsBy(plan.Spends, func(s models.SpendEntry) bool { return s.Ref == u.Ref }) {
			continue
		}
		plan.Inputs = append(plan.Inputs, u.Ref)
	}
}

func addScriptReferences(plan *models.TxPlan, scripts ...*models.Script) {
	for _, s := range scripts {
		if s != nil {
			plan.AddReferenceInput(s.ReferenceInput)
		}
	}
}

func durationMs(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Millisecond)
}

// requireVerified turns an identifier mismatch on a record into an error
func requireVerified(mismatch error, ref cardano.OutputReference) error {
	if mismatch == nil {
		return nil
	}
	return fmt.Errorf("record at %s cannot be spent: %w", ref, mismatch)
}

// findProposal returns the proposal entry with the given identifier
func findProposal(entries []*ProposalEntry, id cardano.Hash32) (*ProposalEntry, error) {
	entry, ok := lo.Find(entries, func(e *ProposalEntry) bool { return e.ID == id })
	if !ok {
		return nil, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, id)
	}
	return entry, nil
}
