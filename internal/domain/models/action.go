package models

import (
	"time"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
)

// ActionIdentifier ties an action to its proposal
type ActionIdentifier struct {
	ProposalScriptHash cardano.ScriptHash `json:"proposalScriptHash"`
	ProposalIdentifier cardano.Hash32     `json:"proposalIdentifier"`
	ActionIndex        uint32             `json:"actionIndex"`
}

// Action is a treasury payout executed if its proposal passes with Option
type Action struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ActivationTimeMs uint64           `json:"activationTimeMs"`
	Identifier       ActionIdentifier `json:"identifier"`
	Option           uint32           `json:"option"`
	Targets          []Target         `json:"targets"`
	TreasuryAddress  cardano.Address  `json:"treasuryAddress"`
}

// ActivationTime returns the earliest execution time
func (a *Action) ActivationTime() time.Time {
	return time.UnixMilli(int64(a.ActivationTimeMs)).UTC()
}

// Total returns the value paid out across all targets
func (a *Action) Total() cardano.Value {
	var total cardano.Value
	for _, t := range a.Targets {
		total = total.Add(t.Value())
	}
	return total
}

// Target is a single payout of an action
type Target struct {
	Address  cardano.Address `json:"address"`
	Lovelace uint64          `json:"lovelace"`
	Tokens   cardano.Assets  `json:"tokens"`
	Datum    TargetDatum     `json:"datum"`
}

// Value returns the lovelace and tokens paid to the target
func (t *Target) Value() cardano.Value {
	v := cardano.Lovelace(t.Lovelace)
	if len(t.Tokens) > 0 {
		v.Assets = t.Tokens.Clone()
	}
	return v
}

// TargetDatum is either no datum or an inline datum given as raw bytes
type TargetDatum struct {
	Inline []byte `json:"inline,omitempty"`
	// Present distinguishes an empty inline datum from no datum
	Present bool `json:"present"`
}

// NoDatum returns the absent datum
func NoDatum() TargetDatum { return TargetDatum{} }

// InlineDatum wraps raw datum bytes
func InlineDatum(b []byte) TargetDatum {
	if b == nil {
		b = []byte{}
	}
	return TargetDatum{Inline: b, Present: true}
}
