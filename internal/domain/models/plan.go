package models

import (
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// TxPlan is everything the transaction assembler needs to build, balance and
// submit a governance transaction. Fees, collateral and signing are left to it.
type TxPlan struct {
	Kind            string                    `json:"kind"`
	Spends          []SpendEntry              `json:"spends"`
	Inputs          []cardano.OutputReference `json:"inputs"`
	ReferenceInputs []cardano.OutputReference `json:"referenceInputs"`
	Mints           []MintEntry               `json:"mints"`
	Outputs         []OutputSpec              `json:"outputs"`

	// Validity interval in milliseconds since epoch, zero means unbounded
	ValidFromMs uint64 `json:"validFromMs,omitempty"`
	ValidToMs   uint64 `json:"validToMs,omitempty"`

	// Identifiers derived while planning, keyed by a human readable label
	Identifiers map[string]cardano.Hash32 `json:"identifiers,omitempty"`
}

// SpendEntry is a script input with its redeemer
type SpendEntry struct {
	Ref      cardano.OutputReference `json:"ref"`
	Redeemer plutus.Data             `json:"-"`
}

// MintEntry mints (positive) or burns (negative) a token under a policy redeemer
type MintEntry struct {
	Asset    cardano.AssetID `json:"asset"`
	Quantity int64           `json:"quantity"`
	Redeemer plutus.Data     `json:"-"`
}

// OutputSpec is an output the assembler must create
type OutputSpec struct {
	Address cardano.Address `json:"address"`
	Value   cardano.Value   `json:"value"`
	Datum   plutus.Data     `json:"-"`
}

// AddReferenceInput appends ref unless it is already present
func (p *TxPlan) AddReferenceInput(ref *cardano.OutputReference) {
	if ref == nil {
		return
	}
	for _, r := range p.ReferenceInputs {
		if r == *ref {
			return
		}
	}
	p.ReferenceInputs = append(p.ReferenceInputs, *ref)
}
