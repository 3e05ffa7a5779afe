package models

import (
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
)

// UTxO is an unspent output as supplied by the indexing service
type UTxO struct {
	Ref     cardano.OutputReference `json:"ref"`
	Address cardano.Address         `json:"address"`
	Value   cardano.Value           `json:"value"`

	// RawDatum is the CBOR of the inline datum, nil when the output has none
	RawDatum []byte `json:"rawDatum,omitempty"`
}

// ScriptRole names the validators a DAO is made of
type ScriptRole string

const (
	ScriptDAO      ScriptRole = "dao"
	ScriptProposal ScriptRole = "proposal"
	ScriptAction   ScriptRole = "action"
	ScriptTreasury ScriptRole = "treasury"
)

// Script is a deployed validator. Proposal and action validators double as the
// minting policies of their tokens, so Hash is also the policy id.
type Script struct {
	Role    ScriptRole         `json:"role"`
	Hash    cardano.ScriptHash `json:"hash"`
	Address cardano.Address    `json:"address"`

	// ReferenceInput holds the deployed script, nil when the script is attached inline
	ReferenceInput *cardano.OutputReference `json:"referenceInput,omitempty"`
}
