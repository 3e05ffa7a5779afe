// Package identifier derives the proposal and action identifiers that on-chain
// validators recompute. Both are blake2b-256 digests of a canonical CBOR tree.
package identifier

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// proposalSalt is fixed by the proposal validator
const proposalSalt = -1

// Hash returns blake2b-256 of the canonical encoding of d
func Hash(d plutus.Data) (cardano.Hash32, error) {
	raw, err := plutus.Marshal(d)
	if err != nil {
		return cardano.Hash32{}, fmt.Errorf("failed to encode data for hashing: %w", err)
	}
	return blake2b.Sum256(raw), nil
}

// DeriveProposalID hashes Constr 0 [seed, -1] where seed is the output
// consumed when the proposal is created
func DeriveProposalID(seed cardano.OutputReference) cardano.Hash32 {
	id, err := Hash(plutus.NewConstr(0, codec.EncodeOutputReference(seed), plutus.NewInt(proposalSalt)))
	if err != nil {
		// a tree of bytes and small integers always encodes
		panic(err)
	}
	return id
}

// DeriveActionID hashes Constr 0 [proposalScriptHash, proposalId, actionIndex]
func DeriveActionID(id models.ActionIdentifier) cardano.Hash32 {
	h, err := Hash(codec.EncodeActionIdentifier(id))
	if err != nil {
		panic(err)
	}
	return h
}

// ProposalToken returns the asset minted under the proposal policy for a proposal.
// The asset name is the proposal id.
func ProposalToken(proposalScript cardano.ScriptHash, proposalID cardano.Hash32) cardano.AssetID {
	return cardano.AssetID{Policy: proposalScript, Name: string(proposalID[:])}
}

// ActionToken returns the asset minted under the action policy for an action.
// The asset name is the action id.
func ActionToken(actionScript cardano.ScriptHash, actionID cardano.Hash32) cardano.AssetID {
	return cardano.AssetID{Policy: actionScript, Name: string(actionID[:])}
}

// VerifyProposalID recomputes the proposal id from its stored seed and compares it
// with the id carried by the proposal token
func VerifyProposalID(p *models.Proposal, tokenID cardano.Hash32) error {
	derived := DeriveProposalID(p.Identifier)
	if derived != tokenID {
		return &domain.IdentifierMismatchError{Entity: "proposal", Expected: derived.String(), Actual: tokenID.String()}
	}
	return nil
}

// VerifyActionID recomputes the action id and compares it with the id carried by
// the action token
func VerifyActionID(a *models.Action, tokenID cardano.Hash32) error {
	derived := DeriveActionID(a.Identifier)
	if derived != tokenID {
		return &domain.IdentifierMismatchError{Entity: "action", Expected: derived.String(), Actual: tokenID.String()}
	}
	return nil
}

// DatumHash returns the hash of an inline datum as the ledger computes it
func DatumHash(d plutus.Data) (cardano.Hash32, error) {
	return Hash(d)
}
