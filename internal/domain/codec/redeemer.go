package codec

import (
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// Proposal validator redeemers. The same script is the proposal token policy.
func ProposalCreateRedeemer(seed cardano.OutputReference) plutus.Data {
	return plutus.NewConstr(0, EncodeOutputReference(seed))
}

func ProposalVoteRedeemer(option uint32) plutus.Data {
	return plutus.NewConstr(1, plutus.NewUint(uint64(option)))
}

func ProposalEvaluateRedeemer() plutus.Data {
	return plutus.NewConstr(2)
}

// Action validator redeemers
func ActionCreateRedeemer() plutus.Data {
	return plutus.NewConstr(0)
}

func ActionExecuteRedeemer() plutus.Data {
	return plutus.NewConstr(1)
}

// TreasurySpendRedeemer unlocks treasury funds for an executing action
func TreasurySpendRedeemer() plutus.Data {
	return plutus.NewConstr(0)
}
