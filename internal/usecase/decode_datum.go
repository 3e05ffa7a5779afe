package usecase

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/identifier"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// DecodeDatumParams contains parameters for decoding a datum
type DecodeDatumParams struct {
	Hex string
}

// DecodedDatum is a datum as a generic tree plus its typed reading, if any
type DecodedDatum struct {
	Data       plutus.Data
	Diagnostic string
	Hash       cardano.Hash32
	Entity     codec.Entity
	// EntityErr explains why no governance record could be read
	EntityErr error
	// ID is the derived identifier for proposal and action records
	ID *cardano.Hash32
}

// DecodeDatum is the use case for inspecting raw datum CBOR
type DecodeDatum struct {
	clock Clock
}

// NewDecodeDatum creates a new DecodeDatum use case
func NewDecodeDatum(clock Clock) *DecodeDatum {
	return &DecodeDatum{clock: clock}
}

// Run executes the decode datum use case. Only malformed CBOR is an error.
func (uc *DecodeDatum) Run(_ context.Context, params DecodeDatumParams) (*DecodedDatum, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(params.Hex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("datum is not hex: %w", err)
	}
	data, err := plutus.Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	hash, err := identifier.DatumHash(data)
	if err != nil {
		return nil, err
	}

	result := &DecodedDatum{
		Data:       data,
		Diagnostic: plutus.String(data),
		Hash:       hash,
	}
	result.Entity, result.EntityErr = codec.DecodeAny(data)

	switch {
	case result.Entity.Proposal != nil:
		p := result.Entity.Proposal
		p.Status = models.ProjectStatus(p.Status, p.EndTimeMs, uc.clock.Now())
		id := identifier.DeriveProposalID(p.Identifier)
		result.ID = &id
	case result.Entity.Action != nil:
		id := identifier.DeriveActionID(result.Entity.Action.Identifier)
		result.ID = &id
	}
	return result, nil
}
