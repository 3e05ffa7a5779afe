package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/codec"
	"github.com/trebuchet-org/tally-cli/internal/domain/identifier"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// EncodedDAOConfig is a DAO configuration with its datum encoding
type EncodedDAOConfig struct {
	Config *models.DAOConfig
	Datum  plutus.Data
	CBOR   string
	Hash   cardano.Hash32
}

// EncodeDAOConfig is the use case for producing the DAO datum from project settings
type EncodeDAOConfig struct {
	config *config.RuntimeConfig
}

// NewEncodeDAOConfig creates a new EncodeDAOConfig use case
func NewEncodeDAOConfig(cfg *config.RuntimeConfig) *EncodeDAOConfig {
	return &EncodeDAOConfig{config: cfg}
}

// Run executes the encode DAO config use case
func (uc *EncodeDAOConfig) Run(_ context.Context) (*EncodedDAOConfig, error) {
	if uc.config.Project == nil {
		return nil, &domain.ConfigurationError{Item: config.ProjectFile, Reason: "no project configuration loaded"}
	}
	cfg, err := uc.config.Project.DAOConfig()
	if err != nil {
		return nil, err
	}

	datum := codec.EncodeDAOConfig(cfg)
	cborHex, err := plutus.MarshalHex(datum)
	if err != nil {
		return nil, fmt.Errorf("failed to encode DAO datum: %w", err)
	}
	hash, err := identifier.DatumHash(datum)
	if err != nil {
		return nil, err
	}
	return &EncodedDAOConfig{
		Config: cfg,
		Datum:  datum,
		CBOR:   cborHex,
		Hash:   hash,
	}, nil
}
