package codec

import (
	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// DAO record field positions
const (
	daoName = iota
	daoGovernanceToken
	daoThreshold
	daoMinDuration
	daoMaxDuration
	daoQuorum
	daoMinCreateVotes
	daoWhitelistedProposals
	daoWhitelistedActions
	daoFieldCount
)

// EncodeDAOConfig encodes the DAO datum as Constr 0 with nine fields
func EncodeDAOConfig(c *models.DAOConfig) plutus.Data {
	fields := make([]plutus.Data, daoFieldCount)
	fields[daoName] = text(c.Name)
	fields[daoGovernanceToken] = plutus.Bytes(c.GovernanceToken.Bytes())
	fields[daoThreshold] = plutus.NewUint(uint64(c.ThresholdPercent))
	fields[daoMinDuration] = plutus.NewUint(c.MinProposalDurationMs)
	fields[daoMaxDuration] = plutus.NewUint(c.MaxProposalDurationMs)
	fields[daoQuorum] = plutus.NewUint(c.QuorumVotes)
	fields[daoMinCreateVotes] = plutus.NewUint(c.MinProposalCreateVotes)
	fields[daoWhitelistedProposals] = hashList(c.WhitelistedProposalScripts)
	fields[daoWhitelistedActions] = hashList(c.WhitelistedActionScripts)
	return plutus.NewConstr(0, fields...)
}

// DecodeDAOConfig is the inverse of EncodeDAOConfig
func DecodeDAOConfig(d plutus.Data) (*models.DAOConfig, error) {
	c, err := decodeDAOConfig(d)
	if err != nil {
		return nil, record(domain.InvalidDAORecord, err)
	}
	return c, nil
}

func decodeDAOConfig(d plutus.Data) (*models.DAOConfig, error) {
	const path = "dao"
	fields, err := constrFields(d, path, 0, daoFieldCount)
	if err != nil {
		return nil, err
	}

	c := &models.DAOConfig{}
	if c.Name, err = asText(fields[daoName], fieldPath(path, "name")); err != nil {
		return nil, err
	}

	tokenPath := fieldPath(path, "governanceToken")
	token, err := asBytes(fields[daoGovernanceToken], tokenPath)
	if err != nil {
		return nil, err
	}
	if len(token) > cardano.Hash28Size+32 {
		return nil, unexpected(tokenPath, "asset id of %d bytes is too long", len(token))
	}
	if c.GovernanceToken, err = cardano.AssetIDFromBytes(token); err != nil {
		return nil, unexpected(tokenPath, "%v", err)
	}

	if c.ThresholdPercent, err = asUint32(fields[daoThreshold], fieldPath(path, "threshold")); err != nil {
		return nil, err
	}
	if c.MinProposalDurationMs, err = asUint64(fields[daoMinDuration], fieldPath(path, "minProposalDuration")); err != nil {
		return nil, err
	}
	if c.MaxProposalDurationMs, err = asUint64(fields[daoMaxDuration], fieldPath(path, "maxProposalDuration")); err != nil {
		return nil, err
	}
	if c.QuorumVotes, err = asUint64(fields[daoQuorum], fieldPath(path, "quorum")); err != nil {
		return nil, err
	}
	if c.MinProposalCreateVotes, err = asUint64(fields[daoMinCreateVotes], fieldPath(path, "minProposalCreateVotes")); err != nil {
		return nil, err
	}
	if c.WhitelistedProposalScripts, err = decodeHashList(fields[daoWhitelistedProposals], fieldPath(path, "whitelistedProposals")); err != nil {
		return nil, err
	}
	if c.WhitelistedActionScripts, err = decodeHashList(fields[daoWhitelistedActions], fieldPath(path, "whitelistedActions")); err != nil {
		return nil, err
	}
	return c, nil
}
