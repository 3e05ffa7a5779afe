package codec

import (
	"time"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// Proposal record field positions
const (
	proposalName = iota
	proposalDescription
	proposalTally
	proposalEndTime
	proposalStatus
	proposalIdentifier
	proposalFieldCount
)

// Stored status constructor tags. ReadyForEvaluation is never stored.
const (
	statusActive          = 0
	statusFailedThreshold = 1
	statusFailedQuorum    = 2
	statusPassed          = 3
)

// EncodeProposalStatus encodes a proposal status. ReadyForEvaluation is a reader side
// projection of Active and encodes as Active.
func EncodeProposalStatus(s models.ProposalStatus) plutus.Data {
	switch s.Kind {
	case models.StatusFailedThreshold:
		return plutus.NewConstr(statusFailedThreshold)
	case models.StatusFailedQuorum:
		return plutus.NewConstr(statusFailedQuorum)
	case models.StatusPassed:
		return plutus.NewConstr(statusPassed, plutus.NewUint(uint64(s.WinningOption)))
	default:
		return plutus.NewConstr(statusActive)
	}
}

func decodeStatus(d plutus.Data, path string) (models.ProposalStatus, error) {
	c, err := asConstr(d, path)
	if err != nil {
		return models.ProposalStatus{}, err
	}
	switch c.Tag {
	case statusActive:
		return models.Active, nil
	case statusFailedThreshold:
		return models.FailedThreshold, nil
	case statusFailedQuorum:
		return models.FailedQuorum, nil
	case statusPassed:
		if len(c.Fields) < 1 {
			return models.ProposalStatus{}, missing(path, 1, 0)
		}
		option, err := asUint32(c.Fields[0], fieldPath(path, "winningOption"))
		if err != nil {
			return models.ProposalStatus{}, err
		}
		return models.Passed(option), nil
	default:
		return models.ProposalStatus{}, unexpected(path, "unknown status constructor %d", c.Tag)
	}
}

// EncodeProposal encodes the proposal datum as Constr 0 with six fields
func EncodeProposal(p *models.Proposal) plutus.Data {
	tally := make(plutus.List, len(p.Tally))
	for i, votes := range p.Tally {
		tally[i] = plutus.NewUint(votes)
	}

	fields := make([]plutus.Data, proposalFieldCount)
	fields[proposalName] = text(p.Name)
	fields[proposalDescription] = text(p.Description)
	fields[proposalTally] = tally
	fields[proposalEndTime] = plutus.NewUint(p.EndTimeMs)
	fields[proposalStatus] = EncodeProposalStatus(p.Status)
	fields[proposalIdentifier] = EncodeOutputReference(p.Identifier)
	return plutus.NewConstr(0, fields...)
}

// DecodeProposal decodes a proposal datum and projects its status at now, so a
// stored Active proposal whose end time has passed reads as ReadyForEvaluation.
func DecodeProposal(d plutus.Data, now time.Time) (*models.Proposal, error) {
	p, err := DecodeStoredProposal(d)
	if err != nil {
		return nil, err
	}
	p.Status = models.ProjectStatus(p.Status, p.EndTimeMs, now)
	return p, nil
}

// DecodeStoredProposal decodes a proposal datum with its status exactly as stored
func DecodeStoredProposal(d plutus.Data) (*models.Proposal, error) {
	p, err := decodeProposal(d)
	if err != nil {
		return nil, record(domain.InvalidProposalRecord, err)
	}
	return p, nil
}

func decodeProposal(d plutus.Data) (*models.Proposal, error) {
	const path = "proposal"
	fields, err := constrFields(d, path, 0, proposalFieldCount)
	if err != nil {
		return nil, err
	}

	p := &models.Proposal{}
	if p.Name, err = asText(fields[proposalName], fieldPath(path, "name")); err != nil {
		return nil, err
	}
	if p.Description, err = asText(fields[proposalDescription], fieldPath(path, "description")); err != nil {
		return nil, err
	}

	tallyPath := fieldPath(path, "tally")
	tally, err := asList(fields[proposalTally], tallyPath)
	if err != nil {
		return nil, err
	}
	p.Tally = make([]uint64, len(tally))
	for i, item := range tally {
		if p.Tally[i], err = asUint64(item, indexPath(tallyPath, i)); err != nil {
			return nil, err
		}
	}

	if p.EndTimeMs, err = asUint64(fields[proposalEndTime], fieldPath(path, "endTime")); err != nil {
		return nil, err
	}
	if p.Status, err = decodeStatus(fields[proposalStatus], fieldPath(path, "status")); err != nil {
		return nil, err
	}
	if p.Identifier, err = decodeOutputReference(fields[proposalIdentifier], fieldPath(path, "identifier")); err != nil {
		return nil, err
	}
	return p, nil
}
