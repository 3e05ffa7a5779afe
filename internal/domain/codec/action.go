package codec

import (
	"fmt"

	"github.com/trebuchet-org/tally-cli/internal/domain"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
)

// Action record field positions
const (
	actionName = iota
	actionDescription
	actionActivationTime
	actionIdentifier
	actionOption
	actionTargets
	actionTreasury
	actionFieldCount
)

// Target field positions
const (
	targetAddress = iota
	targetLovelace
	targetTokens
	targetDatum
	targetFieldCount
)

const (
	datumNone   = 0
	datumInline = 1
)

const maxAssetNameLength = 32

// EncodeActionIdentifier encodes Constr 0 [proposalScriptHash, proposalId, actionIndex]
func EncodeActionIdentifier(id models.ActionIdentifier) plutus.Data {
	return plutus.NewConstr(0,
		plutus.Bytes(id.ProposalScriptHash.Bytes()),
		plutus.Bytes(id.ProposalIdentifier.Bytes()),
		plutus.NewUint(uint64(id.ActionIndex)),
	)
}

func decodeActionIdentifier(d plutus.Data, path string) (models.ActionIdentifier, error) {
	fields, err := constrFields(d, path, 0, 3)
	if err != nil {
		return models.ActionIdentifier{}, err
	}
	var id models.ActionIdentifier
	if id.ProposalScriptHash, err = asHash28(fields[0], fieldPath(path, "proposalScriptHash")); err != nil {
		return models.ActionIdentifier{}, err
	}
	if id.ProposalIdentifier, err = asHash32(fields[1], fieldPath(path, "proposalIdentifier")); err != nil {
		return models.ActionIdentifier{}, err
	}
	if id.ActionIndex, err = asUint32(fields[2], fieldPath(path, "actionIndex")); err != nil {
		return models.ActionIdentifier{}, err
	}
	return id, nil
}

// EncodeTokens encodes a two level map policy => asset name => quantity with
// policies and names in ascending byte order
func EncodeTokens(tokens cardano.Assets) plutus.Map {
	out := plutus.Map{}
	for _, id := range tokens.Sorted() {
		entry := plutus.Pair{Key: plutus.Bytes(id.Name), Value: plutus.NewUint(tokens[id])}
		if n := len(out); n > 0 && plutus.Equal(out[n-1].Key, plutus.Bytes(id.Policy.Bytes())) {
			out[n-1].Value = append(out[n-1].Value.(plutus.Map), entry)
			continue
		}
		out = append(out, plutus.Pair{Key: plutus.Bytes(id.Policy.Bytes()), Value: plutus.Map{entry}})
	}
	return out
}

func decodeTokens(d plutus.Data, path string) (cardano.Assets, error) {
	policies, err := asMap(d, path)
	if err != nil {
		return nil, err
	}
	tokens := cardano.Assets{}
	for i, p := range policies {
		policyPath := indexPath(path, i)
		policy, err := asHash28(p.Key, policyPath)
		if err != nil {
			return nil, err
		}
		names, err := asMap(p.Value, policyPath)
		if err != nil {
			return nil, err
		}
		for j, n := range names {
			namePath := indexPath(policyPath, j)
			name, err := asBytes(n.Key, namePath)
			if err != nil {
				return nil, err
			}
			if len(name) > maxAssetNameLength {
				return nil, unexpected(namePath, "asset name of %d bytes exceeds %d", len(name), maxAssetNameLength)
			}
			qty, err := asUint64(n.Value, namePath)
			if err != nil {
				return nil, err
			}
			id := cardano.AssetID{Policy: policy, Name: string(name)}
			if _, dup := tokens[id]; dup {
				return nil, unexpected(namePath, "duplicate asset %s", id)
			}
			tokens[id] = qty
		}
	}
	return tokens, nil
}

// EncodeTargetDatum encodes Constr 0 [] for no datum and Constr 1 [bytes] for an inline datum
func EncodeTargetDatum(d models.TargetDatum) plutus.Data {
	if !d.Present {
		return plutus.NewConstr(datumNone)
	}
	return plutus.NewConstr(datumInline, plutus.Bytes(append([]byte{}, d.Inline...)))
}

func decodeTargetDatum(d plutus.Data, path string) (models.TargetDatum, error) {
	c, err := asConstr(d, path)
	if err != nil {
		return models.TargetDatum{}, err
	}
	switch c.Tag {
	case datumNone:
		return models.NoDatum(), nil
	case datumInline:
		if len(c.Fields) < 1 {
			return models.TargetDatum{}, missing(path, 1, 0)
		}
		b, err := asBytes(c.Fields[0], fieldPath(path, "inline"))
		if err != nil {
			return models.TargetDatum{}, err
		}
		return models.InlineDatum(b), nil
	default:
		return models.TargetDatum{}, unexpected(path, "unknown datum constructor %d", c.Tag)
	}
}

// EncodeTarget encodes Constr 0 [address, lovelace, tokens, datum]
func EncodeTarget(t *models.Target) plutus.Data {
	fields := make([]plutus.Data, targetFieldCount)
	fields[targetAddress] = EncodeAddress(t.Address)
	fields[targetLovelace] = plutus.NewUint(t.Lovelace)
	fields[targetTokens] = EncodeTokens(t.Tokens)
	fields[targetDatum] = EncodeTargetDatum(t.Datum)
	return plutus.NewConstr(0, fields...)
}

func decodeTarget(d plutus.Data, path string) (models.Target, error) {
	fields, err := constrFields(d, path, 0, targetFieldCount)
	if err != nil {
		return models.Target{}, err
	}
	var t models.Target
	if t.Address, err = decodeAddress(fields[targetAddress], fieldPath(path, "address")); err != nil {
		return models.Target{}, err
	}
	if t.Lovelace, err = asUint64(fields[targetLovelace], fieldPath(path, "lovelace")); err != nil {
		return models.Target{}, err
	}
	if t.Tokens, err = decodeTokens(fields[targetTokens], fieldPath(path, "tokens")); err != nil {
		return models.Target{}, err
	}
	if t.Datum, err = decodeTargetDatum(fields[targetDatum], fieldPath(path, "datum")); err != nil {
		return models.Target{}, err
	}
	return t, nil
}

// EncodeAction encodes the action datum as Constr 0 with seven fields
func EncodeAction(a *models.Action) plutus.Data {
	targets := make(plutus.List, len(a.Targets))
	for i := range a.Targets {
		targets[i] = EncodeTarget(&a.Targets[i])
	}

	fields := make([]plutus.Data, actionFieldCount)
	fields[actionName] = text(a.Name)
	fields[actionDescription] = text(a.Description)
	fields[actionActivationTime] = plutus.NewUint(a.ActivationTimeMs)
	fields[actionIdentifier] = EncodeActionIdentifier(a.Identifier)
	fields[actionOption] = plutus.NewUint(uint64(a.Option))
	fields[actionTargets] = targets
	fields[actionTreasury] = EncodeAddress(a.TreasuryAddress)
	return plutus.NewConstr(0, fields...)
}

// DecodeAction is the inverse of EncodeAction
func DecodeAction(d plutus.Data) (*models.Action, error) {
	a, err := decodeAction(d)
	if err != nil {
		return nil, record(domain.InvalidActionRecord, err)
	}
	return a, nil
}

func decodeAction(d plutus.Data) (*models.Action, error) {
	const path = "action"
	fields, err := constrFields(d, path, 0, actionFieldCount)
	if err != nil {
		return nil, err
	}

	a := &models.Action{}
	if a.Name, err = asText(fields[actionName], fieldPath(path, "name")); err != nil {
		return nil, err
	}
	if a.Description, err = asText(fields[actionDescription], fieldPath(path, "description")); err != nil {
		return nil, err
	}
	if a.ActivationTimeMs, err = asUint64(fields[actionActivationTime], fieldPath(path, "activationTime")); err != nil {
		return nil, err
	}
	if a.Identifier, err = decodeActionIdentifier(fields[actionIdentifier], fieldPath(path, "identifier")); err != nil {
		return nil, err
	}
	if a.Option, err = asUint32(fields[actionOption], fieldPath(path, "option")); err != nil {
		return nil, err
	}

	targetsPath := fieldPath(path, "targets")
	targets, err := asList(fields[actionTargets], targetsPath)
	if err != nil {
		return nil, err
	}
	a.Targets = make([]models.Target, len(targets))
	for i, item := range targets {
		if a.Targets[i], err = decodeTarget(item, indexPath(targetsPath, i)); err != nil {
			return nil, err
		}
	}

	if a.TreasuryAddress, err = decodeAddress(fields[actionTreasury], fieldPath(path, "treasuryAddress")); err != nil {
		return nil, err
	}
	return a, nil
}

// Entity is a decoded governance datum of any of the three record types
type Entity struct {
	DAO      *models.DAOConfig
	Proposal *models.Proposal
	Action   *models.Action
}

// Type names the record held by the entity
func (e Entity) Type() string {
	switch {
	case e.DAO != nil:
		return "dao"
	case e.Proposal != nil:
		return "proposal"
	case e.Action != nil:
		return "action"
	default:
		return "unknown"
	}
}

// DecodeAny tries each record decoder in turn. The three layouts differ in
// field count and field kinds so at most one can succeed.
func DecodeAny(d plutus.Data) (Entity, error) {
	if c, err := DecodeDAOConfig(d); err == nil {
		return Entity{DAO: c}, nil
	}
	if p, err := DecodeStoredProposal(d); err == nil {
		return Entity{Proposal: p}, nil
	}
	if a, err := DecodeAction(d); err == nil {
		return Entity{Action: a}, nil
	}
	return Entity{}, &domain.DecodeError{
		Kind:   domain.UnexpectedTag,
		Reason: fmt.Sprintf("%s is not a DAO, proposal or action record", plutus.String(d)),
	}
}
