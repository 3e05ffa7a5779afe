package render

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/trebuchet-org/tally-cli/internal/adapters/fs"
	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// JSONRenderer writes use case results as indented JSON documents
type JSONRenderer struct {
	out     io.Writer
	network cardano.Network
}

// NewJSONRenderer creates a new JSON renderer
func NewJSONRenderer(out io.Writer, network cardano.Network) *JSONRenderer {
	return &JSONRenderer{out: out, network: network}
}

func (r *JSONRenderer) write(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(r.out, string(data))
	return nil
}

type scriptJSON struct {
	Role           models.ScriptRole        `json:"role"`
	Hash           cardano.ScriptHash       `json:"hash"`
	Address        string                   `json:"address"`
	ReferenceInput *cardano.OutputReference `json:"referenceInput,omitempty"`
}

type daoJSON struct {
	Script scriptJSON              `json:"script"`
	Ref    cardano.OutputReference `json:"ref"`
	Config *models.DAOConfig       `json:"config"`
}

type proposalJSON struct {
	ID            cardano.Hash32          `json:"id"`
	Ref           cardano.OutputReference `json:"ref"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Tally         []uint64                `json:"tally"`
	EndTime       time.Time               `json:"endTime"`
	Status        models.StatusKind       `json:"status"`
	WinningOption *uint32                 `json:"winningOption,omitempty"`
	Identifier    cardano.OutputReference `json:"identifier"`
	Mismatch      string                  `json:"mismatch,omitempty"`
}

type targetJSON struct {
	Address  string            `json:"address"`
	Lovelace uint64            `json:"lovelace"`
	Tokens   map[string]uint64 `json:"tokens,omitempty"`
	Datum    *string           `json:"inlineDatum,omitempty"`
}

type actionJSON struct {
	ID             cardano.Hash32          `json:"id"`
	Ref            cardano.OutputReference `json:"ref"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	ProposalID     cardano.Hash32          `json:"proposalId"`
	ProposalScript cardano.ScriptHash      `json:"proposalScript"`
	ActionIndex    uint32                  `json:"actionIndex"`
	Option         uint32                  `json:"option"`
	ActivationTime time.Time               `json:"activationTime"`
	Treasury       string                  `json:"treasury"`
	Targets        []targetJSON            `json:"targets"`
	Executed       bool                    `json:"executed"`
	Mismatch       string                  `json:"mismatch,omitempty"`
}

type invalidJSON struct {
	Ref    cardano.OutputReference `json:"ref"`
	Reason string                  `json:"reason"`
}

func (r *JSONRenderer) proposal(e *usecase.ProposalEntry) proposalJSON {
	p := e.Proposal
	out := proposalJSON{
		ID:          e.ID,
		Ref:         e.UTxO.Ref,
		Name:        p.Name,
		Description: p.Description,
		Tally:       p.Tally,
		EndTime:     p.EndTime(),
		Status:      p.Status.Kind,
		Identifier:  p.Identifier,
	}
	if p.Status.Kind == models.StatusPassed {
		option := p.Status.WinningOption
		out.WinningOption = &option
	}
	if e.Mismatch != nil {
		out.Mismatch = e.Mismatch.Error()
	}
	return out
}

func (r *JSONRenderer) action(e *usecase.ActionEntry) actionJSON {
	a := e.Action
	out := actionJSON{
		ID:             e.ID,
		Ref:            e.UTxO.Ref,
		Name:           a.Name,
		Description:    a.Description,
		ProposalID:     a.Identifier.ProposalIdentifier,
		ProposalScript: a.Identifier.ProposalScriptHash,
		ActionIndex:    a.Identifier.ActionIndex,
		Option:         a.Option,
		ActivationTime: a.ActivationTime(),
		Treasury:       FormatAddress(a.TreasuryAddress, r.network),
		Targets:        make([]targetJSON, 0, len(a.Targets)),
		Executed:       e.Executed,
	}
	for _, t := range a.Targets {
		tj := targetJSON{Address: FormatAddress(t.Address, r.network), Lovelace: t.Lovelace}
		if len(t.Tokens) > 0 {
			tj.Tokens = make(map[string]uint64, len(t.Tokens))
			for id, qty := range t.Tokens {
				tj.Tokens[id.Unit()] = qty
			}
		}
		if t.Datum.Present {
			datum := hex.EncodeToString(t.Datum.Inline)
			tj.Datum = &datum
		}
		out.Targets = append(out.Targets, tj)
	}
	if e.Mismatch != nil {
		out.Mismatch = e.Mismatch.Error()
	}
	return out
}

func invalidRecords(records []usecase.InvalidRecord) []invalidJSON {
	out := make([]invalidJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, invalidJSON{Ref: rec.Ref, Reason: rec.Reason})
	}
	return out
}

// RenderDAO writes the DAO record
func (r *JSONRenderer) RenderDAO(state *usecase.DAOState) error {
	return r.write(daoJSON{
		Script: scriptJSON{
			Role:           state.Script.Role,
			Hash:           state.Script.Hash,
			Address:        FormatAddress(state.Script.Address, r.network),
			ReferenceInput: state.Script.ReferenceInput,
		},
		Ref:    state.UTxO.Ref,
		Config: state.Config,
	})
}

// RenderProposalList writes proposals with their summary
func (r *JSONRenderer) RenderProposalList(result *usecase.ProposalListResult) error {
	proposals := make([]proposalJSON, 0, len(result.Proposals))
	for _, e := range result.Proposals {
		proposals = append(proposals, r.proposal(e))
	}
	return r.write(struct {
		Proposals []proposalJSON            `json:"proposals"`
		Invalid   []invalidJSON             `json:"invalid"`
		Total     int                       `json:"total"`
		ByStatus  map[models.StatusKind]int `json:"byStatus"`
		Mismatch  int                       `json:"mismatched"`
	}{
		Proposals: proposals,
		Invalid:   invalidRecords(result.Invalid),
		Total:     result.Summary.Total,
		ByStatus:  result.Summary.ByStatus,
		Mismatch:  result.Summary.Mismatched,
	})
}

// RenderProposal writes one proposal with its actions
func (r *JSONRenderer) RenderProposal(detail *usecase.ProposalDetail) error {
	actions := make([]actionJSON, 0, len(detail.Actions))
	for _, a := range detail.Actions {
		actions = append(actions, r.action(a))
	}
	var share string
	if detail.WinningShare != nil {
		share = detail.WinningShare.FloatString(4)
	}
	return r.write(struct {
		proposalJSON
		TotalVotes   string       `json:"totalVotes"`
		WinningShare string       `json:"winningShare,omitempty"`
		Actions      []actionJSON `json:"actions"`
	}{
		proposalJSON: r.proposal(detail.Entry),
		TotalVotes:   detail.TotalVotes.String(),
		WinningShare: share,
		Actions:      actions,
	})
}

// RenderActionList writes actions and undecodable action outputs
func (r *JSONRenderer) RenderActionList(result *usecase.ActionListResult) error {
	actions := make([]actionJSON, 0, len(result.Actions))
	for _, a := range result.Actions {
		actions = append(actions, r.action(a))
	}
	return r.write(struct {
		Actions []actionJSON  `json:"actions"`
		Invalid []invalidJSON `json:"invalid"`
	}{actions, invalidRecords(result.Invalid)})
}

// RenderAction writes a single action
func (r *JSONRenderer) RenderAction(entry *usecase.ActionEntry) error {
	return r.write(r.action(entry))
}

type planJSON struct {
	Path string           `json:"path,omitempty"`
	Plan *fs.PlanDocument `json:"plan"`
}

func (r *JSONRenderer) plan(result *usecase.PlanResult) (planJSON, error) {
	doc, err := fs.NewPlanDocument(result.Plan, r.network)
	if err != nil {
		return planJSON{}, err
	}
	return planJSON{Path: result.Path, Plan: doc}, nil
}

// RenderPlan writes a plan document and where it was saved
func (r *JSONRenderer) RenderPlan(result *usecase.PlanResult) error {
	p, err := r.plan(result)
	if err != nil {
		return err
	}
	return r.write(p)
}

// RenderVote writes a vote plan with the weight cast
func (r *JSONRenderer) RenderVote(result *usecase.VoteResult) error {
	p, err := r.plan(&result.PlanResult)
	if err != nil {
		return err
	}
	return r.write(struct {
		planJSON
		Proposal cardano.Hash32 `json:"proposal"`
		Weight   uint64         `json:"weight"`
		Tally    []uint64       `json:"tally"`
	}{p, result.Proposal.ID, result.Weight, result.Tally})
}

// RenderEvaluation writes an evaluation plan with the resulting status
func (r *JSONRenderer) RenderEvaluation(result *usecase.EvaluationResult) error {
	p, err := r.plan(&result.PlanResult)
	if err != nil {
		return err
	}
	return r.write(struct {
		planJSON
		Proposal cardano.Hash32        `json:"proposal"`
		Status   models.ProposalStatus `json:"status"`
	}{p, result.Proposal.ID, result.Status})
}

// RenderExecution writes an execution plan with the treasury outputs it spends
func (r *JSONRenderer) RenderExecution(result *usecase.ExecutionResult) error {
	p, err := r.plan(&result.PlanResult)
	if err != nil {
		return err
	}
	treasury := make([]cardano.OutputReference, 0, len(result.Treasury))
	for _, u := range result.Treasury {
		treasury = append(treasury, u.Ref)
	}
	change := map[string]uint64{"lovelace": result.Change.Lovelace}
	for id, qty := range result.Change.Assets {
		change[id.Unit()] = qty
	}
	return r.write(struct {
		planJSON
		Action   cardano.Hash32            `json:"action"`
		Proposal cardano.Hash32            `json:"proposal"`
		Treasury []cardano.OutputReference `json:"treasury"`
		Change   map[string]uint64         `json:"change"`
	}{p, result.Action.ID, result.Proposal.ID, treasury, change})
}

// RenderIdentifiers writes derived identifiers
func (r *JSONRenderer) RenderIdentifiers(result *usecase.DerivedIdentifiers) error {
	return r.write(result)
}

// RenderDatum writes a decoded datum in the detailed JSON schema plus its typed reading
func (r *JSONRenderer) RenderDatum(result *usecase.DecodedDatum) error {
	data, err := plutus.MarshalJSON(result.Data)
	if err != nil {
		return err
	}
	out := struct {
		Hash       cardano.Hash32  `json:"hash"`
		Diagnostic string          `json:"diagnostic"`
		Data       json.RawMessage `json:"data"`
		Type       string          `json:"type"`
		Entity     any             `json:"entity,omitempty"`
		Error      string          `json:"error,omitempty"`
		ID         *cardano.Hash32 `json:"id,omitempty"`
	}{
		Hash:       result.Hash,
		Diagnostic: result.Diagnostic,
		Data:       data,
		Type:       result.Entity.Type(),
		ID:         result.ID,
	}
	switch {
	case result.Entity.DAO != nil:
		out.Entity = result.Entity.DAO
	case result.Entity.Proposal != nil:
		out.Entity = result.Entity.Proposal
	case result.Entity.Action != nil:
		out.Entity = result.Entity.Action
	}
	if result.EntityErr != nil {
		out.Error = result.EntityErr.Error()
	}
	return r.write(out)
}

// RenderEncodedDAO writes the DAO datum built from project settings
func (r *JSONRenderer) RenderEncodedDAO(result *usecase.EncodedDAOConfig) error {
	return r.write(struct {
		Config     *models.DAOConfig `json:"config"`
		CBOR       string            `json:"cbor"`
		Diagnostic string            `json:"diagnostic"`
		Hash       cardano.Hash32    `json:"hash"`
	}{result.Config, result.CBOR, plutus.String(result.Datum), result.Hash})
}
