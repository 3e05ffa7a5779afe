package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// DatumRenderer renders decoded datums and derived identifiers
type DatumRenderer struct {
	out     io.Writer
	network cardano.Network
}

// NewDatumRenderer creates a new datum renderer
func NewDatumRenderer(out io.Writer, network cardano.Network) *DatumRenderer {
	return &DatumRenderer{out: out, network: network}
}

// RenderDatum renders the generic tree and, when it is one, the governance record
func (r *DatumRenderer) RenderDatum(result *usecase.DecodedDatum) error {
	fmt.Fprintf(r.out, "Hash: %s\n", idStyle.Sprint(result.Hash))
	fmt.Fprintf(r.out, "Data: %s\n", result.Diagnostic)

	e := result.Entity
	if result.EntityErr != nil {
		fmt.Fprintln(r.out, labelStyle.Sprintf("Not a governance record: %v", result.EntityErr))
		return nil
	}

	fmt.Fprintln(r.out)
	switch {
	case e.DAO != nil:
		cborHex, err := plutus.MarshalHex(result.Data)
		if err != nil {
			return err
		}
		return NewDAORenderer(r.out, r.network).RenderEncodedDAO(&usecase.EncodedDAOConfig{
			Config: e.DAO,
			Datum:  result.Data,
			CBOR:   cborHex,
			Hash:   result.Hash,
		})
	case e.Proposal != nil:
		p := e.Proposal
		headerStyle.Fprintf(r.out, "Proposal: %s\n", p.Name)
		if result.ID != nil {
			fmt.Fprintf(r.out, "  ID: %s\n", idStyle.Sprint(*result.ID))
		}
		fmt.Fprintf(r.out, "  Status: %s\n", StatusLabel(p.Status))
		fmt.Fprintf(r.out, "  Ends: %s\n", FormatTime(p.EndTime()))
		fmt.Fprintf(r.out, "  Tally: %v\n", p.Tally)
		fmt.Fprintf(r.out, "  Seed: %s\n", p.Identifier)
	case e.Action != nil:
		a := e.Action
		headerStyle.Fprintf(r.out, "Action: %s\n", a.Name)
		if result.ID != nil {
			fmt.Fprintf(r.out, "  ID: %s\n", idStyle.Sprint(*result.ID))
		}
		fmt.Fprintf(r.out, "  Proposal: %s (index %d)\n", a.Identifier.ProposalIdentifier, a.Identifier.ActionIndex)
		fmt.Fprintf(r.out, "  Proposal Script: %s\n", a.Identifier.ProposalScriptHash)
		fmt.Fprintf(r.out, "  Option: %d\n", a.Option)
		fmt.Fprintf(r.out, "  Activates: %s\n", FormatTime(a.ActivationTime()))
		fmt.Fprintf(r.out, "  Treasury: %s\n", FormatAddress(a.TreasuryAddress, r.network))
		for _, t := range a.Targets {
			fmt.Fprintf(r.out, "  → %s  %s\n", FormatAddress(t.Address, r.network), FormatValue(t.Value()))
		}
	}
	return nil
}

// RenderIdentifiers renders derived proposal and action identifiers
func (r *DatumRenderer) RenderIdentifiers(result *usecase.DerivedIdentifiers) error {
	if result.Seed != nil {
		fmt.Fprintf(r.out, "Seed:     %s\n", result.Seed)
	}
	fmt.Fprintf(r.out, "Proposal: %s\n", idStyle.Sprint(result.ProposalID))
	for _, a := range result.Actions {
		fmt.Fprintf(r.out, "Action %d: %s\n", a.Index, idStyle.Sprint(a.ID))
	}
	return nil
}
