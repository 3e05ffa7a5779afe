package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// PlanRenderer renders transaction plans
type PlanRenderer struct {
	out     io.Writer
	network cardano.Network
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer, network cardano.Network) *PlanRenderer {
	return &PlanRenderer{out: out, network: network}
}

// RenderPlan renders a plan and where it was written
func (r *PlanRenderer) RenderPlan(result *usecase.PlanResult) error {
	plan := result.Plan
	headerStyle.Fprintf(r.out, "Transaction plan: %s\n", plan.Kind)

	fmt.Fprintf(r.out, "  Valid from: %s\n", FormatTimeMs(plan.ValidFromMs))
	fmt.Fprintf(r.out, "  Valid to:   %s\n", FormatTimeMs(plan.ValidToMs))

	if len(plan.Spends) > 0 {
		sectionStyle.Fprintln(r.out, "\nScript inputs:")
		for _, s := range plan.Spends {
			fmt.Fprintf(r.out, "  %s  %s\n", s.Ref, labelStyle.Sprint(diagnostic(s.Redeemer)))
		}
	}
	if len(plan.Inputs) > 0 {
		sectionStyle.Fprintln(r.out, "\nWallet inputs:")
		for _, ref := range plan.Inputs {
			fmt.Fprintf(r.out, "  %s\n", ref)
		}
	}
	if len(plan.ReferenceInputs) > 0 {
		sectionStyle.Fprintln(r.out, "\nReference inputs:")
		for _, ref := range plan.ReferenceInputs {
			fmt.Fprintf(r.out, "  %s\n", ref)
		}
	}
	if len(plan.Mints) > 0 {
		sectionStyle.Fprintln(r.out, "\nMints:")
		for _, m := range plan.Mints {
			fmt.Fprintf(r.out, "  %+d %s  %s\n", m.Quantity, FormatAsset(m.Asset), labelStyle.Sprint(diagnostic(m.Redeemer)))
		}
	}

	sectionStyle.Fprintln(r.out, "\nOutputs:")
	t := newTable()
	t.AppendHeader(table.Row{"#", "Address", "Value", "Datum"})
	for i, o := range plan.Outputs {
		datum := "-"
		if o.Datum != nil {
			datum = truncate(plutus.String(o.Datum), 48)
		}
		t.AppendRow(table.Row{i, FormatAddress(o.Address, r.network), FormatValue(o.Value), datum})
	}
	fmt.Fprintln(r.out, t.Render())

	r.renderIdentifiers(plan)

	fmt.Fprintln(r.out)
	if result.Path == "" {
		fmt.Fprintln(r.out, FormatWarning("Dry run: plan not written"))
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Plan written to %s", result.Path)))
	}
	return nil
}

// RenderVote renders a vote plan
func (r *PlanRenderer) RenderVote(result *usecase.VoteResult) error {
	fmt.Fprintf(r.out, "Voting on %s %s with weight %d\n",
		idStyle.Sprint(ShortID(result.Proposal.ID)), nameStyle.Sprint(result.Proposal.Proposal.Name), result.Weight)
	fmt.Fprintf(r.out, "New tally: %v\n\n", result.Tally)
	return r.RenderPlan(&result.PlanResult)
}

// RenderEvaluation renders an evaluation plan
func (r *PlanRenderer) RenderEvaluation(result *usecase.EvaluationResult) error {
	fmt.Fprintf(r.out, "Evaluating %s %s: %s\n\n",
		idStyle.Sprint(ShortID(result.Proposal.ID)), nameStyle.Sprint(result.Proposal.Proposal.Name), StatusLabel(result.Status))
	return r.RenderPlan(&result.PlanResult)
}

// RenderExecution renders an execution plan
func (r *PlanRenderer) RenderExecution(result *usecase.ExecutionResult) error {
	fmt.Fprintf(r.out, "Executing %s %s of proposal %s\n",
		idStyle.Sprint(ShortID(result.Action.ID)), nameStyle.Sprint(result.Action.Action.Name), ShortID(result.Proposal.ID))
	fmt.Fprintf(r.out, "Treasury outputs spent: %d, change: %s\n\n", len(result.Treasury), FormatValue(result.Change))
	return r.RenderPlan(&result.PlanResult)
}

func (r *PlanRenderer) renderIdentifiers(plan *models.TxPlan) {
	if len(plan.Identifiers) == 0 {
		return
	}
	labels := make([]string, 0, len(plan.Identifiers))
	for label := range plan.Identifiers {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	sectionStyle.Fprintln(r.out, "\nIdentifiers:")
	for _, label := range labels {
		fmt.Fprintf(r.out, "  %-12s %s\n", label, idStyle.Sprint(plan.Identifiers[label]))
	}
}

func diagnostic(d plutus.Data) string {
	if d == nil {
		return "-"
	}
	return plutus.String(d)
}
