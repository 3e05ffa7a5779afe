package render

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// ActionsRenderer renders treasury actions
type ActionsRenderer struct {
	out     io.Writer
	network cardano.Network
}

// NewActionsRenderer creates a new actions renderer
func NewActionsRenderer(out io.Writer, network cardano.Network) *ActionsRenderer {
	return &ActionsRenderer{out: out, network: network}
}

// RenderActionList renders actions as a table
func (r *ActionsRenderer) RenderActionList(result *usecase.ActionListResult) error {
	if len(result.Actions) == 0 {
		fmt.Fprintln(r.out, "No actions found")
		renderInvalid(r.out, result.Invalid)
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Proposal", "Index", "Option", "Activates", "Pays", "State"})
	for _, e := range result.Actions {
		a := e.Action
		id := idStyle.Sprint(ShortID(e.ID))
		if e.Mismatch != nil {
			id = mismatchStyle.Sprintf("%s!", ShortID(e.ID))
		}
		t.AppendRow(table.Row{
			id,
			nameStyle.Sprint(truncate(a.Name, 32)),
			ShortID(a.Identifier.ProposalIdentifier),
			a.Identifier.ActionIndex,
			a.Option,
			FormatTime(a.ActivationTime()),
			FormatValue(a.Total()),
			executionState(e),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	renderInvalid(r.out, result.Invalid)
	return nil
}

// RenderAction renders a single action with its targets
func (r *ActionsRenderer) RenderAction(entry *usecase.ActionEntry) error {
	r.renderActionSummary(entry, "")
	return nil
}

func (r *ActionsRenderer) renderActionSummary(e *usecase.ActionEntry, indent string) {
	a := e.Action
	fmt.Fprintf(r.out, "%s%s %s  option %d  %s\n", indent,
		idStyle.Sprint(ShortID(e.ID)), nameStyle.Sprint(a.Name), a.Option, executionState(e))
	fmt.Fprintf(r.out, "%s  Activates: %s\n", indent, FormatTime(a.ActivationTime()))
	fmt.Fprintf(r.out, "%s  Treasury: %s\n", indent, FormatAddress(a.TreasuryAddress, r.network))
	if a.Description != "" {
		fmt.Fprintf(r.out, "%s  %s\n", indent, labelStyle.Sprint(strings.ReplaceAll(a.Description, "\n", " ")))
	}
	if e.Mismatch != nil {
		fmt.Fprintf(r.out, "%s  %s\n", indent, mismatchStyle.Sprint(e.Mismatch))
	}
	for _, t := range a.Targets {
		line := fmt.Sprintf("%s  → %s  %s", indent, FormatAddress(t.Address, r.network), FormatValue(t.Value()))
		if t.Datum.Present {
			line += labelStyle.Sprintf("  datum %s", truncate(hex.EncodeToString(t.Datum.Inline), 24))
		}
		fmt.Fprintln(r.out, line)
	}
}

func executionState(e *usecase.ActionEntry) string {
	if e.Executed {
		return executedStyle.Sprint("executed")
	}
	return pendingStyle.Sprint("pending")
}
