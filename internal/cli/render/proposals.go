package render

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/governance"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// ProposalsRenderer renders proposal lists and proposal details
type ProposalsRenderer struct {
	out     io.Writer
	network cardano.Network
}

// NewProposalsRenderer creates a new proposals renderer
func NewProposalsRenderer(out io.Writer, network cardano.Network) *ProposalsRenderer {
	return &ProposalsRenderer{out: out, network: network}
}

// RenderProposalList renders proposals as a table followed by a status summary
func (r *ProposalsRenderer) RenderProposalList(result *usecase.ProposalListResult) error {
	if len(result.Proposals) == 0 {
		fmt.Fprintln(r.out, "No proposals found")
		renderInvalid(r.out, result.Invalid)
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Status", "Ends", "Votes", "Lead"})
	for _, e := range result.Proposals {
		p := e.Proposal
		id := idStyle.Sprint(ShortID(e.ID))
		if e.Mismatch != nil {
			id = mismatchStyle.Sprintf("%s!", ShortID(e.ID))
		}
		t.AppendRow(table.Row{
			id,
			nameStyle.Sprint(truncate(p.Name, 40)),
			StatusLabel(p.Status),
			FormatTime(p.EndTime()),
			governance.TotalVotes(p.Tally).String(),
			winningShare(p.Tally),
		})
	}
	fmt.Fprintln(r.out, t.Render())

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, summaryLine(result.Summary))
	if result.Summary.Mismatched > 0 {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%d proposal(s) marked ! carry a token that does not match their identifier", result.Summary.Mismatched)))
	}
	renderInvalid(r.out, result.Invalid)
	return nil
}

// RenderProposal renders full details of one proposal and its actions
func (r *ProposalsRenderer) RenderProposal(detail *usecase.ProposalDetail) error {
	e := detail.Entry
	p := e.Proposal

	headerStyle.Fprintf(r.out, "Proposal: %s\n", p.Name)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	fmt.Fprintln(r.out, "\nBasic Information:")
	fmt.Fprintf(r.out, "  ID: %s\n", idStyle.Sprint(e.ID))
	fmt.Fprintf(r.out, "  Status: %s\n", StatusLabel(p.Status))
	fmt.Fprintf(r.out, "  Ends: %s\n", FormatTime(p.EndTime()))
	fmt.Fprintf(r.out, "  Seed: %s\n", p.Identifier)
	fmt.Fprintf(r.out, "  UTxO: %s\n", e.UTxO.Ref)
	if e.Mismatch != nil {
		fmt.Fprintf(r.out, "  %s\n", mismatchStyle.Sprint(e.Mismatch))
	}
	if p.Description != "" {
		fmt.Fprintln(r.out, "\nDescription:")
		for _, line := range strings.Split(p.Description, "\n") {
			fmt.Fprintf(r.out, "  %s\n", line)
		}
	}

	sectionStyle.Fprintln(r.out, "\nTally:")
	lead, _, ok := governance.Winner(p.Tally)
	for i, votes := range p.Tally {
		line := fmt.Sprintf("  Option %d: %d", i, votes)
		if ok && detail.TotalVotes.Sign() > 0 && uint32(i) == lead {
			line = color.New(color.FgGreen).Sprint(line + "  ◀")
		}
		fmt.Fprintln(r.out, line)
	}
	fmt.Fprintf(r.out, "  Total: %s", detail.TotalVotes)
	if detail.TotalVotes.Sign() > 0 && detail.WinningShare != nil {
		fmt.Fprintf(r.out, " (lead %s)", percent(detail.WinningShare))
	}
	fmt.Fprintln(r.out)

	sectionStyle.Fprintln(r.out, "\nActions:")
	if len(detail.Actions) == 0 {
		fmt.Fprintln(r.out, labelStyle.Sprint("  (none)"))
		return nil
	}
	actions := NewActionsRenderer(r.out, r.network)
	for _, a := range detail.Actions {
		actions.renderActionSummary(a, "  ")
	}
	return nil
}

func summaryLine(s usecase.ProposalSummary) string {
	kinds := make([]string, 0, len(s.ByStatus))
	for k := range s.ByStatus {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		label := StatusLabel(models.ProposalStatus{Kind: models.StatusKind(k)})
		if models.StatusKind(k) == models.StatusPassed {
			label = color.New(color.FgGreen).Sprint("Passed")
		}
		parts = append(parts, fmt.Sprintf("%s %d", label, s.ByStatus[models.StatusKind(k)]))
	}
	return fmt.Sprintf("Total: %d proposal(s)  %s", s.Total, strings.Join(parts, ", "))
}

func renderInvalid(out io.Writer, invalid []usecase.InvalidRecord) {
	if len(invalid) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, FormatWarning(fmt.Sprintf("%d output(s) could not be decoded:", len(invalid))))
	for _, rec := range invalid {
		fmt.Fprintf(out, "  %s  %s\n", rec.Ref, labelStyle.Sprint(rec.Reason))
	}
}

func winningShare(tally []uint64) string {
	if governance.TotalVotes(tally).Sign() == 0 {
		return "-"
	}
	return percent(governance.WinningShare(tally))
}

func percent(share *big.Rat) string {
	return new(big.Rat).Mul(share, big.NewRat(100, 1)).FloatString(1) + "%"
}
