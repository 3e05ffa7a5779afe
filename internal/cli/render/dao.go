package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/trebuchet-org/tally-cli/internal/domain/cardano"
	"github.com/trebuchet-org/tally-cli/internal/domain/plutus"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// DAORenderer renders the DAO configuration
type DAORenderer struct {
	out     io.Writer
	network cardano.Network
}

// NewDAORenderer creates a new DAO renderer
func NewDAORenderer(out io.Writer, network cardano.Network) *DAORenderer {
	return &DAORenderer{out: out, network: network}
}

// RenderDAO renders the on-chain DAO record
func (r *DAORenderer) RenderDAO(state *usecase.DAOState) error {
	cfg := state.Config
	headerStyle.Fprintf(r.out, "DAO: %s\n", cfg.Name)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	fmt.Fprintln(r.out, "\nScript:")
	fmt.Fprintf(r.out, "  Hash: %s\n", state.Script.Hash)
	fmt.Fprintf(r.out, "  Address: %s\n", FormatAddress(state.Script.Address, r.network))
	fmt.Fprintf(r.out, "  UTxO: %s\n", state.UTxO.Ref)

	r.renderParameters(cfg.GovernanceToken, cfg.ThresholdPercent, cfg.QuorumVotes, cfg.MinProposalCreateVotes, cfg.MinProposalDurationMs, cfg.MaxProposalDurationMs)

	fmt.Fprintln(r.out, "\nWhitelisted Proposal Scripts:")
	renderHashes(r.out, cfg.WhitelistedProposalScripts)
	fmt.Fprintln(r.out, "\nWhitelisted Action Scripts:")
	renderHashes(r.out, cfg.WhitelistedActionScripts)
	return nil
}

// RenderEncodedDAO renders a DAO datum built from the project file
func (r *DAORenderer) RenderEncodedDAO(result *usecase.EncodedDAOConfig) error {
	cfg := result.Config
	headerStyle.Fprintf(r.out, "DAO datum: %s\n", cfg.Name)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	r.renderParameters(cfg.GovernanceToken, cfg.ThresholdPercent, cfg.QuorumVotes, cfg.MinProposalCreateVotes, cfg.MinProposalDurationMs, cfg.MaxProposalDurationMs)

	fmt.Fprintln(r.out, "\nDatum:")
	fmt.Fprintf(r.out, "  Hash: %s\n", idStyle.Sprint(result.Hash))
	fmt.Fprintf(r.out, "  CBOR: %s\n", result.CBOR)
	fmt.Fprintf(r.out, "  Diagnostic: %s\n", plutus.String(result.Datum))
	return nil
}

func (r *DAORenderer) renderParameters(token cardano.AssetID, threshold uint32, quorum, minCreate, minMs, maxMs uint64) {
	fmt.Fprintln(r.out, "\nParameters:")
	fmt.Fprintf(r.out, "  Governance Token: %s\n", color.New(color.FgYellow).Sprint(FormatAsset(token)))
	fmt.Fprintf(r.out, "  Threshold: %d%%\n", threshold)
	fmt.Fprintf(r.out, "  Quorum: %d votes\n", quorum)
	fmt.Fprintf(r.out, "  Min Votes To Propose: %d\n", minCreate)
	fmt.Fprintf(r.out, "  Proposal Duration: %s to %s\n", msDuration(minMs), msDuration(maxMs))
}

func renderHashes(out io.Writer, hashes []cardano.ScriptHash) {
	if len(hashes) == 0 {
		fmt.Fprintln(out, labelStyle.Sprint("  (none)"))
		return
	}
	for _, h := range hashes {
		fmt.Fprintf(out, "  - %s\n", h)
	}
}

func msDuration(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
