package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/trebuchet-org/tally-cli/internal/cli/render"
	"github.com/trebuchet-org/tally-cli/internal/domain/models"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// NewProposalCmd creates the proposal command group
func NewProposalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposal",
		Aliases: []string{"proposals", "p"},
		Short:   "List, inspect and act on proposals",
		Long: `Proposals are referenced by a prefix of their identifier or by name.
When a reference matches several proposals you are asked to pick one,
unless --non-interactive is set.`,
	}
	cmd.AddCommand(
		newProposalListCmd(),
		newProposalShowCmd(),
		newProposalCreateCmd(),
		newProposalVoteCmd(),
		newProposalEvaluateCmd(),
	)
	return cmd
}

func newProposalListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals",
		Example: `  # All proposals
  tally proposal list

  # Proposals waiting for evaluation
  tally proposal list --status ready`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var kind models.StatusKind
			if status != "" {
				if kind, err = models.ParseStatusKind(status); err != nil {
					return err
				}
			}

			result, err := app.ListProposals.Run(cmd.Context(), usecase.ListProposalsParams{Status: kind})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderProposalList(result)
			}
			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Network).RenderProposalList(result)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, ready, passed, failed_quorum, failed_threshold)")
	return cmd
}

func newProposalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [proposal]",
		Short: "Show a proposal with its tally and actions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			detail, err := app.ShowProposal.Run(cmd.Context(), usecase.ShowProposalParams{Ref: optionalArg(args)})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderProposal(detail)
			}
			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Network).RenderProposal(detail)
		},
	}
}

func newProposalCreateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "create <draft.yaml>",
		Short: "Plan the creation of a proposal from a draft",
		Long: `Plan a transaction that creates a proposal and its treasury actions.

The draft is a YAML document:

  name: Fund the grants program
  description: Pay the first grants round
  creator: addr_test1...
  duration: 72h
  options: 2
  actions:
    - name: Grants round 1
      option: 1
      activation_delay: 24h
      targets:
        - address: addr_test1...
          lovelace: 5000000

Use - to read the draft from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			draft, err := usecase.ParseProposalDraft(raw)
			if err != nil {
				return err
			}

			result, err := app.CreateProposal.Run(cmd.Context(), usecase.CreateProposalParams{Draft: draft, DryRun: dryRun})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderPlan(result)
			}
			return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.Network).RenderPlan(result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the plan without writing it")
	return cmd
}

func newProposalVoteCmd() *cobra.Command {
	var (
		option int
		voter  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "vote [proposal]",
		Short: "Plan a vote on an active proposal",
		Long: `Plan a vote for one option of an active proposal. The vote weighs as much
as the governance tokens held at the voter address.`,
		Example: `  tally proposal vote 3fa8 --option 1 --voter addr_test1...`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if option < 0 {
				return fmt.Errorf("--option is required")
			}
			if voter == "" {
				return fmt.Errorf("--voter is required")
			}

			result, err := app.CastVote.Run(cmd.Context(), usecase.CastVoteParams{
				Ref:    optionalArg(args),
				Option: uint32(option),
				Voter:  voter,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderVote(result)
			}
			return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.Network).RenderVote(result)
		},
	}

	cmd.Flags().IntVarP(&option, "option", "o", -1, "Option to vote for")
	cmd.Flags().StringVar(&voter, "voter", "", "Address holding the governance tokens")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the plan without writing it")
	return cmd
}

func newProposalEvaluateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "evaluate [proposal]",
		Short: "Plan the evaluation of a proposal whose voting ended",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.EvaluateProposal.Run(cmd.Context(), usecase.EvaluateProposalParams{
				Ref:    optionalArg(args),
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderEvaluation(result)
			}
			return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.Network).RenderEvaluation(result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the plan without writing it")
	return cmd
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// readInput reads a file, or stdin for "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}
