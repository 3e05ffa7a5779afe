package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trebuchet-org/tally-cli/internal/cli/render"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// NewActionCmd creates the action command group
func NewActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "action",
		Aliases: []string{"actions", "a"},
		Short:   "List, inspect and execute treasury actions",
	}
	cmd.AddCommand(
		newActionListCmd(),
		newActionShowCmd(),
		newActionExecuteCmd(),
		newActionMarkExecutedCmd(),
	)
	return cmd
}

func newActionListCmd() *cobra.Command {
	var (
		proposal string
		pending  bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List treasury actions",
		Example: `  # Actions of one proposal
  tally action list --proposal 3fa8

  # Actions not executed yet
  tally action list --pending`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListActions.Run(cmd.Context(), usecase.ListActionsParams{
				Proposal: proposal,
				Pending:  pending,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderActionList(result)
			}
			return render.NewActionsRenderer(cmd.OutOrStdout(), app.Config.Network).RenderActionList(result)
		},
	}

	cmd.Flags().StringVar(&proposal, "proposal", "", "Only actions of this proposal (id prefix or name)")
	cmd.Flags().BoolVar(&pending, "pending", false, "Hide executed actions")
	return cmd
}

func newActionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <action>",
		Short: "Show an action with its targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			entry, err := app.ShowAction.Run(cmd.Context(), usecase.ShowActionParams{Ref: args[0]})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderAction(entry)
			}
			return render.NewActionsRenderer(cmd.OutOrStdout(), app.Config.Network).RenderAction(entry)
		},
	}
}

func newActionExecuteCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "execute <action>",
		Short: "Plan the payout of an action whose proposal passed",
		Long: `Plan a transaction that pays the targets of an action from the treasury.
The proposal must have passed with the action's option and the action's
activation time must have been reached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ExecuteAction.Run(cmd.Context(), usecase.ExecuteActionParams{
				Ref:    args[0],
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderExecution(result)
			}
			return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.Network).RenderExecution(result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the plan without writing it")
	return cmd
}

func newActionMarkExecutedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-executed <action>",
		Short: "Record that an action's execution was submitted",
		Long: `Record an action as executed in the local execution index, so that it is
not planned again before the next index export includes it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			entry, err := app.MarkExecuted.Run(cmd.Context(), usecase.MarkExecutedParams{Ref: args[0]})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderAction(entry)
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Action %s marked as executed", render.ShortID(entry.ID))))
			return nil
		},
	}
}
