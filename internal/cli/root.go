package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trebuchet-org/tally-cli/internal/adapters/progress"
	"github.com/trebuchet-org/tally-cli/internal/app"
	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// projectOptional marks commands that also work outside a tally project
	projectOptional = "project-optional"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var spinnerSink *progress.SpinnerSink

	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "On-chain DAO governance for Cardano",
		Long: `Tally reads DAO, proposal and action records from Cardano script outputs
and prepares the transaction plans that create proposals, cast votes,
evaluate results and pay out treasury actions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				if _, ok := cmd.Annotations[projectOptional]; !ok {
					return err
				}
				projectRoot = "."
			}

			v := config.SetupViper(projectRoot, cmd)

			// Progress goes to stderr, and not at all for machine readable output
			var sink usecase.ProgressSink = progress.NewNopSink()
			if !v.GetBool("json") {
				spinnerSink = progress.NewSpinnerSink()
				sink = spinnerSink
			}

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			appInstance.Logger.Debug("initialized", "project", appInstance.Config.ProjectRoot, "network", appInstance.Config.Network)

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if spinnerSink != nil {
				spinnerSink.Stop()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network addresses are rendered for (mainnet, preprod, preview)")
	rootCmd.PersistentFlags().String("now", "", "Pin the current time (RFC 3339) for reproducible plans")
	rootCmd.PersistentFlags().String("plan-format", "", "Format of written plans (json, yaml)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "governance",
		Title: "Governance Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "tools",
		Title: "Codec Tools",
	})

	daoCmd := NewDAOCmd()
	daoCmd.GroupID = "governance"
	rootCmd.AddCommand(daoCmd)

	proposalCmd := NewProposalCmd()
	proposalCmd.GroupID = "governance"
	rootCmd.AddCommand(proposalCmd)

	actionCmd := NewActionCmd()
	actionCmd.GroupID = "governance"
	rootCmd.AddCommand(actionCmd)

	idCmd := NewIDCmd()
	idCmd.GroupID = "tools"
	rootCmd.AddCommand(idCmd)

	datumCmd := NewDatumCmd()
	datumCmd.GroupID = "tools"
	rootCmd.AddCommand(datumCmd)

	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
