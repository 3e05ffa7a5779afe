package cli

import (
	"github.com/spf13/cobra"

	"github.com/trebuchet-org/tally-cli/internal/cli/render"
)

// NewDAOCmd creates the dao command group
func NewDAOCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dao",
		Short: "Inspect the DAO configuration",
	}
	cmd.AddCommand(newDAOShowCmd(), newDAOEncodeCmd())
	return cmd
}

func newDAOShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the DAO record held at the DAO script",
		Long: `Show the DAO configuration read from the output at the DAO script that
carries the governance parameters and script whitelists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			state, err := app.ShowDAO.Run(cmd.Context())
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderDAO(state)
			}
			return render.NewDAORenderer(cmd.OutOrStdout(), app.Config.Network).RenderDAO(state)
		},
	}
}

func newDAOEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Encode the [dao] table of tally.toml as a DAO datum",
		Long: `Encode the DAO parameters from the [dao] table of tally.toml into the inline
datum the DAO output must carry, and print its CBOR and hash.`,
		Example: `  # Print the datum for deployment
  tally dao encode

  # Machine readable
  tally dao encode --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.EncodeDAOConfig.Run(cmd.Context())
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderEncodedDAO(result)
			}
			return render.NewDAORenderer(cmd.OutOrStdout(), app.Config.Network).RenderEncodedDAO(result)
		},
	}
}
