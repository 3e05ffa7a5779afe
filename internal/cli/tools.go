package cli

import (
	"github.com/spf13/cobra"

	"github.com/trebuchet-org/tally-cli/internal/cli/render"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// NewIDCmd creates the id command
func NewIDCmd() *cobra.Command {
	var params usecase.DeriveIdentifiersParams
	var indexes []uint

	cmd := &cobra.Command{
		Use:   "id",
		Short: "Derive proposal and action identifiers",
		Long: `Derive the identifier of a proposal from the seed output its creation
spends, and the identifiers of its actions by index. Action identifiers
also depend on the proposal script, which defaults to the registered one.`,
		Example: `  # Proposal id and the ids of its first two actions
  tally id --seed 4f2c...e1#0 --actions 2

  # One action of a known proposal
  tally id --proposal-id 9b1d... --index 3 --proposal-script 5a7e...`,
		Annotations: map[string]string{projectOptional: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			for _, i := range indexes {
				params.Indexes = append(params.Indexes, uint32(i))
			}
			result, err := app.DeriveIdentifiers.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderIdentifiers(result)
			}
			return render.NewDatumRenderer(cmd.OutOrStdout(), app.Config.Network).RenderIdentifiers(result)
		},
	}

	cmd.Flags().StringVar(&params.Seed, "seed", "", "Seed output reference (txid#index)")
	cmd.Flags().StringVar(&params.ProposalID, "proposal-id", "", "Proposal identifier (hex)")
	cmd.Flags().StringVar(&params.ProposalScript, "proposal-script", "", "Proposal script hash, defaults to scripts.proposal")
	cmd.Flags().Uint32Var(&params.Actions, "actions", 0, "Derive ids for action indexes 0..n-1")
	cmd.Flags().UintSliceVar(&indexes, "index", nil, "Derive the id of a specific action index (repeatable)")
	return cmd
}

// NewDatumCmd creates the datum command group
func NewDatumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datum",
		Short: "Inspect datum CBOR",
	}
	cmd.AddCommand(newDatumDecodeCmd())
	return cmd
}

func newDatumDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex|->",
		Short: "Decode datum CBOR into a tree and a governance record",
		Long: `Decode hex encoded datum CBOR. The generic data tree and datum hash are
always printed; when the datum is a DAO, proposal or action record its
fields are printed too. Use - to read the hex from stdin.`,
		Annotations: map[string]string{projectOptional: "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			input := args[0]
			if input == "-" {
				raw, err := readInput(cmd, input)
				if err != nil {
					return err
				}
				input = string(raw)
			}

			result, err := app.DecodeDatum.Run(cmd.Context(), usecase.DecodeDatumParams{Hex: input})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer(cmd.OutOrStdout(), app.Config.Network).RenderDatum(result)
			}
			return render.NewDatumRenderer(cmd.OutOrStdout(), app.Config.Network).RenderDatum(result)
		},
	}
}
