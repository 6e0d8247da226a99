package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NewSwapCmd creates the swap command
func NewSwapCmd() *cobra.Command {
	params := usecase.DefaultSwapParams()

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap TokenA for TokenB through the router",
		Long: `Swap --amount of TokenA for TokenB (or TokenB for TokenA with --reverse) on the
pool recorded in the manifest. The router is approved only when the current
allowance is too small.

Examples:
  v3ops swap
  v3ops swap --amount 250 --reverse --min-out 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.Swap.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewTradeRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderSwap)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest holding the pool")
	f.StringVar(&params.Amount, "amount", params.Amount, "Input amount in whole tokens")
	f.BoolVar(&params.Reverse, "reverse", false, "Swap TokenB for TokenA")
	f.BoolVar(&params.Quote, "quote", params.Quote, "Ask the quoter for the expected output first")
	f.StringVar(&params.MinOut, "min-out", "", "Minimum output in whole tokens")
	f.Uint64Var(&params.GasLimit, "gas-limit", params.GasLimit, "Gas limit")
	f.DurationVar(&params.Deadline, "deadline", params.Deadline, "Deadline from now")

	return cmd
}

// NewFeesCmd creates the fees command group
func NewFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Query and collect position fees",
	}
	cmd.AddCommand(newFeesCmd("query", "Show the tokens owed to positions", false))
	cmd.AddCommand(newFeesCmd("collect", "Collect the tokens owed to positions", true))
	return cmd
}

func newFeesCmd(use, short string, collect bool) *cobra.Command {
	params := usecase.DefaultFeesParams()
	var tokenIDs []string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `. Without --token-id the positions are picked interactively.
Positions with nothing owed are skipped without a transaction.

Examples:
  v3ops fees ` + use + ` --token-id 12
  v3ops fees ` + use + ` --token-id 12,13`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if params.TokenIDs, err = parseTokenIDs(tokenIDs); err != nil {
				return err
			}

			var result *usecase.FeesResult
			if collect {
				result, err = a.CollectFees.Run(cmd.Context(), params)
			} else {
				result, err = a.QueryFees.Run(cmd.Context(), params)
			}
			return emit(cmd, a, result, err, render.NewTradeRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderFees)
		},
	}

	cmd.Flags().StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest holding the pool")
	cmd.Flags().StringSliceVar(&tokenIDs, "token-id", nil, "Position token ids (prompts when omitted)")
	if collect {
		cmd.Flags().Uint64Var(&params.GasLimit, "gas-limit", params.GasLimit, "Gas limit per collect")
	}

	return cmd
}

// NewTransferCmd creates the transfer command
func NewTransferCmd() *cobra.Command {
	params := usecase.DefaultTransferParams()
	var recipient string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send the pool's tokens to a recipient and verify the balances",
		Long: `Transfer --amount of each pool token to --recipient and check that the
recipient balance grew by the amount. A mismatch is reported as a warning,
or fails the command with --strict.

Examples:
  v3ops transfer
  v3ops transfer --recipient 0x... --amount 5 --token TokenA`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if recipient != "" {
				if params.Recipient, err = parseAddress("recipient", recipient); err != nil {
					return err
				}
			}
			result, err := a.TransferTokens.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewTradeRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderTransfer)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest holding the tokens")
	f.StringVar(&recipient, "recipient", "", "Recipient address (defaults to "+usecase.DefaultTransferRecipient.Hex()+")")
	f.StringVar(&params.Amount, "amount", params.Amount, "Amount of each token in whole tokens")
	f.StringSliceVar(&params.Roles, "token", nil, "Only these roles ("+models.RoleTokenA+", "+models.RoleTokenB+")")

	return cmd
}
