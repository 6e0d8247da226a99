package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NewLiquidityCmd creates the liquidity command group
func NewLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "liquidity",
		Aliases: []string{"lp"},
		Short:   "Mint, grow, shrink and list positions",
	}

	cmd.AddCommand(newLiquidityAddCmd())
	cmd.AddCommand(newLiquidityIncreaseCmd())
	cmd.AddCommand(newLiquidityRemoveCmd())
	cmd.AddCommand(newLiquidityPositionsCmd())

	return cmd
}

func newLiquidityAddCmd() *cobra.Command {
	params := usecase.DefaultAddLiquidityParams()

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Mint a new position on a recorded pool",
		Long: `Approve both tokens and mint a position between --tick-lower and --tick-upper.
The new token id is written back to the manifest.

Examples:
  v3ops liquidity add
  v3ops liquidity add --manifest pool --tick-lower -600 --tick-upper 600 --amount0 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.AddLiquidity.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewLiquidityRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderLiquidity)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest holding the pool")
	f.Int32Var(&params.TickLower, "tick-lower", params.TickLower, "Lower tick of the range")
	f.Int32Var(&params.TickUpper, "tick-upper", params.TickUpper, "Upper tick of the range")
	f.StringVar(&params.Amount0, "amount0", params.Amount0, "Desired token0 amount in whole tokens")
	f.StringVar(&params.Amount1, "amount1", params.Amount1, "Desired token1 amount in whole tokens")
	f.Uint64Var(&params.GasLimit, "gas-limit", params.GasLimit, "Gas limit")
	f.DurationVar(&params.Deadline, "deadline", params.Deadline, "Deadline from now")

	return cmd
}

func newLiquidityIncreaseCmd() *cobra.Command {
	params := usecase.DefaultIncreaseLiquidityParams()
	var tokenID string

	cmd := &cobra.Command{
		Use:   "increase",
		Short: "Add tokens to an existing position",
		Long: `Add tokens to one of the sender's positions on the recorded pool. Without
--token-id the position is picked interactively.

Examples:
  v3ops liquidity increase
  v3ops liquidity increase --token-id 12 --amount0 100 --amount1 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if params.TokenID, err = parseBigInt("token-id", tokenID); err != nil {
				return err
			}
			result, err := a.IncreaseLiquidity.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewLiquidityRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderLiquidity)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest holding the pool")
	f.StringVar(&tokenID, "token-id", "", "Position token id (prompts when omitted)")
	f.StringVar(&params.Amount0, "amount0", params.Amount0, "Desired token0 amount in whole tokens")
	f.StringVar(&params.Amount1, "amount1", params.Amount1, "Desired token1 amount in whole tokens")
	f.Uint64Var(&params.GasLimit, "gas-limit", params.GasLimit, "Gas limit")
	f.DurationVar(&params.Deadline, "deadline", params.Deadline, "Deadline from now")

	return cmd
}

func newLiquidityRemoveCmd() *cobra.Command {
	params := usecase.DefaultRemoveLiquidityParams()
	var tokenID string
	var noCollect bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Withdraw a share of a position's liquidity",
		Long: `Decrease a position's liquidity by --percent of its current value, then
collect the withdrawn tokens and accrued fees to the sender. With --no-collect
the tokens stay owed to the position until "fees collect" runs.

Examples:
  v3ops liquidity remove --token-id 12
  v3ops liquidity remove --token-id 12 --percent 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if params.TokenID, err = parseBigInt("token-id", tokenID); err != nil {
				return err
			}
			params.Collect = !noCollect
			result, err := a.RemoveLiquidity.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewLiquidityRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderLiquidity)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest holding the pool")
	f.StringVar(&tokenID, "token-id", "", "Position token id (prompts when omitted)")
	f.UintVar(&params.Percent, "percent", params.Percent, "Share of the liquidity to remove, 1 to 100")
	f.BoolVar(&noCollect, "no-collect", false, "Leave the withdrawn tokens owed to the position")
	f.Uint64Var(&params.GasLimit, "gas-limit", params.GasLimit, "Gas limit")
	f.DurationVar(&params.Deadline, "deadline", params.Deadline, "Deadline from now")

	return cmd
}

func newLiquidityPositionsCmd() *cobra.Command {
	params := usecase.ListPositionsParams{Manifest: models.PoolManifest}
	var owner string

	cmd := &cobra.Command{
		Use:     "positions",
		Aliases: []string{"ls"},
		Short:   "List the positions owned by the sender or --owner",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if params.Owner, err = parseAddress("owner", owner); err != nil {
				return err
			}
			result, err := a.ListPositions.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewLiquidityRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderPositions)
		},
	}

	cmd.Flags().StringVar(&params.Manifest, "manifest", params.Manifest, "Only positions on this manifest's pair, when it exists")
	cmd.Flags().StringVar(&owner, "owner", "", "Account to list (defaults to the sender)")

	return cmd
}
