package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NewPoolCmd creates the pool command group
func NewPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Create and inspect pools",
	}

	cmd.AddCommand(newPoolCreateCmd())
	cmd.AddCommand(newPoolStateCmd())
	cmd.AddCommand(newPoolBalanceCmd())
	cmd.AddCommand(newPoolHistoryCmd())

	return cmd
}

func newPoolCreateCmd() *cobra.Command {
	params := usecase.DefaultCreatePoolParams()
	var tokenA, tokenB, rangeMode string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create and initialize a pool, then mint a first position",
		Long: `Deploy a token pair (or reuse --token-a/--token-b), create the pool on the
factory from the "deployment" manifest, initialize it at --price and mint a
position around the current tick.

The manifest is written even when the mint fails, so the pool can be reused.

Examples:
  v3ops pool create
  v3ops pool create --fee 3000 --price 2 --range-mode spacing
  v3ops pool create --token-a 0x... --token-b 0x... --manifest pool2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if params.ExistingTokenA, err = parseAddress("token-a", tokenA); err != nil {
				return err
			}
			if params.ExistingTokenB, err = parseAddress("token-b", tokenB); err != nil {
				return err
			}
			if params.RangeMode, err = parseRangeMode(rangeMode); err != nil {
				return err
			}

			result, err := a.CreatePool.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewPoolRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderCreate)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest to record the pool in")
	f.StringVar(&tokenA, "token-a", "", "Reuse this token instead of deploying TokenA")
	f.StringVar(&tokenB, "token-b", "", "Reuse this token instead of deploying TokenB")
	tokenFlags(cmd, "a", &params.TokenA)
	tokenFlags(cmd, "b", &params.TokenB)
	f.Uint32Var(&params.Fee, "fee", params.Fee, "Fee tier in hundredths of a bip (500, 3000, 10000)")
	f.StringVar(&params.Price, "price", params.Price, "Initial price, token1 per token0 in base units")
	f.StringVar(&rangeMode, "range-mode", string(params.RangeMode), "How the mint range is derived: tick-offset or spacing")
	f.Int32Var(&params.RangeWidth, "range-width", 0, "Ticks (tick-offset) or spacings (spacing) on each side of the current tick")
	f.StringVar(&params.Amount0, "amount0", params.Amount0, "Desired token0 amount in whole tokens")
	f.StringVar(&params.Amount1, "amount1", params.Amount1, "Desired token1 amount in whole tokens")
	f.Uint64Var(&params.GasLimit, "gas-limit", params.GasLimit, "Gas limit of the mint")
	f.DurationVar(&params.Deadline, "deadline", params.Deadline, "Mint deadline from now")

	return cmd
}

func newPoolStateCmd() *cobra.Command {
	var params usecase.PoolInspectParams
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show slot0, liquidity and price of a recorded pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, params)
		},
	}
	cmd.Flags().StringVar(&params.Manifest, "manifest", models.PoolManifest, "Manifest holding the pool")
	return cmd
}

func newPoolBalanceCmd() *cobra.Command {
	params := usecase.PoolInspectParams{Balances: true}
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the token balances held by a recorded pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, params)
		},
	}
	cmd.Flags().StringVar(&params.Manifest, "manifest", models.PoolManifest, "Manifest holding the pool")
	return cmd
}

func runInspect(cmd *cobra.Command, params usecase.PoolInspectParams) error {
	a, err := getApp(cmd)
	if err != nil {
		return err
	}
	result, err := a.InspectPool.Run(cmd.Context(), params)
	return emit(cmd, a, result, err, render.NewPoolRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderState)
}

func newPoolHistoryCmd() *cobra.Command {
	params := usecase.DefaultPoolHistoryParams()
	var events []string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent swaps, mints, burns and collects of a recorded pool",
		Long: `Scan the pool's logs over the last --blocks blocks. Requests cover
--chunk-size blocks each and are paced to --rps per second.

Examples:
  v3ops pool history
  v3ops pool history --blocks 50000 --event swap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if params.Kinds, err = parseEventKinds(events); err != nil {
				return err
			}
			result, err := a.PoolHistory.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewPoolRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderHistory)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Manifest, "manifest", params.Manifest, "Manifest holding the pool")
	f.Uint64Var(&params.Blocks, "blocks", params.Blocks, "Number of blocks to scan back from the head")
	f.Uint64Var(&params.ChunkSize, "chunk-size", params.ChunkSize, "Blocks per log request")
	f.Float64Var(&params.RequestsPerSecond, "rps", params.RequestsPerSecond, "Maximum log requests per second")
	f.StringSliceVar(&events, "event", nil, "Only these events: swap, mint, burn, collect (repeatable)")

	return cmd
}
