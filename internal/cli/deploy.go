package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NewDeployCmd creates the deploy command group
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy Uniswap V3 contracts and tokens",
	}

	cmd.AddCommand(newDeployCoreCmd())
	cmd.AddCommand(newDeployWETHCmd())
	cmd.AddCommand(newDeployTokensCmd())

	return cmd
}

func newDeployCoreCmd() *cobra.Command {
	var weth string
	var deployWETH bool
	var label string

	cmd := &cobra.Command{
		Use:   "core",
		Short: "Deploy the factory, descriptor, position manager and router",
		Long: `Deploy UniswapV3Factory, NFTDescriptor, NonfungibleTokenPositionDescriptor,
NonfungiblePositionManager and SwapRouter, and record them in the "deployment"
manifest. The position manager and router use the network's WETH9 unless
--weth or --deploy-weth is given.

Examples:
  v3ops deploy core --network localhost --deploy-weth
  v3ops deploy core --network sepolia`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			wethAddr, err := parseAddress("weth", weth)
			if err != nil {
				return err
			}

			result, err := a.DeployCore.Run(cmd.Context(), usecase.DeployCoreParams{
				WETH:                wethAddr,
				DeployWETH:          deployWETH,
				NativeCurrencyLabel: label,
			})
			return emit(cmd, a, result, err, render.NewDeployRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderDeploy)
		},
	}

	cmd.Flags().StringVar(&weth, "weth", "", "Existing WETH9 address (defaults to the network's WETH9)")
	cmd.Flags().BoolVar(&deployWETH, "deploy-weth", false, "Deploy a new WETH9 first")
	cmd.Flags().StringVar(&label, "native-label", "WETH", "Native currency label used by the position descriptor")
	cmd.MarkFlagsMutuallyExclusive("weth", "deploy-weth")

	return cmd
}

func newDeployWETHCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weth",
		Short: "Deploy WETH9 and record it in the \"weth\" manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.DeployWETH.Run(cmd.Context())
			return emit(cmd, a, result, err, render.NewDeployRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderDeploy)
		},
	}
}

func newDeployTokensCmd() *cobra.Command {
	tokenA, tokenB := usecase.DefaultTokenSpecs()
	var manifest, owner string

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Deploy the TokenA/TokenB pair",
		Long: `Deploy two bespoke ERC-20 tokens. The full supply is minted to --owner,
or to the sender when no owner is given.

Examples:
  v3ops deploy tokens
  v3ops deploy tokens --a-symbol DAI --b-symbol BI --supply-a 5000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			ownerAddr, err := parseAddress("owner", owner)
			if err != nil {
				return err
			}

			result, err := a.DeployTokens.Run(cmd.Context(), usecase.DeployTokensParams{
				Manifest: manifest,
				TokenA:   tokenA,
				TokenB:   tokenB,
				Owner:    ownerAddr,
			})
			return emit(cmd, a, result, err, render.NewDeployRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderDeploy)
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", models.TokensManifest, "Manifest to record the tokens in")
	cmd.Flags().StringVar(&owner, "owner", "", "Account receiving the supply (defaults to the sender)")
	tokenFlags(cmd, "a", &tokenA)
	tokenFlags(cmd, "b", &tokenB)

	return cmd
}

// tokenFlags registers name, symbol, decimals and supply flags for one token
func tokenFlags(cmd *cobra.Command, prefix string, spec *usecase.TokenSpec) {
	cmd.Flags().StringVar(&spec.Name, prefix+"-name", spec.Name, "Token "+prefix+" name")
	cmd.Flags().StringVar(&spec.Symbol, prefix+"-symbol", spec.Symbol, "Token "+prefix+" symbol")
	cmd.Flags().Uint8Var(&spec.Decimals, prefix+"-decimals", spec.Decimals, "Token "+prefix+" decimals")
	cmd.Flags().StringVar(&spec.Supply, "supply-"+prefix, spec.Supply, "Token "+prefix+" supply in whole tokens")
}

// NewTokenCmd creates the token command group
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Administer deployed tokens",
	}
	cmd.AddCommand(newOpenTradingCmd())
	return cmd
}

func newOpenTradingCmd() *cobra.Command {
	var manifest, role, l2Block, newLimit string
	var outputRoots []string
	var gasLimit uint64

	cmd := &cobra.Command{
		Use:   "open-trading",
		Short: "Call openTrading on a bespoke token",
		Long: `Call openTrading(address[],uint256,uint256) on a token recorded in a manifest.

Examples:
  v3ops token open-trading --l2-block 1200 --new-limit 1000000
  v3ops token open-trading --role TokenB --output-root 0xabc... --l2-block 1 --new-limit 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			roots, err := parseAddresses("output-root", outputRoots)
			if err != nil {
				return err
			}
			block, err := parseBigInt("l2-block", l2Block)
			if err != nil {
				return err
			}
			limit, err := parseBigInt("new-limit", newLimit)
			if err != nil {
				return err
			}

			result, err := a.OpenTrading.Run(cmd.Context(), usecase.OpenTradingParams{
				Manifest:      manifest,
				Role:          role,
				OutputRoots:   roots,
				L2BlockNumber: block,
				NewLimit:      limit,
				GasLimit:      gasLimit,
			})
			return emit(cmd, a, result, err, render.NewDeployRenderer(cmd.OutOrStdout(), explorerURL(a)).RenderOpenTrading)
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", models.TokensManifest, "Manifest holding the token")
	cmd.Flags().StringVar(&role, "role", models.RoleTokenA, "Token role in the manifest")
	cmd.Flags().StringSliceVar(&outputRoots, "output-root", nil, "Output root addresses (repeatable)")
	cmd.Flags().StringVar(&l2Block, "l2-block", "", "L2 block number")
	cmd.Flags().StringVar(&newLimit, "new-limit", "", "New trading limit in base units")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 0, "Gas limit (0 estimates)")
	_ = cmd.MarkFlagRequired("l2-block")
	_ = cmd.MarkFlagRequired("new-limit")

	return cmd
}
