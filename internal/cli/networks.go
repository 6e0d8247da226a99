package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List networks and their Uniswap V3 deployments",
		Long: `List the built-in networks and those configured in v3ops.toml, with the
Uniswap V3 contracts each one resolves to.

A network is ready when the factory, position manager and swap router all
resolve, either from the manifest written by deploy core or from the
network's configured addresses. The selected network's addresses are listed
below the table.

Chain ids not given in the configuration are fetched from the RPC endpoint
and cached in .v3ops/cache/chainIds.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.ListNetworks.Run(cmd.Context())
			return emit(cmd, a, result, err, render.NewNetworksRenderer(cmd.OutOrStdout()).Render)
		},
	}
}
