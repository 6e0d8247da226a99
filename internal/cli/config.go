package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the local config and the protocol it selects",
		Long: `Show or change the local config stored in .v3ops/config.local.json.

The config holds defaults for network, timeout and metrics-file that are used
when the flags are not given.

Without a subcommand it prints the stored values, the effective settings and
the Uniswap V3 addresses operations would use on the selected network: those
written by deploy core first, then the network's configured defaults.

Available subcommands:
  config set       Set a config value
  config remove    Remove a config value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.ShowConfig.Run(cmd.Context())
			return emit(cmd, a, result, err, render.NewConfigRenderer(cmd.OutOrStdout()).RenderShow)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigRemoveCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: `Set a config value in .v3ops/config.local.json.
Available keys: network, timeout, metrics-file

Examples:
  v3ops config set network sepolia
  v3ops config set timeout 10m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.SetConfig.Run(cmd.Context(), usecase.SetConfigParams{Key: args[0], Value: args[1]})
			if err != nil {
				return err
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderSet(result)
		},
	}
}

func newConfigRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a config value",
		Long: `Remove a config value from .v3ops/config.local.json.
Removing network falls back to default_network in v3ops.toml, then localhost.

Examples:
  v3ops config remove network`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.RemoveConfig.Run(cmd.Context(), usecase.RemoveConfigParams{Key: args[0]})
			if err != nil {
				return err
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderRemove(result)
		},
	}
}
