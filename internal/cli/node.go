package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

type nodeFlags struct {
	name    string
	port    string
	chainID uint64
	fork    string
}

func (f *nodeFlags) register(cmd *cobra.Command, withStart bool) {
	cmd.Flags().StringVar(&f.name, "name", "anvil", "Name of the node instance")
	cmd.Flags().StringVar(&f.port, "port", "8545", "Port the node listens on")
	if withStart {
		cmd.Flags().Uint64Var(&f.chainID, "chain-id", 0, "Chain id of the node (default: anvil's, or the forked network's)")
		cmd.Flags().StringVar(&f.fork, "fork", "", "Fork the state of a configured network")
	}
}

func (f *nodeFlags) params(op usecase.NodeOperation) usecase.ManageAnvilParams {
	return usecase.ManageAnvilParams{
		Operation: op,
		Name:      f.name,
		Port:      f.port,
		ChainID:   f.chainID,
		Fork:      f.fork,
	}
}

// NewNodeCmd creates the node command managing the local anvil devnet
func NewNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage the local anvil node",
		Long: `Manage the local anvil node backing the localhost network.

The node runs in the background. Its PID and log files are kept in .v3ops/node.

Examples:
  v3ops node start
  v3ops node start --fork sepolia
  v3ops node snapshot
  v3ops node revert 0x1
  v3ops node logs -f`,
	}

	cmd.AddCommand(newNodeOpCmd(usecase.NodeStart, "Start the node in the background", true))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeStop, "Stop the node", false))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeRestart, "Restart the node", true))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeStatus, "Show whether the node is running and healthy", false))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeSnapshot, "Snapshot the node state", false))
	cmd.AddCommand(newNodeRevertCmd())
	cmd.AddCommand(newNodeLogsCmd())

	return cmd
}

func newNodeOpCmd(op usecase.NodeOperation, short string, withStart bool) *cobra.Command {
	flags := &nodeFlags{}
	cmd := &cobra.Command{
		Use:   string(op),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.ManageAnvil.Run(cmd.Context(), flags.params(op))
			return emit(cmd, a, result, err, render.NewNodeRenderer(cmd.OutOrStdout()).Render)
		},
	}
	flags.register(cmd, withStart)
	return cmd
}

func newNodeRevertCmd() *cobra.Command {
	flags := &nodeFlags{}
	cmd := &cobra.Command{
		Use:   "revert <snapshot-id>",
		Short: "Revert the node to a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			params := flags.params(usecase.NodeRevert)
			params.SnapshotID = args[0]
			result, err := a.ManageAnvil.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewNodeRenderer(cmd.OutOrStdout()).Render)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newNodeLogsCmd() *cobra.Command {
	flags := &nodeFlags{}
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the node log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			return a.ManageAnvil.StreamLogs(cmd.Context(), flags.params(""), cmd.OutOrStdout(), follow)
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	return cmd
}
