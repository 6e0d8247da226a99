package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NodeRenderer renders local node operations
type NodeRenderer struct {
	out io.Writer
}

// NewNodeRenderer creates a new node renderer
func NewNodeRenderer(out io.Writer) *NodeRenderer {
	return &NodeRenderer{out: out}
}

// Render prints the outcome of a node operation
func (r *NodeRenderer) Render(result *usecase.ManageAnvilResult) error {
	if result.Operation == usecase.NodeStatus {
		return r.renderStatus(result)
	}

	if result.Message != "" {
		fmt.Fprintln(r.out, FormatSuccess(result.Message))
	}
	if result.Operation == usecase.NodeStart || result.Operation == usecase.NodeRestart {
		keyValue(r.out, "RPC", result.Instance.RPCURL())
		if result.Instance.ForkURL != "" {
			keyValue(r.out, "Fork", result.Instance.ForkURL)
		}
		keyValue(r.out, "Logs", result.Instance.LogFile)
	}
	if result.Operation == usecase.NodeSnapshot {
		fmt.Fprintf(r.out, "Revert with: v3ops node revert %s\n", result.SnapshotID)
	}
	return nil
}

func (r *NodeRenderer) renderStatus(result *usecase.ManageAnvilResult) error {
	status := result.Status
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Anvil '%s'", result.Instance.Name))

	if !status.Running {
		keyValue(r.out, "Status", errorStyle.Sprint("stopped"))
		keyValue(r.out, "Logs", status.LogFile)
		return nil
	}

	keyValue(r.out, "Status", successStyle.Sprint("running"))
	keyValue(r.out, "PID", status.PID)
	keyValue(r.out, "RPC", status.RPCURL)
	if status.RPCHealthy {
		keyValue(r.out, "Chain ID", status.ChainID)
		keyValue(r.out, "Block", status.BlockNumber)
	} else {
		keyValue(r.out, "RPC health", errorStyle.Sprint("unreachable"))
	}
	keyValue(r.out, "Logs", status.LogFile)
	if status.Error != "" {
		fmt.Fprintln(r.out, FormatWarning(status.Error))
	}
	return nil
}
