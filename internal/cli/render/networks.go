package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NetworksRenderer renders the network listing
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// Render prints one row per network with its protocol coverage, then the
// protocol addresses of the selected network
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"", "Network", "Chain ID", "Uniswap V3", "RPC"})
	var failed []usecase.NetworkStatus
	var current *usecase.NetworkStatus
	for i, n := range result.Networks {
		marker := " "
		if n.Name == result.Current {
			marker = successStyle.Sprint("*")
			current = &result.Networks[i]
		}
		if n.Error != nil {
			failed = append(failed, n)
			t.AppendRow(table.Row{marker, n.Name, errorStyle.Sprint("unavailable"), "", ""})
			continue
		}
		rpc := n.RPCURL
		if n.BuiltIn {
			rpc += labelStyle.Sprint(" (built-in)")
		}
		t.AppendRow(table.Row{marker, n.Name, n.ChainID, coverage(n), rpc})
	}
	t.Render()

	if current != nil && len(current.Protocol) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Protocol on %s", current.Name))
		renderProtocol(r.out, current.Protocol)
	}

	for _, n := range failed {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%s: %v", n.Name, n.Error)))
	}
	return nil
}

func coverage(n usecase.NetworkStatus) string {
	switch {
	case n.Tradable:
		return successStyle.Sprint("ready")
	case len(n.Protocol) > 0:
		return warningStyle.Sprintf("partial (%d roles)", len(n.Protocol))
	default:
		return labelStyle.Sprint("not deployed")
	}
}

// renderProtocol prints role, address and where the address came from
func renderProtocol(out io.Writer, protocol []usecase.ProtocolAddress) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Role", "Address", "Source"})
	for _, p := range protocol {
		t.AppendRow(table.Row{p.Role, addressStyle.Sprint(p.Address.Hex()), labelStyle.Sprint(p.Source)})
	}
	t.Render()
}
