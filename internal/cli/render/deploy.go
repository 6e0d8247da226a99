package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	abiadapter "github.com/trebuchet-org/v3ops/internal/adapters/abi"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// DeployRenderer renders deployment results
type DeployRenderer struct {
	out io.Writer
	op  *OperationRenderer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, explorerURL string) *DeployRenderer {
	return &DeployRenderer{out: out, op: NewOperationRenderer(out, explorerURL)}
}

// RenderDeploy lists the contracts written to the manifest
func (r *DeployRenderer) RenderDeploy(result *usecase.DeployResult) error {
	r.op.Header(result.OperationSummary)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Role", "Address", ""})
	for _, c := range result.Contracts {
		note := ""
		if c.Existing {
			note = labelStyle.Sprint("existing")
		}
		t.AppendRow(table.Row{c.Role, addressStyle.Sprint(c.Address.Hex()), note})
	}
	t.Render()

	r.op.Footer(result.OperationSummary)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %d contracts to manifest %q", len(result.Contracts), result.Manifest)))
	return nil
}

// RenderOpenTrading prints the token and the events it emitted
func (r *DeployRenderer) RenderOpenTrading(result *usecase.OpenTradingResult) error {
	r.op.Header(result.OperationSummary)
	keyValue(r.out, "token", fmt.Sprintf("%s (%s)", result.Token.Symbol, result.Token.Address.Hex()))

	for _, ev := range result.Events {
		fmt.Fprintf(r.out, "  %s\n", hashStyle.Sprint(ev.Name))
		names := make([]string, 0, len(ev.Fields))
		for name := range ev.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			keyValue(r.out, "  "+name, abiadapter.FormatValue(ev.Fields[name]))
		}
	}

	r.op.Footer(result.OperationSummary)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess("Trading opened"))
	return nil
}
