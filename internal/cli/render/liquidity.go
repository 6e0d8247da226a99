package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// LiquidityRenderer renders position results
type LiquidityRenderer struct {
	out io.Writer
	op  *OperationRenderer
}

// NewLiquidityRenderer creates a new liquidity renderer
func NewLiquidityRenderer(out io.Writer, explorerURL string) *LiquidityRenderer {
	return &LiquidityRenderer{out: out, op: NewOperationRenderer(out, explorerURL)}
}

// RenderLiquidity prints the outcome of add, increase or remove
func (r *LiquidityRenderer) RenderLiquidity(result *usecase.LiquidityResult) error {
	r.op.Header(result.OperationSummary)

	if result.TokenID != nil {
		keyValue(r.out, "position", result.TokenID)
	}
	keyValue(r.out, "pair", fmt.Sprintf("%s / %s", result.Token0.Symbol, result.Token1.Symbol))
	keyValue(r.out, "range", fmt.Sprintf("[%d, %d]", result.TickLower, result.TickUpper))
	if result.Slot0 != nil {
		keyValue(r.out, "current tick", result.Slot0.Tick)
	}
	if result.Liquidity != nil {
		keyValue(r.out, "liquidity", result.Liquidity)
	}
	if result.Amount0 != nil {
		keyValue(r.out, "amount0", FormatAmount(result.Token0, result.Amount0))
	}
	if result.Amount1 != nil {
		keyValue(r.out, "amount1", FormatAmount(result.Token1, result.Amount1))
	}
	if result.Collected != nil {
		keyValue(r.out, "collected0", FormatAmount(result.Token0, result.Collected.Uint("amount0")))
		keyValue(r.out, "collected1", FormatAmount(result.Token1, result.Collected.Uint("amount1")))
	}
	if result.Withdrawn != nil {
		keyValue(r.out, "received0", FormatAmount(result.Token0, result.Withdrawn.Received0.Delta()))
		keyValue(r.out, "received1", FormatAmount(result.Token1, result.Withdrawn.Received1.Delta()))
	}

	if result.Position != nil {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("Position after"))
		r.positionRows([]*usecase.PositionView{result.Position})
	}

	r.op.Footer(result.OperationSummary)
	return nil
}

// RenderPositions lists the positions owned by an account
func (r *LiquidityRenderer) RenderPositions(result *usecase.ListPositionsResult) error {
	keyValue(r.out, "owner", addressStyle.Sprint(result.Owner.Hex()))
	fmt.Fprintln(r.out)

	if len(result.Positions) == 0 {
		fmt.Fprintln(r.out, "No positions found")
		return nil
	}
	r.positionRows(result.Positions)
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Total: %d positions\n", len(result.Positions))
	return nil
}

func (r *LiquidityRenderer) positionRows(positions []*usecase.PositionView) {
	t := newTable(r.out)
	t.AppendHeader(table.Row{"Token ID", "Pair", "Fee", "Range", "Liquidity", "Owed"})
	for _, view := range positions {
		p := view.Position
		t.AppendRow(table.Row{
			p.TokenID,
			fmt.Sprintf("%s/%s", view.Token0.Symbol, view.Token1.Symbol),
			formatFee(p.Fee),
			fmt.Sprintf("[%d, %d]", p.TickLower, p.TickUpper),
			p.Liquidity,
			fmt.Sprintf("%s, %s", FormatAmount(view.Token0, p.TokensOwed0), FormatAmount(view.Token1, p.TokensOwed1)),
		})
	}
	t.Render()
}
