package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// TradeRenderer renders swaps, fee collection and transfers
type TradeRenderer struct {
	out io.Writer
	op  *OperationRenderer
}

// NewTradeRenderer creates a new trade renderer
func NewTradeRenderer(out io.Writer, explorerURL string) *TradeRenderer {
	return &TradeRenderer{out: out, op: NewOperationRenderer(out, explorerURL)}
}

// RenderSwap prints the trade and the resulting balance changes
func (r *TradeRenderer) RenderSwap(result *usecase.SwapResult) error {
	r.op.Header(result.OperationSummary)

	keyValue(r.out, "route", fmt.Sprintf("%s → %s (fee %s)", result.TokenIn.Symbol, result.TokenOut.Symbol, formatFee(result.Fee)))
	keyValue(r.out, "amount in", FormatAmount(result.TokenIn, result.AmountIn))
	if result.QuotedOut != nil {
		keyValue(r.out, "quoted out", FormatAmount(result.TokenOut, result.QuotedOut))
	}
	if result.Approved {
		keyValue(r.out, "approval", "sent")
	}
	if result.SlotBefore != nil && result.SlotAfter != nil {
		keyValue(r.out, "tick", fmt.Sprintf("%d → %d", result.SlotBefore.Tick, result.SlotAfter.Tick))
	}

	fmt.Fprintln(r.out)
	t := newTable(r.out)
	t.AppendHeader(table.Row{"Token", "Before", "After", "Change"})
	t.AppendRow(balanceRow(result.TokenIn, result.BalanceIn))
	t.AppendRow(balanceRow(result.TokenOut, result.BalanceOut))
	t.Render()

	r.op.Footer(result.OperationSummary)
	return nil
}

// RenderFees prints owed or collected fees per position
func (r *TradeRenderer) RenderFees(result *usecase.FeesResult) error {
	r.op.Header(result.OperationSummary)

	if len(result.Positions) == 0 {
		fmt.Fprintln(r.out, "No positions selected")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Token ID", "Pair", "Owed0", "Owed1", "Received0", "Received1"})
	for _, c := range result.Positions {
		p := c.Position.Position
		received0, received1 := "-", "-"
		if c.Skipped {
			received0 = labelStyle.Sprint("nothing owed")
		} else if c.Received0.After != nil {
			received0 = FormatDelta(c.Position.Token0, c.Received0.Before, c.Received0.After)
			received1 = FormatDelta(c.Position.Token1, c.Received1.Before, c.Received1.After)
		}
		t.AppendRow(table.Row{
			p.TokenID,
			fmt.Sprintf("%s/%s", c.Position.Token0.Symbol, c.Position.Token1.Symbol),
			FormatAmount(c.Position.Token0, p.TokensOwed0),
			FormatAmount(c.Position.Token1, p.TokensOwed1),
			received0,
			received1,
		})
	}
	t.Render()

	r.op.Footer(result.OperationSummary)
	return nil
}

// RenderTransfer prints per-token transfers with sender and recipient balances
func (r *TradeRenderer) RenderTransfer(result *usecase.TransferResult) error {
	r.op.Header(result.OperationSummary)

	keyValue(r.out, "recipient", addressStyle.Sprint(result.Recipient.Hex()))
	if result.EthBalance != nil {
		keyValue(r.out, "ETH balance", uniswapv3.FormatEther(result.EthBalance)+" ETH")
	}

	fmt.Fprintln(r.out)
	t := newTable(r.out)
	t.AppendHeader(table.Row{"Token", "Amount", "Sender", "Recipient", "Verified"})
	for _, tr := range result.Transfers {
		verified := successStyle.Sprint("yes")
		if !tr.Verified {
			verified = warningStyle.Sprint("no")
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%s (%s)", tr.Token.Symbol, tr.Role),
			FormatAmount(tr.Token, tr.Amount),
			FormatDelta(tr.Token, tr.Sender.Before, tr.Sender.After),
			FormatDelta(tr.Token, tr.Recipient.Before, tr.Recipient.After),
			verified,
		})
	}
	t.Render()

	r.op.Footer(result.OperationSummary)
	return nil
}

func balanceRow(token models.Token, change usecase.BalanceChange) table.Row {
	before, after := "-", "-"
	if change.Before != nil {
		before = FormatAmount(token, change.Before)
	}
	if change.After != nil {
		after = FormatAmount(token, change.After)
	}
	return table.Row{token.Symbol, before, after, FormatDelta(token, change.Before, change.After)}
}
