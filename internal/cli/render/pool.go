package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// PoolRenderer renders pool creation and inspection results
type PoolRenderer struct {
	out io.Writer
	op  *OperationRenderer
}

// NewPoolRenderer creates a new pool renderer
func NewPoolRenderer(out io.Writer, explorerURL string) *PoolRenderer {
	return &PoolRenderer{out: out, op: NewOperationRenderer(out, explorerURL)}
}

// RenderCreate prints the pool, the approvals and the initial position
func (r *PoolRenderer) RenderCreate(result *usecase.CreatePoolResult) error {
	r.op.Header(result.OperationSummary)

	state := "existing"
	switch {
	case result.Created:
		state = "created"
	case result.Initialized:
		state = "existing, initialized"
	}
	if !result.Canonical {
		state += ", non-canonical address"
	}
	keyValue(r.out, "pool", fmt.Sprintf("%s (%s)", addressStyle.Sprint(result.Pool.Hex()), state))
	keyValue(r.out, "pair", fmt.Sprintf("%s / %s", result.Token0.Symbol, result.Token1.Symbol))
	keyValue(r.out, "fee", formatFee(result.Fee))
	if result.SqrtPriceX96 != nil {
		keyValue(r.out, "sqrtPriceX96", result.SqrtPriceX96.String())
	}
	if result.Slot0 != nil {
		keyValue(r.out, "current tick", result.Slot0.Tick)
	}
	keyValue(r.out, "range", fmt.Sprintf("[%d, %d]", result.TickLower, result.TickUpper))

	if len(result.Balances) > 0 || len(result.Allowances) > 0 {
		fmt.Fprintln(r.out)
		t := newTable(r.out)
		t.AppendHeader(table.Row{"Token", "Balance", "Allowance"})
		for i, bal := range result.Balances {
			allowance := "-"
			if i < len(result.Allowances) {
				allowance = FormatAmount(result.Allowances[i].Token, result.Allowances[i].Amount)
			}
			t.AppendRow(table.Row{bal.Token.Symbol, FormatAmount(bal.Token, bal.Amount), allowance})
		}
		t.Render()
	}

	if result.Minted != nil {
		fmt.Fprintln(r.out)
		keyValue(r.out, "position", result.Minted.Uint("tokenId"))
		keyValue(r.out, "liquidity", result.Minted.Uint("liquidity"))
		keyValue(r.out, "amount0", FormatAmount(result.Token0, result.Minted.Uint("amount0")))
		keyValue(r.out, "amount1", FormatAmount(result.Token1, result.Minted.Uint("amount1")))
	}

	r.op.Footer(result.OperationSummary)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Pool recorded in manifest %q", result.Manifest)))
	return nil
}

// RenderState prints the pool snapshot and derived prices
func (r *PoolRenderer) RenderState(result *usecase.PoolStateResult) error {
	r.op.Header(result.OperationSummary)
	s := result.Snapshot

	keyValue(r.out, "pool", addressStyle.Sprint(s.Address.Hex()))
	keyValue(r.out, "token0", fmt.Sprintf("%s (%s)", result.Token0.Symbol, s.Token0.Hex()))
	keyValue(r.out, "token1", fmt.Sprintf("%s (%s)", result.Token1.Symbol, s.Token1.Hex()))
	keyValue(r.out, "fee", formatFee(s.Fee))
	keyValue(r.out, "tick spacing", s.TickSpacing)
	keyValue(r.out, "sqrtPriceX96", s.Slot0.SqrtPriceX96)
	keyValue(r.out, "tick", s.Slot0.Tick)
	keyValue(r.out, "liquidity", s.Liquidity)
	keyValue(r.out, "unlocked", s.Slot0.Unlocked)
	keyValue(r.out, "observations", fmt.Sprintf("%d/%d (next %d)",
		s.Slot0.ObservationIndex, s.Slot0.ObservationCardinality, s.Slot0.ObservationCardinalityNext))
	keyValue(r.out, "feeGrowth0", s.FeeGrowthGlobal0X128)
	keyValue(r.out, "feeGrowth1", s.FeeGrowthGlobal1X128)

	fmt.Fprintln(r.out)
	keyValue(r.out, "raw price", result.RawPrice.String())
	keyValue(r.out, "price", fmt.Sprintf("1 %s = %s %s", result.Token0.Symbol, result.Price0.StringFixed(6), result.Token1.Symbol))
	keyValue(r.out, "inverse", fmt.Sprintf("1 %s = %s %s", result.Token1.Symbol, result.Price1.StringFixed(6), result.Token0.Symbol))

	if len(result.Reserves) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("Reserves"))
		for _, res := range result.Reserves {
			keyValue(r.out, res.Token.Symbol, FormatAmount(res.Token, res.Amount))
		}
	}
	return nil
}

// RenderHistory prints the scanned pool events oldest first
func (r *PoolRenderer) RenderHistory(result *usecase.PoolHistoryResult) error {
	r.op.Header(result.OperationSummary)
	keyValue(r.out, "pool", addressStyle.Sprint(result.Pool.Hex()))
	keyValue(r.out, "blocks", fmt.Sprintf("%d - %d", result.FromBlock, result.ToBlock))

	kinds := make([]string, 0, len(result.Counts))
	for kind := range result.Counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		keyValue(r.out, kind, result.Counts[models.PoolEventKind(kind)])
	}

	if len(result.Events) == 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "No events found")
		return nil
	}

	fmt.Fprintln(r.out)
	t := newTable(r.out)
	t.AppendHeader(table.Row{"Block", "Event", result.Token0.Symbol, result.Token1.Symbol, "Tx"})
	for _, ev := range result.Events {
		t.AppendRow(table.Row{
			ev.BlockNumber,
			string(ev.Kind),
			FormatAmount(result.Token0, ev.Uint("amount0")),
			FormatAmount(result.Token1, ev.Uint("amount1")),
			hashStyle.Sprint(shortHash(ev.TxHash.Hex())),
		})
	}
	t.Render()
	return nil
}

// formatFee renders a fee in hundredths of a bip as a percentage
func formatFee(fee uint32) string {
	return fmt.Sprintf("%d (%.2f%%)", fee, float64(fee)/10000)
}
