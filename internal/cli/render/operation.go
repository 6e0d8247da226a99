package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// OperationRenderer prints the parts every operation result shares
type OperationRenderer struct {
	out         io.Writer
	explorerURL string
}

// NewOperationRenderer creates a new operation renderer.
// Transaction hashes link to explorerURL when it is set.
func NewOperationRenderer(out io.Writer, explorerURL string) *OperationRenderer {
	return &OperationRenderer{out: out, explorerURL: explorerURL}
}

// Header prints the operation name and where it ran
func (r *OperationRenderer) Header(summary usecase.OperationSummary) {
	fmt.Fprintf(r.out, "%s on %s (chain %d)\n",
		sectionHeaderStyle.Sprint(Title(summary.Operation)), summary.Network, summary.ChainID)
	if summary.Sender != (common.Address{}) {
		keyValue(r.out, "sender", addressStyle.Sprint(summary.Sender.Hex()))
	}
	fmt.Fprintln(r.out)
}

// Footer prints transactions, verification warnings and written files
func (r *OperationRenderer) Footer(summary usecase.OperationSummary) {
	if len(summary.Transactions) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("Transactions"))
		r.transactions(summary.Transactions)
	}

	if len(summary.Warnings) > 0 {
		fmt.Fprintln(r.out)
		for _, w := range summary.Warnings {
			fmt.Fprintln(r.out, FormatWarning(w.String()))
		}
	}

	if len(summary.Saved) > 0 {
		fmt.Fprintln(r.out)
		for _, path := range summary.Saved {
			fmt.Fprintf(r.out, "📁 saved %s\n", relativePath(path))
		}
	}
}

func (r *OperationRenderer) transactions(txs []models.TxRecord) {
	t := newTable(r.out)
	t.AppendHeader(table.Row{"Step", "Status", "Hash", "Block", "Gas", "Created"})
	for _, tx := range txs {
		status := successStyle.Sprint(string(tx.Status))
		if tx.Status != models.TransactionStatusExecuted {
			status = errorStyle.Sprint(string(tx.Status))
		}
		t.AppendRow(table.Row{tx.Label, status, hashStyle.Sprint(r.txLink(tx.Hash)), tx.BlockNumber, tx.GasUsed, tx.ContractAddress})
	}
	t.Render()
}

func (r *OperationRenderer) txLink(hash string) string {
	if r.explorerURL == "" {
		return hash
	}
	return r.explorerURL + "/tx/" + hash
}

// relativePath returns the path relative to the current directory when possible
func relativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}
	return rel
}
