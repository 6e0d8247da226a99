package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// JournalRenderer renders recorded transactions
type JournalRenderer struct {
	out io.Writer
}

// NewJournalRenderer creates a new journal renderer
func NewJournalRenderer(out io.Writer) *JournalRenderer {
	return &JournalRenderer{out: out}
}

// Render prints journal entries newest first
func (r *JournalRenderer) Render(result *usecase.ListJournalResult) error {
	if len(result.Entries) == 0 {
		fmt.Fprintln(r.out, "No transactions recorded")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Time", "Network", "Operation", "Step", "Status", "Hash", "Block"})
	for _, e := range result.Entries {
		status := successStyle.Sprint(string(e.Status))
		if e.Status != models.TransactionStatusExecuted {
			status = errorStyle.Sprint(string(e.Status))
		}
		t.AppendRow(table.Row{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Network,
			e.Operation,
			e.Label,
			status,
			hashStyle.Sprint(shortHash(e.Hash)),
			e.BlockNumber,
		})
	}
	t.Render()
	return nil
}
