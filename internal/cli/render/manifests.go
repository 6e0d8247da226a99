package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// ManifestsRenderer renders the stored deployment manifests
type ManifestsRenderer struct {
	out io.Writer
}

// NewManifestsRenderer creates a new manifests renderer
func NewManifestsRenderer(out io.Writer) *ManifestsRenderer {
	return &ManifestsRenderer{out: out}
}

// RenderList prints one row per manifest with its contract count
func (r *ManifestsRenderer) RenderList(result *usecase.ListManifestsResult) error {
	if len(result.Manifests) == 0 {
		fmt.Fprintf(r.out, "No manifests found for network %s\n", result.Network)
		return nil
	}

	fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Manifests on %s", result.Network))
	t := newTable(r.out)
	t.AppendHeader(table.Row{"Name", "Contracts", "Deployer", "Written", "Path"})
	for _, s := range result.Manifests {
		if s.LoadError != nil {
			t.AppendRow(table.Row{s.Name, errorStyle.Sprint("unreadable"), "", "", relativePath(s.Path)})
			continue
		}
		t.AppendRow(table.Row{
			s.Name,
			len(s.Manifest.Contracts),
			shortAddress(s.Manifest.Deployer),
			s.Manifest.Timestamp.Format("2006-01-02 15:04:05"),
			relativePath(s.Path),
		})
	}
	t.Render()

	for _, s := range result.Manifests {
		if s.LoadError != nil {
			fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%s: %v", s.Name, s.LoadError)))
		}
	}
	return nil
}

// RenderShow prints every contract recorded in one manifest
func (r *ManifestsRenderer) RenderShow(summary *usecase.ManifestSummary) error {
	m := summary.Manifest
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Manifest %s", summary.Name))
	keyValue(r.out, "path", relativePath(summary.Path))
	keyValue(r.out, "network", fmt.Sprintf("%s (chain %d)", m.Network, m.ChainID))
	keyValue(r.out, "deployer", addressStyle.Sprint(m.Deployer))
	keyValue(r.out, "written", m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Role", "Address", "Transaction", "Details"})
	for _, role := range m.Roles() {
		rec := m.Contracts[role]
		if rec == nil {
			continue
		}
		details := ""
		if rec.Token0 != "" {
			details = fmt.Sprintf("%s/%s fee %d", shortAddress(rec.Token0), shortAddress(rec.Token1), rec.Fee)
		}
		t.AppendRow(table.Row{role, addressStyle.Sprint(rec.Address), hashStyle.Sprint(shortHash(rec.TransactionHash)), details})
	}
	t.Render()
	return nil
}
