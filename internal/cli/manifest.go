package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// NewManifestCmd creates the manifest command group
func NewManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "manifest",
		Aliases: []string{"manifests"},
		Short:   "Inspect recorded deployment manifests",
	}
	cmd.AddCommand(newManifestListCmd())
	cmd.AddCommand(newManifestShowCmd())
	return cmd
}

func newManifestListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the manifests of the selected network",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.ListManifests.Run(cmd.Context())
			return emit(cmd, a, result, err, render.NewManifestsRenderer(cmd.OutOrStdout()).RenderList)
		},
	}
}

func newManifestShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the contracts recorded in a manifest",
		Long: `Show one manifest of the selected network.

Examples:
  v3ops manifest show deployment
  v3ops manifest show pool -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if a.Config.JSON {
				format = "json"
			}

			summary, err := a.ShowManifest.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "table", "":
				return render.NewManifestsRenderer(out).RenderShow(summary)
			case "json":
				return render.NewJSONRenderer[*models.Manifest](out).Render(summary.Manifest)
			case "yaml":
				return render.NewYAMLRenderer[*models.Manifest](out).Render(summary.Manifest)
			default:
				return fmt.Errorf("invalid --output %q (expected table, json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, json or yaml")
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions([]string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// NewJournalCmd creates the journal command
func NewJournalCmd() *cobra.Command {
	var params usecase.ListJournalParams

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List transactions sent by earlier runs",
		Long: `List the transactions recorded in the local journal, newest first.

Examples:
  v3ops journal
  v3ops journal --operation swap --limit 10
  v3ops journal --all-networks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := a.ListJournal.Run(cmd.Context(), params)
			return emit(cmd, a, result, err, render.NewJournalRenderer(cmd.OutOrStdout()).Render)
		},
	}

	cmd.Flags().StringVar(&params.Operation, "operation", "", "Only entries of this operation (e.g. \"swap\", \"pool create\")")
	cmd.Flags().IntVar(&params.Limit, "limit", 50, "Maximum number of entries")
	cmd.Flags().BoolVar(&params.AllNetworks, "all-networks", false, "Include entries of every network")

	return cmd
}
