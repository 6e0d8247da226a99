package cli

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/app"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

type summarized interface {
	Summary() usecase.OperationSummary
}

// emit renders a use case result, or on failure the transactions already sent
func emit[T any](cmd *cobra.Command, a *app.App, result T, err error, human func(T) error) error {
	if err != nil {
		if s, ok := any(result).(summarized); ok && !lo.IsNil(result) && !a.Config.JSON {
			if summary := s.Summary(); len(summary.Transactions) > 0 {
				render.NewOperationRenderer(cmd.ErrOrStderr(), explorerURL(a)).Footer(summary)
			}
		}
		return err
	}
	return render.Select(cmd.OutOrStdout(), a.Config.JSON, human).Render(result)
}
