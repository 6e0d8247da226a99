package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/v3ops/internal/app"
	"github.com/trebuchet-org/v3ops/internal/cli/render"
	"github.com/trebuchet-org/v3ops/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// session holds what PersistentPreRunE builds so Execute can release it
type session struct {
	app    *app.App
	cancel context.CancelFunc
}

func (s *session) close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.app != nil {
		if err := s.app.Close(); err != nil {
			s.app.Log.Warn("failed to close app", "error", err)
		}
	}
}

// Execute runs the command line and prints a failed command's error
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{}
	rootCmd := newRootCmd(s)
	err := rootCmd.ExecuteContext(ctx)
	s.close()
	if err != nil {
		render.RenderError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&session{})
}

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "v3ops",
		Short: "Uniswap V3 deployment and operations tool",
		Long: `v3ops deploys Uniswap V3 core and periphery contracts, creates pools,
manages liquidity positions and trades against them. Deployed addresses are
recorded in per-network manifests under the deployments directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)
			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			s.app = appInstance

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				ctx, s.cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("network", "n", "", "Network to use (e.g. localhost, sepolia)")
	flags.Bool("debug", false, "Enable debug output")
	flags.Bool("non-interactive", false, "Disable interactive prompts")
	flags.Bool("json", false, "Output results as JSON")
	flags.Duration("timeout", 5*time.Minute, "Maximum duration of the command")
	flags.Bool("strict", false, "Fail when a post-transaction verification does not match")
	flags.String("metrics-file", "", "Write transaction metrics to this file in Prometheus text format")

	rootCmd.AddGroup(
		&cobra.Group{ID: "deploy", Title: "Deployment Commands"},
		&cobra.Group{ID: "pool", Title: "Pool Commands"},
		&cobra.Group{ID: "liquidity", Title: "Liquidity Commands"},
		&cobra.Group{ID: "trade", Title: "Trading Commands"},
		&cobra.Group{ID: "inspect", Title: "Inspection Commands"},
		&cobra.Group{ID: "management", Title: "Management Commands"},
	)

	addToGroup(rootCmd, "deploy", NewDeployCmd(), NewTokenCmd())
	addToGroup(rootCmd, "pool", NewPoolCmd())
	addToGroup(rootCmd, "liquidity", NewLiquidityCmd())
	addToGroup(rootCmd, "trade", NewSwapCmd(), NewFeesCmd(), NewTransferCmd())
	addToGroup(rootCmd, "inspect", NewManifestCmd(), NewJournalCmd())
	addToGroup(rootCmd, "management", NewNetworksCmd(), NewConfigCmd(), NewNodeCmd())

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func addToGroup(root *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.GroupID = group
		root.AddCommand(cmd)
	}
}

// skipsApp reports whether a command runs without configuration
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return cmd.Parent() != nil && cmd.Parent().Name() == "completion"
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}

// explorerURL returns the block explorer of the selected network
func explorerURL(a *app.App) string {
	if a.Config.Network == nil {
		return ""
	}
	return a.Config.Network.ExplorerURL
}
