//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/v3ops/internal/adapters"
	"github.com/trebuchet-org/v3ops/internal/config"
	"github.com/trebuchet-org/v3ops/internal/logging"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewRunner,
		usecase.NewDeployCore,
		usecase.NewDeployWETH,
		usecase.NewDeployTokens,
		usecase.NewOpenTrading,
		usecase.NewCreatePool,
		usecase.NewInspectPool,
		usecase.NewPoolHistory,
		usecase.NewAddLiquidity,
		usecase.NewIncreaseLiquidity,
		usecase.NewRemoveLiquidity,
		usecase.NewListPositions,
		usecase.NewSwap,
		usecase.NewQueryFees,
		usecase.NewCollectFees,
		usecase.NewTransferTokens,
		usecase.NewListManifests,
		usecase.NewShowManifest,
		usecase.NewListNetworks,
		usecase.NewListJournal,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,
		usecase.NewManageAnvil,

		// App
		wire.Struct(new(Deployments), "*"),
		wire.Struct(new(Pools), "*"),
		wire.Struct(new(Trading), "*"),
		wire.Struct(new(Management), "*"),
		NewApp,
	)
	return nil, nil
}
