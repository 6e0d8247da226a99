package app

import (
	"io"
	"log/slog"

	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Progress usecase.ProgressSink
	Journal  usecase.TxJournal

	// Deployment
	DeployCore   *usecase.DeployCore
	DeployWETH   *usecase.DeployWETH
	DeployTokens *usecase.DeployTokens
	OpenTrading  *usecase.OpenTrading

	// Pools and positions
	CreatePool        *usecase.CreatePool
	InspectPool       *usecase.InspectPool
	PoolHistory       *usecase.PoolHistory
	AddLiquidity      *usecase.AddLiquidity
	IncreaseLiquidity *usecase.IncreaseLiquidity
	RemoveLiquidity   *usecase.RemoveLiquidity
	ListPositions     *usecase.ListPositions

	// Trading
	Swap           *usecase.Swap
	QueryFees      *usecase.QueryFees
	CollectFees    *usecase.CollectFees
	TransferTokens *usecase.TransferTokens

	// Management
	ListManifests *usecase.ListManifests
	ShowManifest  *usecase.ShowManifest
	ListNetworks  *usecase.ListNetworks
	ListJournal   *usecase.ListJournal
	ShowConfig    *usecase.ShowConfig
	SetConfig     *usecase.SetConfig
	RemoveConfig  *usecase.RemoveConfig
	ManageAnvil   *usecase.ManageAnvil
}

// Deployments groups the deployment use cases for NewApp
type Deployments struct {
	Core        *usecase.DeployCore
	WETH        *usecase.DeployWETH
	Tokens      *usecase.DeployTokens
	OpenTrading *usecase.OpenTrading
}

// Pools groups the pool and position use cases for NewApp
type Pools struct {
	Create    *usecase.CreatePool
	Inspect   *usecase.InspectPool
	History   *usecase.PoolHistory
	Add       *usecase.AddLiquidity
	Increase  *usecase.IncreaseLiquidity
	Remove    *usecase.RemoveLiquidity
	Positions *usecase.ListPositions
}

// Trading groups the trading use cases for NewApp
type Trading struct {
	Swap        *usecase.Swap
	QueryFees   *usecase.QueryFees
	CollectFees *usecase.CollectFees
	Transfer    *usecase.TransferTokens
}

// Management groups the read-only and local configuration use cases for NewApp
type Management struct {
	ListManifests *usecase.ListManifests
	ShowManifest  *usecase.ShowManifest
	ListNetworks  *usecase.ListNetworks
	ListJournal   *usecase.ListJournal
	ShowConfig    *usecase.ShowConfig
	SetConfig     *usecase.SetConfig
	RemoveConfig  *usecase.RemoveConfig
	ManageAnvil   *usecase.ManageAnvil
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	progress usecase.ProgressSink,
	journal usecase.TxJournal,
	deployments Deployments,
	pools Pools,
	trading Trading,
	management Management,
) *App {
	return &App{
		Config:   cfg,
		Log:      log,
		Progress: progress,
		Journal:  journal,

		DeployCore:   deployments.Core,
		DeployWETH:   deployments.WETH,
		DeployTokens: deployments.Tokens,
		OpenTrading:  deployments.OpenTrading,

		CreatePool:        pools.Create,
		InspectPool:       pools.Inspect,
		PoolHistory:       pools.History,
		AddLiquidity:      pools.Add,
		IncreaseLiquidity: pools.Increase,
		RemoveLiquidity:   pools.Remove,
		ListPositions:     pools.Positions,

		Swap:           trading.Swap,
		QueryFees:      trading.QueryFees,
		CollectFees:    trading.CollectFees,
		TransferTokens: trading.Transfer,

		ListManifests: management.ListManifests,
		ShowManifest:  management.ShowManifest,
		ListNetworks:  management.ListNetworks,
		ListJournal:   management.ListJournal,
		ShowConfig:    management.ShowConfig,
		SetConfig:     management.SetConfig,
		RemoveConfig:  management.RemoveConfig,
		ManageAnvil:   management.ManageAnvil,
	}
}

// Close releases resources held beyond a single operation
func (a *App) Close() error {
	if closer, ok := a.Journal.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
