package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/v3ops/internal/adapters/abi"
	"github.com/trebuchet-org/v3ops/internal/adapters/anvil"
	"github.com/trebuchet-org/v3ops/internal/adapters/bindings"
	"github.com/trebuchet-org/v3ops/internal/adapters/blockchain"
	"github.com/trebuchet-org/v3ops/internal/adapters/fs"
	"github.com/trebuchet-org/v3ops/internal/adapters/interactive"
	"github.com/trebuchet-org/v3ops/internal/adapters/journal"
	"github.com/trebuchet-org/v3ops/internal/adapters/metrics"
	"github.com/trebuchet-org/v3ops/internal/adapters/pool"
	"github.com/trebuchet-org/v3ops/internal/adapters/progress"
	"github.com/trebuchet-org/v3ops/internal/adapters/repository/contracts"
	"github.com/trebuchet-org/v3ops/internal/adapters/repository/manifests"
	internalconfig "github.com/trebuchet-org/v3ops/internal/config"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// ProvideCurrentNetwork exposes the selected network name to the listing use cases
func ProvideCurrentNetwork(cfg *config.RuntimeConfig) usecase.CurrentNetwork {
	if cfg.Network == nil {
		return ""
	}
	return usecase.CurrentNetwork(cfg.Network.Name)
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	manifests.NewFileRepository,
	wire.Bind(new(usecase.ManifestStore), new(*manifests.FileRepository)),

	contracts.NewRepository,
	wire.Bind(new(usecase.ArtifactLoader), new(*contracts.Repository)),

	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStoreAdapter)),
)

// ABISet provides contract interface handling
var ABISet = wire.NewSet(
	abi.NewRegistry,
	wire.Bind(new(usecase.ABIRegistry), new(*abi.Registry)),

	abi.NewEventDecoder,
	wire.Bind(new(usecase.EventDecoder), new(*abi.EventDecoder)),
)

// BlockchainSet provides the RPC client and contract bindings on top of it
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
	wire.Bind(new(bindings.Backend), new(*blockchain.Client)),

	bindings.NewBinder,
	wire.Bind(new(usecase.ContractBinder), new(*bindings.Binder)),

	pool.NewReader,
	wire.Bind(new(usecase.PoolReader), new(*pool.Reader)),
)

// RecordingSet provides the transaction journal and metrics
var RecordingSet = wire.NewSet(
	journal.NewSQLiteJournal,
	wire.Bind(new(usecase.TxJournal), new(*journal.SQLiteJournal)),

	metrics.NewTextfileMetrics,
	wire.Bind(new(usecase.TxMetrics), new(*metrics.TextfileMetrics)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.PositionSelector), new(*interactive.SelectorAdapter)),

	progress.NewProgressSink,
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	internalconfig.ProvideNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolver)),

	ProvideCurrentNetwork,
)

// NodeSet provides the local anvil node manager
var NodeSet = wire.NewSet(
	anvil.NewManager,
	wire.Bind(new(usecase.AnvilManager), new(*anvil.Manager)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	ABISet,
	BlockchainSet,
	RecordingSet,
	InteractiveSet,
	ConfigSet,
	NodeSet,
)
