package usecase

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

// ManifestStore handles persistence of deployment manifests
type ManifestStore interface {
	Load(ctx context.Context, network, name string) (*models.Manifest, error)
	Save(ctx context.Context, network, name string, manifest *models.Manifest) error
	List(ctx context.Context, network string) ([]string, error)
	Path(network, name string) string
	// WriteABI stores an interface description next to the manifests and returns its reference
	WriteABI(ctx context.Context, network, role string, abiJSON []byte) (*models.ABIRef, error)
	ReadABI(ctx context.Context, network string, ref *models.ABIRef) ([]byte, error)
}

// ChainClient is the connection to the selected network
type ChainClient interface {
	// Connect dials the endpoint and returns the chain id it serves
	Connect(ctx context.Context, rpcURL string) (uint64, error)
	Sender() (common.Address, bool)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	// Deploy sends a contract creation transaction and returns it with the expected address
	Deploy(ctx context.Context, code []byte, opts TxOptions) (*types.Transaction, common.Address, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Close()
}

// TxOptions overrides transaction fields. Zero values mean estimate or none.
type TxOptions struct {
	GasLimit uint64
	Value    *big.Int
}

// Contract is a callable proxy for a deployed contract
type Contract interface {
	Name() string
	Address() common.Address
	ABI() *abi.ABI
	Call(ctx context.Context, method string, args ...any) ([]any, error)
	Transact(ctx context.Context, opts TxOptions, method string, args ...any) (*types.Transaction, error)
}

// ContractBinder combines an address and an ABI into a Contract.
// Binding never checks the address; mismatches surface on the first call.
type ContractBinder interface {
	Bind(name string, address common.Address, contractABI *abi.ABI) Contract
}

// ABIRegistry provides the interface descriptions shipped with the binary
type ABIRegistry interface {
	Get(name string) (*abi.ABI, error)
	JSON(name string) ([]byte, error)
	Parse(data []byte) (*abi.ABI, error)
}

// ArtifactLoader finds compilation artifacts for contracts to deploy
type ArtifactLoader interface {
	Load(ctx context.Context, name string) (*models.Artifact, error)
	Link(artifact *models.Artifact, libraries map[string]common.Address) ([]byte, error)
}

// EventDecoder decodes receipt logs
type EventDecoder interface {
	Decode(log *types.Log, contractABI *abi.ABI) (*models.DecodedEvent, error)
}

// PoolReader reads pool state in one round trip
type PoolReader interface {
	Snapshot(ctx context.Context, pool common.Address) (*models.PoolSnapshot, error)
}

// JournalFilter narrows journal listings
type JournalFilter struct {
	Network   string
	Operation string
	Limit     int
}

// TxJournal records every submitted transaction
type TxJournal interface {
	Record(ctx context.Context, entry *models.JournalEntry) error
	List(ctx context.Context, filter JournalFilter) ([]*models.JournalEntry, error)
}

// TxMetrics observes submitted transactions
type TxMetrics interface {
	ObserveTransaction(operation string, record models.TxRecord)
	Flush() error
}

// PositionSelector picks positions interactively
type PositionSelector interface {
	SelectPosition(ctx context.Context, positions []*PositionView, prompt string) (*PositionView, error)
	SelectPositions(ctx context.Context, positions []*PositionView, prompt string) ([]*PositionView, error)
}

// NetworkResolver resolves network names to configurations
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, name string) (*config.Network, error)
}

// LocalConfigStore persists the per-project overrides in .v3ops/config.local.json
type LocalConfigStore interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, config *config.LocalConfig) error
	GetPath() string
}

// AnvilManager runs local anvil nodes
type AnvilManager interface {
	Start(ctx context.Context, instance *domain.AnvilInstance) error
	Stop(ctx context.Context, instance *domain.AnvilInstance) error
	GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error)
	StreamLogs(ctx context.Context, instance *domain.AnvilInstance, w io.Writer, follow bool) error
	TakeSnapshot(ctx context.Context, instance *domain.AnvilInstance) (string, error)
	RevertSnapshot(ctx context.Context, instance *domain.AnvilInstance, snapshotID string) error
}

// Progress tracking interfaces

// ExecutionStage is a step of the operation runner
type ExecutionStage string

const (
	StagePreparing  ExecutionStage = "Preparing"
	StageSubmitting ExecutionStage = "Submitting"
	StageReporting  ExecutionStage = "Reporting"
	StageCompleted  ExecutionStage = "Completed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    ExecutionStage
	Message  string
	Spinner  bool
	Metadata any
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
