package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/samber/lo"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

const chainIDTimeout = 10 * time.Second

// ChainIDFetcher asks an RPC endpoint for its chain id
type ChainIDFetcher func(ctx context.Context, rpcURL string) (uint64, error)

// NetworkResolver resolves network names to configurations with caching
type NetworkResolver struct {
	cachePath string
	project   *config.ProjectConfig
	fetch     ChainIDFetcher

	mu    sync.Mutex
	cache *NetworkCache
}

// NetworkCache caches chain ID lookups
type NetworkCache struct {
	Networks  map[string]uint64 `json:"networks"` // name -> chainID
	RPCs      map[string]uint64 `json:"rpcs"`     // rpcURL -> chainID
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewNetworkResolver creates a resolver over the built-in networks and v3ops.toml.
// The chain id cache lives in <dataDir>/cache/chainIds.json.
func NewNetworkResolver(dataDir string, project *config.ProjectConfig) *NetworkResolver {
	if project == nil {
		project = &config.ProjectConfig{}
	}
	r := &NetworkResolver{
		cachePath: filepath.Join(dataDir, "cache", "chainIds.json"),
		project:   project,
		fetch:     FetchChainID,
	}
	r.loadCache()
	return r
}

// WithFetcher replaces the eth_chainId lookup
func (r *NetworkResolver) WithFetcher(fetch ChainIDFetcher) *NetworkResolver {
	r.fetch = fetch
	return r
}

// GetNetworks returns the sorted names of built-in and configured networks
func (r *NetworkResolver) GetNetworks(ctx context.Context) []string {
	names := lo.Union(lo.Keys(BuiltinNetworks()), lo.Keys(r.project.Networks))
	sort.Strings(names)
	return names
}

// ResolveNetwork merges the v3ops.toml entry over the built-in one.
// Unknown names resolve only when <NAME>_RPC_URL is set.
// A missing chain id is fetched from the endpoint and cached.
func (r *NetworkResolver) ResolveNetwork(ctx context.Context, name string) (*config.Network, error) {
	return r.resolve(ctx, name, true)
}

// Lookup resolves like ResolveNetwork without contacting the endpoint.
// The chain id stays zero when neither configuration nor cache knows it.
func (r *NetworkResolver) Lookup(name string) (*config.Network, error) {
	return r.resolve(context.Background(), name, false)
}

func (r *NetworkResolver) resolve(ctx context.Context, name string, fetch bool) (*config.Network, error) {
	builtin, isBuiltin := BuiltinNetworks()[name]
	configured, isConfigured := r.project.Networks[name]
	envRPC := os.Getenv(config.RPCEnvVarName(name))

	if !isBuiltin && !isConfigured && envRPC == "" {
		return nil, fmt.Errorf("%w: %s (add [networks.%s] to %s or set %s)",
			domain.ErrNetworkNotConfigured, name, name, config.ProjectFile, config.RPCEnvVarName(name))
	}

	network := builtin
	network.Name = name
	if isConfigured {
		network.BuiltIn = false
		if err := applyNetworkConfig(&network, configured); err != nil {
			return nil, fmt.Errorf("network %s: %w", name, err)
		}
	}
	if !isConfigured || configured.RPCURL == "" {
		if envRPC != "" {
			network.RPCURL = envRPC
		}
	}

	if network.ChainID == 0 && network.RPCURL != "" {
		chainID, err := r.chainID(ctx, name, network.RPCURL, fetch)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", name, err)
		}
		network.ChainID = chainID
	}
	if network.ExplorerURL == "" {
		network.ExplorerURL = explorerForChain(network.ChainID)
	}

	return &network, nil
}

// applyNetworkConfig overlays the non-empty fields of a [networks.<name>] table
func applyNetworkConfig(network *config.Network, nc config.NetworkConfig) error {
	if nc.RPCURL != "" {
		network.RPCURL = nc.RPCURL
	}
	if nc.ChainID != 0 {
		network.ChainID = nc.ChainID
	}
	if nc.ExplorerURL != "" {
		network.ExplorerURL = nc.ExplorerURL
	}

	fields := []struct {
		key   string
		value string
		dst   *common.Address
	}{
		{"factory", nc.Contracts.Factory, &network.Contracts.Factory},
		{"position_manager", nc.Contracts.PositionManager, &network.Contracts.PositionManager},
		{"swap_router", nc.Contracts.SwapRouter, &network.Contracts.SwapRouter},
		{"quoter", nc.Contracts.Quoter, &network.Contracts.Quoter},
		{"weth9", nc.Contracts.WETH9, &network.Contracts.WETH9},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		value := os.ExpandEnv(f.value)
		if !common.IsHexAddress(value) {
			return fmt.Errorf("%w for contracts.%s: %q", domain.ErrInvalidAddress, f.key, value)
		}
		*f.dst = common.HexToAddress(value)
	}
	return nil
}

// chainID serves a cached chain id or asks the endpoint
func (r *NetworkResolver) chainID(ctx context.Context, name, rpcURL string, fetch bool) (uint64, error) {
	r.mu.Lock()
	chainID, cached := r.cache.RPCs[rpcURL]
	r.mu.Unlock()
	if cached || !fetch {
		return chainID, nil
	}

	ctx, cancel := context.WithTimeout(ctx, chainIDTimeout)
	defer cancel()
	chainID, err := r.fetch(ctx, rpcURL)
	if err != nil {
		return 0, err
	}
	r.updateCache(name, rpcURL, chainID)
	return chainID, nil
}

// FetchChainID calls eth_chainId on an endpoint
func FetchChainID(ctx context.Context, rpcURL string) (uint64, error) {
	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}
	defer client.Close()

	var result hexutil.Uint64
	if err := client.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("eth_chainId failed: %w", err)
	}
	return uint64(result), nil
}

// loadCache loads the chain ID cache from disk
func (r *NetworkResolver) loadCache() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = newNetworkCache()
	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return
	}

	var loaded NetworkCache
	if err := json.Unmarshal(data, &loaded); err != nil {
		return
	}
	if loaded.Networks != nil {
		r.cache.Networks = loaded.Networks
	}
	if loaded.RPCs != nil {
		r.cache.RPCs = loaded.RPCs
	}
	r.cache.UpdatedAt = loaded.UpdatedAt
}

func newNetworkCache() *NetworkCache {
	return &NetworkCache{
		Networks: make(map[string]uint64),
		RPCs:     make(map[string]uint64),
	}
}

// updateCache records a lookup. Write failures only cost a refetch next time.
func (r *NetworkResolver) updateCache(name, rpcURL string, chainID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Networks[name] = chainID
	r.cache.RPCs[rpcURL] = chainID
	r.cache.UpdatedAt = time.Now()

	_ = r.saveCache()
}

// saveCache saves the cache to disk
func (r *NetworkResolver) saveCache() error {
	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.cachePath, data, 0644)
}

var _ usecase.NetworkResolver = (*NetworkResolver)(nil)
