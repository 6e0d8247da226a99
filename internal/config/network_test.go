package config

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
)

func failingFetcher(t *testing.T) ChainIDFetcher {
	return func(ctx context.Context, rpcURL string) (uint64, error) {
		t.Errorf("unexpected eth_chainId call to %s", rpcURL)
		return 0, errors.New("unexpected")
	}
}

func TestNetworkResolver_ResolveNetwork(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in localhost", func(t *testing.T) {
		r := NewNetworkResolver(t.TempDir(), nil).WithFetcher(failingFetcher(t))

		network, err := r.ResolveNetwork(ctx, "localhost")
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:8545", network.RPCURL)
		assert.Equal(t, uint64(31337), network.ChainID)
		assert.True(t, network.BuiltIn)
	})

	t.Run("built-in sepolia takes its RPC URL from the environment", func(t *testing.T) {
		t.Setenv("SEPOLIA_RPC_URL", "https://sepolia.example")
		r := NewNetworkResolver(t.TempDir(), nil).WithFetcher(failingFetcher(t))

		network, err := r.ResolveNetwork(ctx, "sepolia")
		require.NoError(t, err)
		assert.Equal(t, "https://sepolia.example", network.RPCURL)
		assert.Equal(t, uint64(11155111), network.ChainID)
		assert.Equal(t, common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"), network.Contracts.WETH9)
		assert.Equal(t, "https://sepolia.etherscan.io", network.ExplorerURL)
	})

	t.Run("configured entry overlays the built-in one", func(t *testing.T) {
		project := &config.ProjectConfig{Networks: map[string]config.NetworkConfig{
			"sepolia": {
				RPCURL: "https://configured.example",
				Contracts: config.ContractsConfig{
					Factory: "0x1000000000000000000000000000000000000001",
				},
			},
		}}
		r := NewNetworkResolver(t.TempDir(), project).WithFetcher(failingFetcher(t))

		network, err := r.ResolveNetwork(ctx, "sepolia")
		require.NoError(t, err)
		assert.False(t, network.BuiltIn)
		assert.Equal(t, "https://configured.example", network.RPCURL)
		assert.Equal(t, common.HexToAddress("0x1000000000000000000000000000000000000001"), network.Contracts.Factory)
		assert.Equal(t, common.HexToAddress("0x3DDB759BF377A352aA12e319a93B17ffA512Dd69"), network.Contracts.SwapRouter)
	})

	t.Run("unknown network", func(t *testing.T) {
		r := NewNetworkResolver(t.TempDir(), nil).WithFetcher(failingFetcher(t))

		_, err := r.ResolveNetwork(ctx, "nowhere")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNetworkNotConfigured)
		assert.Contains(t, err.Error(), "NOWHERE_RPC_URL")
	})

	t.Run("environment-only network fetches its chain id", func(t *testing.T) {
		t.Setenv("BASE_SEPOLIA_RPC_URL", "https://base-sepolia.example")
		calls := 0
		r := NewNetworkResolver(t.TempDir(), nil).WithFetcher(func(ctx context.Context, rpcURL string) (uint64, error) {
			calls++
			assert.Equal(t, "https://base-sepolia.example", rpcURL)
			return 84532, nil
		})

		network, err := r.ResolveNetwork(ctx, "base-sepolia")
		require.NoError(t, err)
		assert.Equal(t, uint64(84532), network.ChainID)
		assert.Equal(t, 1, calls)
	})

	t.Run("invalid contract address", func(t *testing.T) {
		project := &config.ProjectConfig{Networks: map[string]config.NetworkConfig{
			"devnet": {RPCURL: "http://devnet", ChainID: 1337, Contracts: config.ContractsConfig{WETH9: "0x1234"}},
		}}
		r := NewNetworkResolver(t.TempDir(), project).WithFetcher(failingFetcher(t))

		_, err := r.ResolveNetwork(ctx, "devnet")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
		assert.Contains(t, err.Error(), "contracts.weth9")
	})

	t.Run("fetch failure", func(t *testing.T) {
		project := &config.ProjectConfig{Networks: map[string]config.NetworkConfig{
			"devnet": {RPCURL: "http://devnet"},
		}}
		r := NewNetworkResolver(t.TempDir(), project).WithFetcher(func(ctx context.Context, rpcURL string) (uint64, error) {
			return 0, errors.New("connection refused")
		})

		_, err := r.ResolveNetwork(ctx, "devnet")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestNetworkResolver_ChainIDCache(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	project := &config.ProjectConfig{Networks: map[string]config.NetworkConfig{
		"devnet": {RPCURL: "http://devnet:8545"},
	}}

	calls := 0
	first := NewNetworkResolver(dataDir, project).WithFetcher(func(ctx context.Context, rpcURL string) (uint64, error) {
		calls++
		return 1337, nil
	})
	network, err := first.ResolveNetwork(ctx, "devnet")
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), network.ChainID)

	_, err = first.ResolveNetwork(ctx, "devnet")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	assert.FileExists(t, dataDir+"/cache/chainIds.json")

	second := NewNetworkResolver(dataDir, project).WithFetcher(failingFetcher(t))
	network, err = second.ResolveNetwork(ctx, "devnet")
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), network.ChainID)
}

func TestNetworkResolver_Lookup(t *testing.T) {
	project := &config.ProjectConfig{Networks: map[string]config.NetworkConfig{
		"devnet": {RPCURL: "http://devnet:8545"},
	}}
	r := NewNetworkResolver(t.TempDir(), project).WithFetcher(failingFetcher(t))

	network, err := r.Lookup("devnet")
	require.NoError(t, err)
	assert.Equal(t, "http://devnet:8545", network.RPCURL)
	assert.Zero(t, network.ChainID)
}

func TestNetworkResolver_GetNetworks(t *testing.T) {
	project := &config.ProjectConfig{Networks: map[string]config.NetworkConfig{
		"devnet":  {RPCURL: "http://devnet"},
		"sepolia": {RPCURL: "http://sepolia"},
	}}
	r := NewNetworkResolver(t.TempDir(), project)

	assert.Equal(t, []string{"devnet", "hardhat", "localhost", "sepolia"}, r.GetNetworks(context.Background()))
}
