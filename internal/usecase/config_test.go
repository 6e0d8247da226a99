package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

type memLocalConfig struct {
	cfg    *config.LocalConfig
	exists bool
}

func (s *memLocalConfig) Exists() bool { return s.exists }

func (s *memLocalConfig) Load(context.Context) (*config.LocalConfig, error) {
	if s.cfg == nil {
		return &config.LocalConfig{}, nil
	}
	c := *s.cfg
	return &c, nil
}

func (s *memLocalConfig) Save(_ context.Context, c *config.LocalConfig) error {
	saved := *c
	s.cfg = &saved
	s.exists = true
	return nil
}

func (s *memLocalConfig) GetPath() string { return ".v3ops/config.local.json" }

type staticResolver struct {
	networks map[string]*config.Network
}

func (r staticResolver) GetNetworks(context.Context) []string {
	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	return names
}

func (r staticResolver) ResolveNetwork(_ context.Context, name string) (*config.Network, error) {
	if n, ok := r.networks[name]; ok {
		return n, nil
	}
	return nil, domain.ErrNetworkNotConfigured
}

func TestSetConfig(t *testing.T) {
	ctx := context.Background()
	resolver := staticResolver{networks: map[string]*config.Network{
		"sepolia": {Name: "sepolia", ChainID: 11155111},
	}}

	tests := []struct {
		name    string
		params  usecase.SetConfigParams
		wantErr string
		check   func(t *testing.T, c *config.LocalConfig)
	}{
		{
			name:   "network",
			params: usecase.SetConfigParams{Key: "network", Value: "sepolia"},
			check: func(t *testing.T, c *config.LocalConfig) {
				assert.Equal(t, "sepolia", c.Network)
			},
		},
		{
			name:   "metrics file alias",
			params: usecase.SetConfigParams{Key: "METRICS_FILE", Value: "out/metrics.prom"},
			check: func(t *testing.T, c *config.LocalConfig) {
				assert.Equal(t, "out/metrics.prom", c.MetricsFile)
			},
		},
		{
			name:   "timeout",
			params: usecase.SetConfigParams{Key: "timeout", Value: "90s"},
			check: func(t *testing.T, c *config.LocalConfig) {
				assert.Equal(t, "90s", c.Timeout)
			},
		},
		{name: "invalid timeout", params: usecase.SetConfigParams{Key: "timeout", Value: "soon"}, wantErr: "invalid timeout"},
		{name: "unknown key", params: usecase.SetConfigParams{Key: "namespace", Value: "x"}, wantErr: "Available keys: network, timeout, metrics-file"},
		{name: "unknown network", params: usecase.SetConfigParams{Key: "network", Value: "nowhere"}, wantErr: "network not configured"},
		{name: "empty value", params: usecase.SetConfigParams{Key: "network"}, wantErr: "must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memLocalConfig{}
			result, err := usecase.NewSetConfig(store, resolver).Run(ctx, tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.False(t, store.exists)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ".v3ops/config.local.json", result.ConfigPath)
			tt.check(t, store.cfg)
		})
	}
}

func TestRemoveConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("removes a key", func(t *testing.T) {
		store := &memLocalConfig{cfg: &config.LocalConfig{Network: "sepolia", Timeout: "1m"}, exists: true}
		result, err := usecase.NewRemoveConfig(store).Run(ctx, usecase.RemoveConfigParams{Key: "network"})
		require.NoError(t, err)
		assert.Equal(t, "sepolia", result.RemovedValue)
		assert.Empty(t, store.cfg.Network)
		assert.Equal(t, "1m", store.cfg.Timeout)
	})

	t.Run("no config file", func(t *testing.T) {
		_, err := usecase.NewRemoveConfig(&memLocalConfig{}).Run(ctx, usecase.RemoveConfigParams{Key: "network"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no config file found")
	})
}

func coreManifest(roles map[string]common.Address) *models.Manifest {
	m := models.NewManifest("localhost", 31337, testSender)
	for role, addr := range roles {
		m.Set(role, &models.ContractRecord{Address: addr.Hex()})
	}
	return m
}

func TestShowConfig(t *testing.T) {
	factory := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	tests := []struct {
		name          string
		network       *config.Network
		core          *models.Manifest
		wantProtocol  []usecase.ProtocolAddress
		wantManifests []string
	}{
		{
			name:    "deployed addresses win over network defaults",
			network: &config.Network{Name: "localhost", Contracts: config.KnownContracts{Factory: testTokenA, PositionManager: testNPM}},
			core:    coreManifest(map[string]common.Address{models.RoleFactory: factory}),
			wantProtocol: []usecase.ProtocolAddress{
				{Role: models.RoleFactory, Address: factory, Source: usecase.SourceDeployed},
				{Role: models.RolePositionManager, Address: testNPM, Source: usecase.SourceKnown},
			},
			wantManifests: []string{models.CoreManifest, models.PoolManifest},
		},
		{
			name:    "nothing deployed",
			network: &config.Network{Name: "localhost"},
		},
		{
			name: "no network selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runtime := &config.RuntimeConfig{Network: tt.network}
			local := &memLocalConfig{cfg: &config.LocalConfig{Network: "localhost"}, exists: true}
			store := newMemStore()
			if tt.core != nil {
				store.put("localhost", models.CoreManifest, tt.core)
				store.put("localhost", models.PoolManifest, poolManifest(true))
			}

			result, err := usecase.NewShowConfig(local, store, runtime).Run(context.Background())
			require.NoError(t, err)
			assert.True(t, result.Exists)
			assert.Equal(t, "localhost", result.Config.Network)
			assert.Same(t, runtime, result.Effective)
			assert.Equal(t, tt.wantProtocol, emptyAsNil(result.Protocol))
			assert.Equal(t, tt.wantManifests, result.Manifests)
		})
	}
}

func emptyAsNil(p []usecase.ProtocolAddress) []usecase.ProtocolAddress {
	if len(p) == 0 {
		return nil
	}
	return p
}

// brokenStore fails every manifest read
type brokenStore struct {
	*memStore
}

func (brokenStore) Load(context.Context, string, string) (*models.Manifest, error) {
	return nil, errors.New("permission denied")
}

func TestListNetworks(t *testing.T) {
	sepolia := &config.Network{
		Name:    "sepolia",
		ChainID: 11155111,
		BuiltIn: true,
		Contracts: config.KnownContracts{
			Factory:         common.HexToAddress("0xCbaec1555707dFAff3303ed6123Db16Eb67F1791"),
			PositionManager: testNPM,
			SwapRouter:      common.HexToAddress("0x3DDB759BF377A352aA12e319a93B17ffA512Dd69"),
		},
	}
	resolver := staticResolver{networks: map[string]*config.Network{
		"localhost": {Name: "localhost", ChainID: 31337, RPCURL: "http://127.0.0.1:8545", BuiltIn: true},
		"sepolia":   sepolia,
	}}

	t.Run("reports protocol coverage per network", func(t *testing.T) {
		store := newMemStore()
		store.put("localhost", models.CoreManifest, coreManifest(map[string]common.Address{models.RoleFactory: testPool}))

		result, err := usecase.NewListNetworks(resolver, store, "localhost").Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "localhost", result.Current)
		require.Len(t, result.Networks, 2)

		byName := make(map[string]usecase.NetworkStatus)
		for _, n := range result.Networks {
			byName[n.Name] = n
		}

		local := byName["localhost"]
		require.NoError(t, local.Error)
		assert.Equal(t, uint64(31337), local.ChainID)
		assert.True(t, local.BuiltIn)
		assert.Equal(t, []usecase.ProtocolAddress{{Role: models.RoleFactory, Address: testPool, Source: usecase.SourceDeployed}}, local.Protocol)
		assert.False(t, local.Tradable, "a factory alone cannot trade")

		remote := byName["sepolia"]
		require.NoError(t, remote.Error)
		require.Len(t, remote.Protocol, 3)
		for _, p := range remote.Protocol {
			assert.Equal(t, usecase.SourceKnown, p.Source, p.Role)
		}
		assert.True(t, remote.Tradable)
	})

	t.Run("unreadable manifests are a per network error", func(t *testing.T) {
		result, err := usecase.NewListNetworks(resolver, brokenStore{newMemStore()}, "localhost").Run(context.Background())
		require.NoError(t, err)
		for _, n := range result.Networks {
			require.Error(t, n.Error, n.Name)
			assert.Contains(t, n.Error.Error(), "permission denied")
			assert.Empty(t, n.Protocol)
		}
	})
}
