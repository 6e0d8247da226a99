package usecase_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

const (
	tokenCtor      = `{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"decimals","type":"uint8"},{"name":"supply","type":"uint256"},{"name":"owner","type":"address"}`
	descriptorCtor = `{"name":"weth","type":"address"},{"name":"label","type":"bytes32"}`
	npmCtor        = `{"name":"factory","type":"address"},{"name":"weth","type":"address"},{"name":"descriptor","type":"address"}`
	routerCtor     = `{"name":"factory","type":"address"},{"name":"weth","type":"address"}`
)

func TestDeployTokens(t *testing.T) {
	h := newHarness()
	h.artifacts.constructors["guoWenCoin"] = tokenCtor

	a, b := usecase.DefaultTokenSpecs()
	result, err := usecase.NewDeployTokens(h.runner()).Run(context.Background(), usecase.DeployTokensParams{TokenA: a, TokenB: b})
	require.NoError(t, err)

	assert.Equal(t, models.TokensManifest, result.Manifest)
	require.Len(t, result.Contracts, 2)
	assert.Equal(t, models.RoleTokenA, result.Contracts[0].Role)
	assert.Equal(t, models.RoleTokenB, result.Contracts[1].Role)
	assert.Len(t, result.Transactions, 2)

	saved, ok := h.store.saved[models.TokensManifest]
	require.True(t, ok)
	assert.Equal(t, "localhost", saved.Network)
	assert.Equal(t, uint64(31337), saved.ChainID)
	assert.Equal(t, testSender.Hex(), saved.Deployer)
	for i, role := range []string{models.RoleTokenA, models.RoleTokenB} {
		rec := saved.Contract(role)
		require.NotNil(t, rec, role)
		assert.Equal(t, h.chain.deployed[i].Hex(), rec.Address)
		assert.NotEmpty(t, rec.TransactionHash)
		require.NotNil(t, rec.ABI)
		assert.Equal(t, "abi/"+role+".json", rec.ABI.Path)
	}
	assert.Contains(t, h.store.abis, "abi/TokenA.json")
}

func TestDeployTokens_BadSupplyDeploysNothing(t *testing.T) {
	h := newHarness()
	h.artifacts.constructors["guoWenCoin"] = tokenCtor

	a, b := usecase.DefaultTokenSpecs()
	a.Supply = "lots"
	_, err := usecase.NewDeployTokens(h.runner()).Run(context.Background(), usecase.DeployTokensParams{TokenA: a, TokenB: b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid supply for HE")
	assert.Empty(t, h.chain.deployed)
	assert.Empty(t, h.store.saved)
}

func TestDeployCore(t *testing.T) {
	weth := common.HexToAddress("0x4200000000000000000000000000000000000006")

	tests := []struct {
		name         string
		params       usecase.DeployCoreParams
		networkWETH  common.Address
		wantErr      string
		wantDeploys  []string
		wantExisting bool
	}{
		{
			name:         "reuses configured WETH",
			networkWETH:  weth,
			wantDeploys:  []string{"UniswapV3Factory", "NFTDescriptor", "NonfungibleTokenPositionDescriptor", "NonfungiblePositionManager", "SwapRouter"},
			wantExisting: true,
		},
		{
			name:        "deploys WETH on request",
			params:      usecase.DeployCoreParams{DeployWETH: true},
			wantDeploys: []string{"WETH9", "UniswapV3Factory", "NFTDescriptor", "NonfungibleTokenPositionDescriptor", "NonfungiblePositionManager", "SwapRouter"},
		},
		{
			name:    "needs a WETH address",
			wantErr: "has no WETH9 address",
		},
		{
			name:    "label longer than a word",
			params:  usecase.DeployCoreParams{NativeCurrencyLabel: "a native currency label that is far too long"},
			wantErr: "longer than 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.cfg.Network.Contracts.WETH9 = tt.networkWETH
			h.artifacts.constructors["NonfungibleTokenPositionDescriptor"] = descriptorCtor
			h.artifacts.constructors["NonfungiblePositionManager"] = npmCtor
			h.artifacts.constructors["SwapRouter"] = routerCtor

			result, err := usecase.NewDeployCore(h.runner()).Run(context.Background(), tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, h.store.saved)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeploys, h.artifacts.loaded)

			saved := h.store.saved[models.CoreManifest]
			require.NotNil(t, saved)
			for _, role := range []string{
				models.RoleWETH9, models.RoleFactory, models.RoleNFTDescriptor,
				models.RolePositionDescriptor, models.RolePositionManager, models.RoleSwapRouter,
			} {
				_, ok := saved.Address(role)
				assert.True(t, ok, role)
			}
			if tt.wantExisting {
				addr, _ := saved.Address(models.RoleWETH9)
				assert.Equal(t, weth, addr)
				assert.True(t, result.Contracts[0].Existing)
			}
		})
	}
}
