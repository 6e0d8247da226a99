package usecase_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

const poolEventsABI = `[
	{"type":"event","name":"Swap","anonymous":false,"inputs":[]},
	{"type":"event","name":"Mint","anonymous":false,"inputs":[]},
	{"type":"event","name":"Burn","anonymous":false,"inputs":[]},
	{"type":"event","name":"Collect","anonymous":false,"inputs":[]},
	{"type":"event","name":"Flash","anonymous":false,"inputs":[]}
]`

var (
	topicSwap = crypto.Keccak256Hash([]byte("Swap()"))
	topicMint = crypto.Keccak256Hash([]byte("Mint()"))
)

type fakePoolReader struct {
	snapshot *models.PoolSnapshot
	err      error
	read     []common.Address
}

func (r *fakePoolReader) Snapshot(_ context.Context, pool common.Address) (*models.PoolSnapshot, error) {
	r.read = append(r.read, pool)
	if r.err != nil {
		return nil, r.err
	}
	return r.snapshot, nil
}

func TestInspectPool(t *testing.T) {
	tests := []struct {
		name          string
		balances      bool
		readErr       error
		wantOperation string
		wantReserves  []string
		wantErr       string
	}{
		{
			name:          "state",
			wantOperation: "pool state",
		},
		{
			name:          "state with balances",
			balances:      true,
			wantOperation: "pool balance",
			wantReserves:  []string{ether(400).String(), ether(100).String()},
		},
		{
			name:          "reader failure",
			readErr:       assert.AnError,
			wantOperation: "pool state",
			wantErr:       "failed to read pool " + testPool.Hex(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.chain.hasSigner = false
			h.store.put("localhost", models.PoolManifest, poolManifest(true))
			h.token(testTokenA, "HE", map[common.Address]*big.Int{testPool: ether(400)})
			h.token(testTokenB, "SHE", map[common.Address]*big.Int{testPool: ether(100)})

			reader := &fakePoolReader{
				err: tt.readErr,
				snapshot: &models.PoolSnapshot{
					Address:   testPool,
					Slot0:     models.Slot0{SqrtPriceX96: new(big.Int).Lsh(uniswapv3.Q96, 1), Tick: 13863},
					Liquidity: big.NewInt(1_000_000),
					Fee:       500,
					Token0:    testTokenA,
					Token1:    testTokenB,
				},
			}
			result, err := usecase.NewInspectPool(h.runner(), reader).Run(context.Background(), usecase.PoolInspectParams{
				Balances: tt.balances,
			})
			assert.Equal(t, []common.Address{testPool}, reader.read)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantOperation, result.Operation)
			assert.Equal(t, "HE", result.Token0.Symbol)
			assert.Equal(t, "SHE", result.Token1.Symbol)
			assert.True(t, result.RawPrice.Equal(decimal.NewFromInt(4)), result.RawPrice.String())
			assert.True(t, result.Price0.Equal(decimal.NewFromInt(4)), result.Price0.String())
			assert.True(t, result.Price1.Equal(decimal.RequireFromString("0.25")), result.Price1.String())

			var reserves []string
			for _, r := range result.Reserves {
				reserves = append(reserves, r.Amount.String())
			}
			assert.Equal(t, tt.wantReserves, reserves)
			assert.Empty(t, result.Transactions)
		})
	}
}

// historyManifest records a pool whose ABI declares the scanned events
func historyManifest() *models.Manifest {
	m := poolManifest(true)
	m.Contract(models.RolePool).ABI = &models.ABIRef{Inline: []byte(poolEventsABI)}
	return m
}

func TestPoolHistory_Chunks(t *testing.T) {
	tests := []struct {
		name       string
		blocks     uint64
		chunkSize  uint64
		kinds      []models.PoolEventKind
		wantRanges [][2]int64
		wantTopics int
		wantFrom   uint64
	}{
		{
			name:       "one request covers the default window",
			wantRanges: [][2]int64{{0, 100}},
			wantTopics: 4,
		},
		{
			name:       "window split into chunks",
			blocks:     100,
			chunkSize:  30,
			wantRanges: [][2]int64{{0, 29}, {30, 59}, {60, 89}, {90, 100}},
			wantTopics: 4,
		},
		{
			name:       "window shorter than the chain",
			blocks:     40,
			chunkSize:  30,
			kinds:      []models.PoolEventKind{models.PoolEventSwap},
			wantRanges: [][2]int64{{60, 89}, {90, 100}},
			wantTopics: 1,
			wantFrom:   60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.chain.hasSigner = false
			h.store.put("localhost", models.PoolManifest, historyManifest())
			h.token(testTokenA, "HE", nil)
			h.token(testTokenB, "SHE", nil)

			result, err := usecase.NewPoolHistory(h.runner()).Run(context.Background(), usecase.PoolHistoryParams{
				Blocks:            tt.blocks,
				ChunkSize:         tt.chunkSize,
				RequestsPerSecond: 1000,
				Kinds:             tt.kinds,
			})
			require.NoError(t, err)

			assert.Equal(t, testPool, result.Pool)
			assert.Equal(t, tt.wantFrom, result.FromBlock)
			assert.Equal(t, uint64(100), result.ToBlock)
			assert.Equal(t, "HE", result.Token0.Symbol)

			var ranges [][2]int64
			for _, q := range h.chain.queries {
				ranges = append(ranges, [2]int64{q.FromBlock.Int64(), q.ToBlock.Int64()})
				assert.Equal(t, []common.Address{testPool}, q.Addresses)
				require.Len(t, q.Topics, 1)
				assert.Len(t, q.Topics[0], tt.wantTopics)
			}
			assert.Equal(t, tt.wantRanges, ranges)
		})
	}
}

func TestPoolHistory_PacesRequests(t *testing.T) {
	h := newHarness()
	h.chain.hasSigner = false
	h.store.put("localhost", models.PoolManifest, historyManifest())
	h.token(testTokenA, "HE", nil)
	h.token(testTokenB, "SHE", nil)

	start := time.Now()
	_, err := usecase.NewPoolHistory(h.runner()).Run(context.Background(), usecase.PoolHistoryParams{
		Blocks:            100,
		ChunkSize:         30,
		RequestsPerSecond: 20,
	})
	require.NoError(t, err)

	// four requests at 20 per second wait three intervals of 50ms
	assert.Len(t, h.chain.queries, 4)
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestPoolHistory_OrdersEvents(t *testing.T) {
	h := newHarness()
	h.chain.hasSigner = false
	h.decoder = topicDecoder{}
	h.store.put("localhost", models.PoolManifest, historyManifest())
	h.token(testTokenA, "HE", nil)
	h.token(testTokenB, "SHE", nil)

	// chunks answer out of order so the result has to be sorted
	h.chain.logs = func(q ethereum.FilterQuery) []types.Log {
		switch q.FromBlock.Int64() {
		case 0:
			return []types.Log{
				{Address: testPool, Topics: []common.Hash{topicSwap}, BlockNumber: 20, Index: 3},
				{Address: testPool, Topics: []common.Hash{topicMint}, BlockNumber: 20, Index: 1},
			}
		case 30:
			return []types.Log{
				{Address: testPool, Topics: []common.Hash{topicSwap}, BlockNumber: 45, Index: 0},
				{Address: testPool, Topics: []common.Hash{crypto.Keccak256Hash([]byte("Unknown()"))}, BlockNumber: 31, Index: 0},
			}
		}
		return nil
	}

	result, err := usecase.NewPoolHistory(h.runner()).Run(context.Background(), usecase.PoolHistoryParams{
		Blocks:            100,
		ChunkSize:         30,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)

	var got []string
	for _, ev := range result.Events {
		got = append(got, string(ev.Kind))
	}
	assert.Equal(t, []string{"Mint", "Swap", "Swap"}, got)
	assert.Equal(t, uint64(45), result.Events[2].BlockNumber)
	assert.Equal(t, 2, result.Counts[models.PoolEventSwap])
	assert.Equal(t, 1, result.Counts[models.PoolEventMint])
}
