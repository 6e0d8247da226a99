package usecase

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
	"golang.org/x/time/rate"
)

// PoolInspectParams selects the pool to read
type PoolInspectParams struct {
	Manifest string
	// Balances also reads the token balances held by the pool
	Balances bool
}

// PoolStateResult is a snapshot of a recorded pool
type PoolStateResult struct {
	OperationSummary
	Snapshot *models.PoolSnapshot `json:"snapshot"`
	Token0   models.Token         `json:"token0"`
	Token1   models.Token         `json:"token1"`
	// RawPrice is token1 per token0 in base units
	RawPrice decimal.Decimal `json:"rawPrice"`
	// Price0 is token1 per whole token0 and Price1 its inverse
	Price0 decimal.Decimal `json:"price0"`
	Price1 decimal.Decimal `json:"price1"`
	// Reserves are the token balances of the pool, when requested
	Reserves []models.TokenAmount `json:"reserves,omitempty"`
}

// InspectPool reads the public state of a recorded pool
type InspectPool struct {
	runner *Runner
	reader PoolReader
}

// NewInspectPool creates a new InspectPool use case
func NewInspectPool(runner *Runner, reader PoolReader) *InspectPool {
	return &InspectPool{runner: runner, reader: reader}
}

// Run executes the read
func (uc *InspectPool) Run(ctx context.Context, params PoolInspectParams) (*PoolStateResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.PoolManifest
	}
	result := &PoolStateResult{}
	name := "pool state"
	if params.Balances {
		name = "pool balance"
	}
	spec := OperationSpec{
		Name:     name,
		Requires: []ManifestRequirement{{Name: params.Manifest, Roles: []string{models.RolePool}}},
		ReadOnly: true,
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		m, _ := env.Manifest(params.Manifest)
		poolAddr, _ := m.Address(models.RolePool)

		env.Status(ctx, "reading pool state")
		snapshot, err := uc.reader.Snapshot(ctx, poolAddr)
		if err != nil {
			return fmt.Errorf("failed to read pool %s: %w", poolAddr.Hex(), err)
		}
		result.Snapshot = snapshot

		tokens := newTokenCache(env)
		if result.Token0, err = tokens.get(ctx, snapshot.Token0); err != nil {
			return err
		}
		if result.Token1, err = tokens.get(ctx, snapshot.Token1); err != nil {
			return err
		}

		result.RawPrice = uniswapv3.PriceFromSqrtX96(snapshot.Slot0.SqrtPriceX96)
		result.Price0 = uniswapv3.AdjustedPrice(snapshot.Slot0.SqrtPriceX96, result.Token0.Decimals, result.Token1.Decimals)
		if !result.Price0.IsZero() {
			result.Price1 = decimal.NewFromInt(1).DivRound(result.Price0, 18)
		}

		if !params.Balances {
			return nil
		}
		for _, t := range []models.Token{result.Token0, result.Token1} {
			bound, err := env.ContractAt(ABIERC20, t.Address)
			if err != nil {
				return err
			}
			balance, err := erc20{bound}.BalanceOf(ctx, poolAddr)
			if err != nil {
				return fmt.Errorf("failed to read %s balance of pool: %w", t.Symbol, err)
			}
			result.Reserves = append(result.Reserves, models.TokenAmount{Token: t, Amount: balance})
		}
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// PoolHistoryParams contains parameters for scanning pool events
type PoolHistoryParams struct {
	Manifest string
	// Blocks is how far back from the head to scan
	Blocks uint64
	// ChunkSize is the block span of one eth_getLogs request
	ChunkSize uint64
	// RequestsPerSecond paces the log requests
	RequestsPerSecond float64
	// Kinds restricts the events. Empty means swaps, mints, burns and collects.
	Kinds []models.PoolEventKind
}

// DefaultPoolHistoryParams returns the scan settings used by pool history
func DefaultPoolHistoryParams() PoolHistoryParams {
	return PoolHistoryParams{
		Manifest:          models.PoolManifest,
		Blocks:            1000,
		ChunkSize:         500,
		RequestsPerSecond: 5,
	}
}

// PoolHistoryResult contains the decoded events in chain order
type PoolHistoryResult struct {
	OperationSummary
	Pool      common.Address               `json:"pool"`
	FromBlock uint64                       `json:"fromBlock"`
	ToBlock   uint64                       `json:"toBlock"`
	Token0    models.Token                 `json:"token0"`
	Token1    models.Token                 `json:"token1"`
	Events    []*models.PoolEvent          `json:"events"`
	Counts    map[models.PoolEventKind]int `json:"counts"`
}

// PoolHistory scans recent pool logs
type PoolHistory struct {
	runner *Runner
}

// NewPoolHistory creates a new PoolHistory use case
func NewPoolHistory(runner *Runner) *PoolHistory {
	return &PoolHistory{runner: runner}
}

// Run executes the scan
func (uc *PoolHistory) Run(ctx context.Context, params PoolHistoryParams) (*PoolHistoryResult, error) {
	defaults := DefaultPoolHistoryParams()
	if params.Manifest == "" {
		params.Manifest = defaults.Manifest
	}
	if params.Blocks == 0 {
		params.Blocks = defaults.Blocks
	}
	if params.ChunkSize == 0 {
		params.ChunkSize = defaults.ChunkSize
	}
	if params.RequestsPerSecond <= 0 {
		params.RequestsPerSecond = defaults.RequestsPerSecond
	}
	kinds := params.Kinds
	if len(kinds) == 0 {
		kinds = []models.PoolEventKind{models.PoolEventSwap, models.PoolEventMint, models.PoolEventBurn, models.PoolEventCollect}
	}

	result := &PoolHistoryResult{Counts: make(map[models.PoolEventKind]int)}
	spec := OperationSpec{
		Name:     "pool history",
		Requires: []ManifestRequirement{{Name: params.Manifest, Roles: []string{models.RolePool}}},
		ReadOnly: true,
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		pool, err := env.Bind(ctx, params.Manifest, models.RolePool, ABIPool)
		if err != nil {
			return err
		}
		result.Pool = pool.Address()

		topics := make([]common.Hash, 0, len(kinds))
		for _, kind := range kinds {
			ev, ok := pool.ABI().Events[string(kind)]
			if !ok {
				return fmt.Errorf("pool ABI has no %s event", kind)
			}
			topics = append(topics, ev.ID)
		}

		if m, ok := env.Manifest(params.Manifest); ok {
			tokens := newTokenCache(env)
			if rec := m.Contract(models.RolePool); rec != nil && common.IsHexAddress(rec.Token0) && common.IsHexAddress(rec.Token1) {
				result.Token0, _ = tokens.get(ctx, common.HexToAddress(rec.Token0))
				result.Token1, _ = tokens.get(ctx, common.HexToAddress(rec.Token1))
			}
		}

		head, err := env.Client().BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to read block number: %w", err)
		}
		result.ToBlock = head
		if head > params.Blocks {
			result.FromBlock = head - params.Blocks
		}

		limiter := rate.NewLimiter(rate.Limit(params.RequestsPerSecond), 1)
		for from := result.FromBlock; from <= head; from += params.ChunkSize {
			to := min(from+params.ChunkSize-1, head)
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			env.Status(ctx, fmt.Sprintf("scanning blocks %d-%d", from, to))
			logs, err := env.Client().FilterLogs(ctx, ethereum.FilterQuery{
				FromBlock: new(big.Int).SetUint64(from),
				ToBlock:   new(big.Int).SetUint64(to),
				Addresses: []common.Address{pool.Address()},
				Topics:    [][]common.Hash{topics},
			})
			if err != nil {
				return fmt.Errorf("failed to fetch logs %d-%d: %w", from, to, err)
			}
			for i := range logs {
				decoded, err := env.runner.decoder.Decode(&logs[i], pool.ABI())
				if err != nil || decoded == nil {
					env.runner.log.Debug("skipping undecodable log", "tx", logs[i].TxHash, "error", err)
					continue
				}
				kind := models.PoolEventKind(decoded.Name)
				result.Events = append(result.Events, &models.PoolEvent{Kind: kind, DecodedEvent: decoded})
				result.Counts[kind]++
			}
		}

		sort.SliceStable(result.Events, func(i, j int) bool {
			a, b := result.Events[i], result.Events[j]
			if a.BlockNumber != b.BlockNumber {
				return a.BlockNumber < b.BlockNumber
			}
			return a.LogIndex < b.LogIndex
		})
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}
