package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

var (
	funcSlot0 = w3.MustNewFunc("slot0()",
		"uint160 sqrtPriceX96, int24 tick, uint16 observationIndex, uint16 observationCardinality, uint16 observationCardinalityNext, uint8 feeProtocol, bool unlocked")
	funcLiquidity            = w3.MustNewFunc("liquidity()", "uint128")
	funcFee                  = w3.MustNewFunc("fee()", "uint24")
	funcTickSpacing          = w3.MustNewFunc("tickSpacing()", "int24")
	funcToken0               = w3.MustNewFunc("token0()", "address")
	funcToken1               = w3.MustNewFunc("token1()", "address")
	funcFeeGrowthGlobal0X128 = w3.MustNewFunc("feeGrowthGlobal0X128()", "uint256")
	funcFeeGrowthGlobal1X128 = w3.MustNewFunc("feeGrowthGlobal1X128()", "uint256")
)

// Reader reads pool state with one batched JSON-RPC request
type Reader struct {
	cfg *config.RuntimeConfig
	log *slog.Logger
}

// NewReader creates a pool reader for the selected network
func NewReader(cfg *config.RuntimeConfig, log *slog.Logger) *Reader {
	return &Reader{cfg: cfg, log: log.With("component", "PoolReader")}
}

// Snapshot reads slot0, liquidity, fee, tick spacing, tokens and global fee growth
func (r *Reader) Snapshot(ctx context.Context, pool common.Address) (*models.PoolSnapshot, error) {
	if r.cfg.Network == nil || r.cfg.Network.RPCURL == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}
	client, err := w3.Dial(r.cfg.Network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	var (
		snapshot                                       = &models.PoolSnapshot{Address: pool}
		tick, fee, tickSpacing                         big.Int
		liquidity, sqrtPrice, growth0, growth1         big.Int
		observationIndex, cardinality, cardinalityNext uint16
	)
	err = client.CallCtx(ctx,
		eth.CallFunc(pool, funcSlot0).Returns(&sqrtPrice, &tick, &observationIndex, &cardinality, &cardinalityNext,
			&snapshot.Slot0.FeeProtocol, &snapshot.Slot0.Unlocked),
		eth.CallFunc(pool, funcLiquidity).Returns(&liquidity),
		eth.CallFunc(pool, funcFee).Returns(&fee),
		eth.CallFunc(pool, funcTickSpacing).Returns(&tickSpacing),
		eth.CallFunc(pool, funcToken0).Returns(&snapshot.Token0),
		eth.CallFunc(pool, funcToken1).Returns(&snapshot.Token1),
		eth.CallFunc(pool, funcFeeGrowthGlobal0X128).Returns(&growth0),
		eth.CallFunc(pool, funcFeeGrowthGlobal1X128).Returns(&growth1),
	)
	if err != nil {
		var callErrs w3.CallErrors
		if errors.As(err, &callErrs) {
			for i, callErr := range callErrs {
				if callErr != nil {
					r.log.Debug("pool call failed", "pool", pool, "call", i, "error", callErr)
				}
			}
		}
		return nil, fmt.Errorf("failed to read pool %s: %w", pool.Hex(), err)
	}

	snapshot.Slot0.SqrtPriceX96 = &sqrtPrice
	snapshot.Slot0.Tick = int32(tick.Int64())
	snapshot.Slot0.ObservationIndex = observationIndex
	snapshot.Slot0.ObservationCardinality = cardinality
	snapshot.Slot0.ObservationCardinalityNext = cardinalityNext
	snapshot.Liquidity = &liquidity
	snapshot.Fee = uint32(fee.Uint64())
	snapshot.TickSpacing = int32(tickSpacing.Int64())
	snapshot.FeeGrowthGlobal0X128 = &growth0
	snapshot.FeeGrowthGlobal1X128 = &growth1

	r.log.Debug("read pool snapshot", "pool", pool, "tick", snapshot.Slot0.Tick, "liquidity", snapshot.Liquidity)
	return snapshot, nil
}

var _ usecase.PoolReader = (*Reader)(nil)
