package uniswapv3

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// The structs below are ABI tuples. uint24/int24/uint128/uint160 map to *big.Int in go-ethereum.

// MintParams matches INonfungiblePositionManager.MintParams
type MintParams struct {
	Token0         common.Address `abi:"token0"`
	Token1         common.Address `abi:"token1"`
	Fee            *big.Int       `abi:"fee"`
	TickLower      *big.Int       `abi:"tickLower"`
	TickUpper      *big.Int       `abi:"tickUpper"`
	Amount0Desired *big.Int       `abi:"amount0Desired"`
	Amount1Desired *big.Int       `abi:"amount1Desired"`
	Amount0Min     *big.Int       `abi:"amount0Min"`
	Amount1Min     *big.Int       `abi:"amount1Min"`
	Recipient      common.Address `abi:"recipient"`
	Deadline       *big.Int       `abi:"deadline"`
}

// IncreaseLiquidityParams matches INonfungiblePositionManager.IncreaseLiquidityParams
type IncreaseLiquidityParams struct {
	TokenId        *big.Int `abi:"tokenId"`
	Amount0Desired *big.Int `abi:"amount0Desired"`
	Amount1Desired *big.Int `abi:"amount1Desired"`
	Amount0Min     *big.Int `abi:"amount0Min"`
	Amount1Min     *big.Int `abi:"amount1Min"`
	Deadline       *big.Int `abi:"deadline"`
}

// DecreaseLiquidityParams matches INonfungiblePositionManager.DecreaseLiquidityParams
type DecreaseLiquidityParams struct {
	TokenId    *big.Int `abi:"tokenId"`
	Liquidity  *big.Int `abi:"liquidity"`
	Amount0Min *big.Int `abi:"amount0Min"`
	Amount1Min *big.Int `abi:"amount1Min"`
	Deadline   *big.Int `abi:"deadline"`
}

// CollectParams matches INonfungiblePositionManager.CollectParams
type CollectParams struct {
	TokenId    *big.Int       `abi:"tokenId"`
	Recipient  common.Address `abi:"recipient"`
	Amount0Max *big.Int       `abi:"amount0Max"`
	Amount1Max *big.Int       `abi:"amount1Max"`
}

// ExactInputSingleParams matches ISwapRouter.ExactInputSingleParams
type ExactInputSingleParams struct {
	TokenIn           common.Address `abi:"tokenIn"`
	TokenOut          common.Address `abi:"tokenOut"`
	Fee               *big.Int       `abi:"fee"`
	Recipient         common.Address `abi:"recipient"`
	Deadline          *big.Int       `abi:"deadline"`
	AmountIn          *big.Int       `abi:"amountIn"`
	AmountOutMinimum  *big.Int       `abi:"amountOutMinimum"`
	SqrtPriceLimitX96 *big.Int       `abi:"sqrtPriceLimitX96"`
}

// Deadline returns now+d as a unix timestamp for the deadline fields
func Deadline(now time.Time, d time.Duration) *big.Int {
	return big.NewInt(now.Add(d).Unix())
}

// LiquidityShare returns liquidity * percent / 100, flooring
func LiquidityShare(liquidity *big.Int, percent uint) *big.Int {
	if liquidity == nil {
		return new(big.Int)
	}
	out := new(big.Int).Mul(liquidity, new(big.Int).SetUint64(uint64(percent)))
	return out.Quo(out, big.NewInt(100))
}
