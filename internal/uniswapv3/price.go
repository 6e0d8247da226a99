package uniswapv3

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// Q96 is 2^96, the fixed point scale of sqrtPriceX96
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

	// Q192 is 2^192, the scale of sqrtPriceX96 squared
	Q192 = new(big.Int).Lsh(big.NewInt(1), 192)

	// MinSqrtRatio and MaxSqrtRatio bound the sqrt price accepted by pool.initialize
	MinSqrtRatio = big.NewInt(4295128739)
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	errNonPositiveReserve = errors.New("reserves must be positive")
)

// EncodePriceSqrt returns floor(sqrt(reserve1/reserve0) * 2^96).
//
// The value is computed exactly as isqrt((reserve1 << 192) / reserve0): flooring the
// quotient before the integer square root does not change the floor of the result.
func EncodePriceSqrt(reserve1, reserve0 *big.Int) (*big.Int, error) {
	if reserve0 == nil || reserve1 == nil || reserve0.Sign() <= 0 || reserve1.Sign() <= 0 {
		return nil, errNonPositiveReserve
	}
	ratio := new(big.Int).Lsh(reserve1, 192)
	ratio.Quo(ratio, reserve0)
	return ratio.Sqrt(ratio), nil
}

// EncodePriceSqrtDecimal encodes a token1/token0 price given as a decimal string such as "1" or "0.25"
func EncodePriceSqrtDecimal(price string) (*big.Int, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	if !d.IsPositive() {
		return nil, errNonPositiveReserve
	}
	// price = coefficient * 10^exp, express it as a ratio of integers
	coef := d.Coefficient()
	exp := d.Exponent()
	if exp >= 0 {
		num := new(big.Int).Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		return EncodePriceSqrt(num, big.NewInt(1))
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-exp)), nil)
	return EncodePriceSqrt(coef, den)
}

// PriceFromSqrtX96 returns sqrtPriceX96^2 / 2^192 as token1 per token0 in raw units
func PriceFromSqrtX96(sqrtPriceX96 *big.Int) decimal.Decimal {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() == 0 {
		return decimal.Zero
	}
	sq := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	return decimal.NewFromBigInt(sq, 0).DivRound(decimal.NewFromBigInt(Q192, 0), 18)
}

// AdjustedPrice converts a raw token1/token0 price into whole-token units
func AdjustedPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) decimal.Decimal {
	return PriceFromSqrtX96(sqrtPriceX96).Shift(int32(decimals0) - int32(decimals1))
}

// ValidSqrtPrice reports whether pool.initialize would accept the value
func ValidSqrtPrice(sqrtPriceX96 *big.Int) bool {
	return sqrtPriceX96 != nil && sqrtPriceX96.Cmp(MinSqrtRatio) >= 0 && sqrtPriceX96.Cmp(MaxSqrtRatio) < 0
}
