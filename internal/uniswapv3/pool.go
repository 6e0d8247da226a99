package uniswapv3

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PoolInitCodeHash is the keccak256 of the canonical UniswapV3Pool creation code.
// Factories built from other bytecode produce different pool addresses.
var PoolInitCodeHash = common.HexToHash("0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54")

// Tick bounds of the protocol
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// Fee tiers enabled on a fresh factory and their tick spacings
var feeTickSpacing = map[uint32]int32{
	100:   1,
	500:   10,
	3000:  60,
	10000: 200,
}

// TickSpacing returns the default tick spacing of a fee tier
func TickSpacing(fee uint32) (int32, error) {
	spacing, ok := feeTickSpacing[fee]
	if !ok {
		return 0, fmt.Errorf("unknown fee tier %d", fee)
	}
	return spacing, nil
}

// ComputePoolAddress computes the CREATE2 address of a pool for the canonical init code.
func ComputePoolAddress(factory common.Address, tokenA, tokenB common.Address, fee uint32) common.Address {
	token0, token1 := SortTokens(tokenA, tokenB)

	// salt = keccak256(abi.encode(token0, token1, fee))
	salt := crypto.Keccak256Hash(
		common.LeftPadBytes(token0.Bytes(), 32),
		common.LeftPadBytes(token1.Bytes(), 32),
		common.LeftPadBytes(big.NewInt(int64(fee)).Bytes(), 32),
	)
	return crypto.CreateAddress2(factory, salt, PoolInitCodeHash.Bytes())
}

// AlignTick rounds a tick down to a multiple of spacing
func AlignTick(tick, spacing int32) int32 {
	if spacing <= 0 {
		return tick
	}
	q := tick / spacing
	if tick%spacing != 0 && tick < 0 {
		q--
	}
	return q * spacing
}

// RangeMode selects how a mint range is derived from the current tick
type RangeMode string

const (
	// RangeTickOffset mints at currentTick ± width
	RangeTickOffset RangeMode = "tick-offset"
	// RangeSpacing mints at the aligned tick ± width*spacing
	RangeSpacing RangeMode = "spacing"
)

// TickRange derives a mint range around currentTick
func TickRange(mode RangeMode, currentTick, spacing, width int32) (int32, int32, error) {
	var lower, upper int32
	switch mode {
	case RangeTickOffset:
		lower, upper = currentTick-width, currentTick+width
	case RangeSpacing:
		base := AlignTick(currentTick, spacing)
		lower, upper = base-spacing*width, base+spacing*width
	default:
		return 0, 0, fmt.Errorf("unsupported range mode %q", mode)
	}
	if err := ValidateTickRange(lower, upper); err != nil {
		return 0, 0, err
	}
	return lower, upper, nil
}

// ValidateTickRange checks ordering and protocol bounds
func ValidateTickRange(lower, upper int32) error {
	if lower >= upper {
		return fmt.Errorf("tickLower %d must be below tickUpper %d", lower, upper)
	}
	if lower < MinTick || upper > MaxTick {
		return fmt.Errorf("tick range [%d, %d] outside [%d, %d]", lower, upper, MinTick, MaxTick)
	}
	return nil
}
