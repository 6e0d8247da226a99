package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Position is a liquidity position as reported by the position manager.
// Everything except the token id is owned by the external contract.
type Position struct {
	TokenID                  *big.Int
	Owner                    common.Address
	Operator                 common.Address
	Token0                   common.Address
	Token1                   common.Address
	Fee                      uint32
	TickLower                int32
	TickUpper                int32
	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
	TokensOwed0              *big.Int
	TokensOwed1              *big.Int
}

// HasOwedTokens reports whether collect would transfer anything
func (p *Position) HasOwedTokens() bool {
	return (p.TokensOwed0 != nil && p.TokensOwed0.Sign() > 0) ||
		(p.TokensOwed1 != nil && p.TokensOwed1.Sign() > 0)
}

// MatchesPair reports whether the position is on the given token pair, in either order
func (p *Position) MatchesPair(a, b common.Address) bool {
	return (p.Token0 == a && p.Token1 == b) || (p.Token0 == b && p.Token1 == a)
}

// Token is the metadata of an ERC-20 token used for display
type Token struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// TokenAmount is an amount of a token with its metadata
type TokenAmount struct {
	Token  Token
	Amount *big.Int
}
