package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Slot0 mirrors the pool's packed slot0 storage
type Slot0 struct {
	SqrtPriceX96               *big.Int
	Tick                       int32
	ObservationIndex           uint16
	ObservationCardinality     uint16
	ObservationCardinalityNext uint16
	FeeProtocol                uint8
	Unlocked                   bool
}

// PoolSnapshot is a point-in-time read of a pool's public state
type PoolSnapshot struct {
	Address              common.Address
	Slot0                Slot0
	Liquidity            *big.Int
	Fee                  uint32
	TickSpacing          int32
	Token0               common.Address
	Token1               common.Address
	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
}

// PoolEventKind names the pool events read by the history scanner
type PoolEventKind string

const (
	PoolEventSwap    PoolEventKind = "Swap"
	PoolEventMint    PoolEventKind = "Mint"
	PoolEventBurn    PoolEventKind = "Burn"
	PoolEventCollect PoolEventKind = "Collect"
)

// PoolEvent is a decoded pool log
type PoolEvent struct {
	Kind PoolEventKind
	*DecodedEvent
}

// DecodedEvent is a log decoded against a contract ABI
type DecodedEvent struct {
	Name        string
	Address     common.Address
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
	Fields      map[string]any
}

// Uint returns a numeric field or nil
func (e *DecodedEvent) Uint(name string) *big.Int {
	if v, ok := e.Fields[name].(*big.Int); ok {
		return v
	}
	return nil
}

// AddressField returns an address field
func (e *DecodedEvent) AddressField(name string) common.Address {
	if v, ok := e.Fields[name].(common.Address); ok {
		return v
	}
	return common.Address{}
}
