package pool

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
)

func TestSignatures(t *testing.T) {
	tests := []struct {
		name     string
		selector []byte
		want     string
	}{
		{name: "slot0", selector: funcSlot0.Selector[:], want: "3850c7bd"},
		{name: "liquidity", selector: funcLiquidity.Selector[:], want: "1a686502"},
		{name: "fee", selector: funcFee.Selector[:], want: "ddca3f43"},
		{name: "tickSpacing", selector: funcTickSpacing.Selector[:], want: "d0c93a7c"},
		{name: "token0", selector: funcToken0.Selector[:], want: "0dfe1681"},
		{name: "token1", selector: funcToken1.Selector[:], want: "d21220a7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hex.EncodeToString(tt.selector))
		})
	}
}

func TestSlot0Decoding(t *testing.T) {
	// slot0 of a pool at price 1 with tick -1 and an unlocked flag
	word := func(v *big.Int) []byte {
		b := make([]byte, 32)
		v.FillBytes(b)
		return b
	}
	minusOne := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	var output []byte
	output = append(output, word(new(big.Int).Lsh(big.NewInt(1), 96))...)
	output = append(output, word(minusOne)...)
	output = append(output, word(big.NewInt(0))...)
	output = append(output, word(big.NewInt(1))...)
	output = append(output, word(big.NewInt(1))...)
	output = append(output, word(big.NewInt(0))...)
	output = append(output, word(big.NewInt(1))...)

	var (
		sqrtPrice, tick                                big.Int
		observationIndex, cardinality, cardinalityNext uint16
		feeProtocol                                    uint8
		unlocked                                       bool
	)
	err := funcSlot0.DecodeReturns(output, &sqrtPrice, &tick, &observationIndex, &cardinality, &cardinalityNext, &feeProtocol, &unlocked)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 96).String(), sqrtPrice.String())
	assert.Equal(t, int64(-1), tick.Int64())
	assert.Equal(t, uint16(1), cardinality)
	assert.True(t, unlocked)
}

func TestReader_NoRPC(t *testing.T) {
	r := NewReader(&config.RuntimeConfig{Network: &config.Network{Name: "localhost"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := r.Snapshot(context.Background(), common.Address{})
	assert.ErrorContains(t, err, "no RPC URL")
}
