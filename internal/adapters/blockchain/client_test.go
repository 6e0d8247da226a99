package blockchain

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// First account of the anvil/hardhat test mnemonic
const devKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantSigner bool
		wantSender common.Address
	}{
		{
			name:       "with 0x prefix",
			key:        devKey,
			wantSigner: true,
			wantSender: common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		},
		{
			name:       "without prefix",
			key:        devKey[2:],
			wantSigner: true,
			wantSender: common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		},
		{
			name: "no key",
		},
		{
			name: "malformed key",
			key:  "0x1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(&config.RuntimeConfig{PrivateKey: tt.key}, quietLogger())
			sender, ok := c.Sender()
			assert.Equal(t, tt.wantSigner, ok)
			assert.Equal(t, tt.wantSender, sender)
		})
	}
}

func TestClient_RequiresConnection(t *testing.T) {
	ctx := context.Background()
	c := NewClient(&config.RuntimeConfig{PrivateKey: devKey}, quietLogger())

	_, err := c.BlockNumber(ctx)
	assert.Error(t, err)

	_, err = c.Backend()
	assert.Error(t, err)

	_, err = c.TransactOpts(ctx, usecase.TxOptions{})
	assert.Error(t, err)

	// Close without a connection is a no-op
	c.Close()
}

func TestClient_DeployWithoutSigner(t *testing.T) {
	c := NewClient(&config.RuntimeConfig{}, quietLogger())

	_, _, err := c.Deploy(context.Background(), []byte{0x60, 0x00}, usecase.TxOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSigner)

	_, err = c.TransactOpts(context.Background(), usecase.TxOptions{})
	assert.ErrorIs(t, err, domain.ErrNoSigner)
}
