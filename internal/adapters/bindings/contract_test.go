package bindings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

type disconnected struct{}

func (disconnected) Backend() (bind.ContractBackend, error) {
	return nil, errors.New("not connected to blockchain")
}

func (disconnected) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (disconnected) TransactOpts(context.Context, usecase.TxOptions) (*bind.TransactOpts, error) {
	return nil, errors.New("no signer")
}

func TestBinder_Bind(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"function","name":"symbol","inputs":[],"outputs":[{"type":"string"}],"stateMutability":"view"}]`))
	require.NoError(t, err)

	binder := NewBinder(disconnected{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	addr := common.HexToAddress("0x1000000000000000000000000000000000000001")
	c := binder.Bind("TokenA", addr, &parsed)

	assert.Equal(t, "TokenA", c.Name())
	assert.Equal(t, addr, c.Address())
	assert.Same(t, &parsed, c.ABI())

	// Binding never dials; the first call reports the missing connection
	_, err = c.Call(context.Background(), "symbol")
	assert.ErrorContains(t, err, "not connected")

	_, err = c.Transact(context.Background(), usecase.TxOptions{}, "symbol")
	assert.Error(t, err)
}
