package bindings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	abiadapter "github.com/trebuchet-org/v3ops/internal/adapters/abi"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// Backend supplies the connection and signing options contracts need at call time
type Backend interface {
	Backend() (bind.ContractBackend, error)
	CallOpts(ctx context.Context) *bind.CallOpts
	TransactOpts(ctx context.Context, opts usecase.TxOptions) (*bind.TransactOpts, error)
}

// Binder creates contract proxies on top of bind/v2 bound contracts
type Binder struct {
	backend Backend
	log     *slog.Logger
}

// NewBinder creates a new contract binder
func NewBinder(backend Backend, log *slog.Logger) *Binder {
	return &Binder{backend: backend, log: log.With("component", "ContractBinder")}
}

// Bind combines an address and ABI. No request is made.
func (b *Binder) Bind(name string, address common.Address, contractABI *abi.ABI) usecase.Contract {
	return &Contract{
		name:    name,
		address: address,
		abi:     contractABI,
		backend: b.backend,
		log:     b.log,
	}
}

// Contract is a deployed contract reachable through the configured backend
type Contract struct {
	name    string
	address common.Address
	abi     *abi.ABI
	backend Backend
	log     *slog.Logger
}

func (c *Contract) Name() string            { return c.name }
func (c *Contract) Address() common.Address { return c.address }
func (c *Contract) ABI() *abi.ABI           { return c.abi }

func (c *Contract) bound() (*bind.BoundContract, bind.ContractBackend, error) {
	backend, err := c.backend.Backend()
	if err != nil {
		return nil, nil, err
	}
	return bind.NewBoundContract(c.address, *c.abi, backend, backend, backend), backend, nil
}

// Call runs a view method and returns its unpacked outputs
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	bound, _, err := c.bound()
	if err != nil {
		return nil, err
	}
	var out []any
	if err := bound.Call(c.backend.CallOpts(ctx), &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, abiadapter.DecodeRevert(err, c.abi, c.name, method))
	}
	return out, nil
}

// Transact signs and sends a state changing call. It does not wait for the receipt.
func (c *Contract) Transact(ctx context.Context, opts usecase.TxOptions, method string, args ...any) (*types.Transaction, error) {
	bound, backend, err := c.bound()
	if err != nil {
		return nil, err
	}
	txOpts, err := c.backend.TransactOpts(ctx, opts)
	if err != nil {
		return nil, err
	}

	tx, err := bound.Transact(txOpts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, c.explain(ctx, backend, txOpts, method, args, err))
	}
	c.log.Debug("transaction submitted", "contract", c.name, "method", method, "hash", tx.Hash())
	return tx, nil
}

// explain replays a rejected transaction as eth_call, since gas estimation
// errors lose the revert data once bind wraps them
func (c *Contract) explain(ctx context.Context, backend bind.ContractBackend, opts *bind.TransactOpts, method string, args []any, sendErr error) error {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return sendErr
	}
	msg := ethereum.CallMsg{From: opts.From, To: &c.address, Data: input, Value: opts.Value}
	if _, err := backend.CallContract(ctx, msg, nil); err != nil {
		return abiadapter.DecodeRevert(err, c.abi, c.name, method)
	}
	return sendErr
}

var (
	_ usecase.ContractBinder = (*Binder)(nil)
	_ usecase.Contract       = (*Contract)(nil)
)
