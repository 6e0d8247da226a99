package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// DefaultPollInterval is how often receipts are polled while waiting for a transaction
const DefaultPollInterval = time.Second

// Client implements the ChainClient port on top of ethclient.
// Transactions are signed locally with the configured key.
type Client struct {
	log          *slog.Logger
	key          *ecdsa.PrivateKey
	sender       common.Address
	pollInterval time.Duration

	eth     *ethclient.Client
	chainID *big.Int
}

// NewClient creates a client for the configured signer. The connection is opened by Connect.
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	c := &Client{
		log:          log.With("component", "ChainClient"),
		pollInterval: DefaultPollInterval,
	}
	// A malformed key is reported by RuntimeConfig.Validate before anything is sent
	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err == nil {
			c.key = key
			c.sender = crypto.PubkeyToAddress(key.PublicKey)
		}
	}
	return c
}

// Connect dials the RPC endpoint and returns its chain id
func (c *Client) Connect(ctx context.Context, rpcURL string) (uint64, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	c.eth = eth
	c.chainID = chainID
	c.log.Debug("connected", "rpc", rpcURL, "chainId", chainID)
	return chainID.Uint64(), nil
}

// Sender returns the signing account
func (c *Client) Sender() (common.Address, bool) {
	return c.sender, c.key != nil
}

// Backend exposes the connection to contract bindings
func (c *Client) Backend() (bind.ContractBackend, error) {
	if c.eth == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	return c.eth, nil
}

// CallOpts returns options for read-only calls from the signer
func (c *Client) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: c.sender}
}

// TransactOpts returns signing options for one transaction
func (c *Client) TransactOpts(ctx context.Context, opts usecase.TxOptions) (*bind.TransactOpts, error) {
	if c.key == nil {
		return nil, domain.ErrNoSigner
	}
	if c.chainID == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	signer := types.LatestSignerForChainID(c.chainID)
	return &bind.TransactOpts{
		From:     c.sender,
		Context:  ctx,
		GasLimit: opts.GasLimit,
		Value:    opts.Value,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != c.sender {
				return nil, fmt.Errorf("cannot sign for %s", addr.Hex())
			}
			return types.SignTx(tx, signer, c.key)
		},
	}, nil
}

// BlockNumber returns the head block
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	if c.eth == nil {
		return 0, fmt.Errorf("not connected to blockchain")
	}
	return c.eth.BlockNumber(ctx)
}

// BalanceAt returns the ether balance at the head block
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	if c.eth == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	return c.eth.BalanceAt(ctx, account, nil)
}

// CodeAt returns the runtime code at the head block
func (c *Client) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	if c.eth == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	return c.eth.CodeAt(ctx, account, nil)
}

// FilterLogs runs eth_getLogs
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	if c.eth == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	return c.eth.FilterLogs(ctx, query)
}

// Deploy signs and sends a contract creation. The returned address is derived from the sender nonce.
func (c *Client) Deploy(ctx context.Context, code []byte, opts usecase.TxOptions) (*types.Transaction, common.Address, error) {
	if c.key == nil {
		return nil, common.Address{}, domain.ErrNoSigner
	}
	if c.eth == nil {
		return nil, common.Address{}, fmt.Errorf("not connected to blockchain")
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.sender)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	value := opts.Value
	if value == nil {
		value = new(big.Int)
	}
	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit, err = c.eth.EstimateGas(ctx, ethereum.CallMsg{From: c.sender, Value: value, Data: code})
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("failed to estimate gas: %w", err)
		}
	}

	txData, err := c.feeFields(ctx, nonce, gasLimit, value, code)
	if err != nil {
		return nil, common.Address{}, err
	}
	signed, err := types.SignNewTx(c.key, types.LatestSignerForChainID(c.chainID), txData)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, common.Address{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	address := crypto.CreateAddress(c.sender, nonce)
	c.log.Debug("contract creation sent", "hash", signed.Hash(), "address", address, "gas", gasLimit)
	return signed, address, nil
}

// feeFields builds an EIP-1559 transaction, or a legacy one on chains without a base fee
func (c *Client) feeFields(ctx context.Context, nonce, gasLimit uint64, value *big.Int, data []byte) (types.TxData, error) {
	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read head block: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		return &types.LegacyTx{Nonce: nonce, GasPrice: gasPrice, Gas: gasLimit, Value: value, Data: data}, nil
	}

	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return &types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		Value:     value,
		Data:      data,
	}, nil
}

// WaitMined polls for the receipt until the transaction is included or ctx is done
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if c.eth == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.log.Debug("receipt not available", "hash", tx.Hash(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases the connection
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

var _ usecase.ChainClient = (*Client)(nil)
