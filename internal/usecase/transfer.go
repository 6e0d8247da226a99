package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// DefaultTransferRecipient receives transfers when no recipient is given
var DefaultTransferRecipient = common.HexToAddress("0x0b511e0C4890881352e00f3E48f5B6C0D08B8A9B")

// TransferParams contains parameters for sending both pair tokens to a recipient
type TransferParams struct {
	Manifest  string
	Recipient common.Address
	// Amount is in whole tokens and applies to each token
	Amount string
	// Roles limits the transfer to some of TokenA and TokenB. Empty means both.
	Roles []string
}

// DefaultTransferParams returns the original transfer settings
func DefaultTransferParams() TransferParams {
	return TransferParams{
		Manifest:  models.PoolManifest,
		Recipient: DefaultTransferRecipient,
		Amount:    "10000",
	}
}

// TokenTransfer is the outcome for one token
type TokenTransfer struct {
	Role      string        `json:"role"`
	Token     models.Token  `json:"token"`
	Amount    *big.Int      `json:"amount"`
	Sender    BalanceChange `json:"sender"`
	Recipient BalanceChange `json:"recipient"`
	TxHash    string        `json:"transactionHash"`
	// Verified is false when the recipient balance did not grow by Amount
	Verified bool `json:"verified"`
}

// TransferResult is returned by TransferTokens
type TransferResult struct {
	OperationSummary
	Recipient  common.Address   `json:"recipient"`
	EthBalance *big.Int         `json:"ethBalance"`
	Transfers  []*TokenTransfer `json:"transfers"`
}

// TransferTokens sends pair tokens to a recipient and verifies the recipient balance
type TransferTokens struct {
	runner *Runner
}

// NewTransferTokens creates a new TransferTokens use case
func NewTransferTokens(runner *Runner) *TransferTokens {
	return &TransferTokens{runner: runner}
}

// Run executes the transfers in order, stopping at the first failure
func (uc *TransferTokens) Run(ctx context.Context, params TransferParams) (*TransferResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.PoolManifest
	}
	if params.Recipient == (common.Address{}) {
		params.Recipient = DefaultTransferRecipient
	}
	roles := params.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleTokenA, models.RoleTokenB}
	}
	for _, role := range roles {
		if role != models.RoleTokenA && role != models.RoleTokenB {
			return nil, fmt.Errorf("unknown token role %q", role)
		}
	}

	result := &TransferResult{Recipient: params.Recipient}
	spec := OperationSpec{
		Name:     "transfer",
		Requires: []ManifestRequirement{{Name: params.Manifest, Roles: roles}},
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		var err error
		if result.EthBalance, err = env.Client().BalanceAt(ctx, env.Sender); err != nil {
			return fmt.Errorf("failed to read ETH balance: %w", err)
		}
		for _, role := range roles {
			bound, err := env.Bind(ctx, params.Manifest, role, ABIToken)
			if err != nil {
				return err
			}
			transfer, err := uc.transfer(ctx, env, role, erc20{bound}, params)
			if transfer != nil {
				result.Transfers = append(result.Transfers, transfer)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

func (uc *TransferTokens) transfer(ctx context.Context, env *Env, role string, token erc20, params TransferParams) (*TokenTransfer, error) {
	meta, err := token.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := uniswapv3.ParseUnits(params.Amount, meta.Decimals)
	if err != nil {
		return nil, err
	}
	t := &TokenTransfer{Role: role, Token: meta, Amount: amount}

	if t.Sender.Before, err = token.BalanceOf(ctx, env.Sender); err != nil {
		return nil, err
	}
	if t.Sender.Before.Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: %s holds %s %s, cannot send %s", domain.ErrInsufficientBalance,
			env.Sender.Hex(), uniswapv3.FormatUnits(t.Sender.Before, meta.Decimals), meta.Symbol, params.Amount)
	}
	if t.Recipient.Before, err = token.BalanceOf(ctx, params.Recipient); err != nil {
		return nil, err
	}

	receipt, err := env.Transact(ctx, token, "transfer "+meta.Symbol, TxOptions{}, "transfer", params.Recipient, amount)
	if err != nil {
		return t, err
	}
	t.TxHash = receipt.TxHash.Hex()

	if t.Sender.After, err = token.BalanceOf(ctx, env.Sender); err != nil {
		return t, err
	}
	if t.Recipient.After, err = token.BalanceOf(ctx, params.Recipient); err != nil {
		return t, err
	}
	expected := new(big.Int).Add(t.Recipient.Before, amount)
	if params.Recipient == env.Sender {
		// a transfer to oneself leaves the balance unchanged
		expected = t.Recipient.Before
	}
	t.Verified = t.Recipient.After.Cmp(expected) == 0
	if !t.Verified {
		env.Warn(mismatch(meta.Symbol+" recipient balance", expected, t.Recipient.After, meta.Decimals))
	}
	return t, nil
}
