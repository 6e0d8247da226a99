package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// SwapParams contains parameters for an exact input swap
type SwapParams struct {
	Manifest string
	// Amount is in whole units of the input token
	Amount string
	// Reverse swaps TokenB for TokenA
	Reverse bool
	// Quote asks the quoter for the expected output first
	Quote bool
	// MinOut is the minimum output in whole units, empty for none
	MinOut   string
	GasLimit uint64
	Deadline time.Duration
}

// DefaultSwapParams returns the original swap settings
func DefaultSwapParams() SwapParams {
	return SwapParams{
		Manifest: models.Pool2Manifest,
		Amount:   "1000",
		Quote:    true,
		GasLimit: 1_000_000,
		Deadline: 10 * time.Minute,
	}
}

// SwapResult is the outcome of a swap
type SwapResult struct {
	OperationSummary
	TokenIn    models.Token         `json:"tokenIn"`
	TokenOut   models.Token         `json:"tokenOut"`
	Fee        uint32               `json:"fee"`
	AmountIn   *big.Int             `json:"amountIn"`
	QuotedOut  *big.Int             `json:"quotedOut,omitempty"`
	Approved   bool                 `json:"approved"`
	BalanceIn  BalanceChange        `json:"balanceIn"`
	BalanceOut BalanceChange        `json:"balanceOut"`
	PoolSwap   *models.DecodedEvent `json:"poolSwap,omitempty"`
	SlotBefore *models.Slot0        `json:"slot0Before,omitempty"`
	SlotAfter  *models.Slot0        `json:"slot0After,omitempty"`
}

// BalanceChange is a balance read before and after a transaction
type BalanceChange struct {
	Before *big.Int `json:"before"`
	After  *big.Int `json:"after"`
}

// Delta returns After - Before
func (b BalanceChange) Delta() *big.Int {
	if b.Before == nil || b.After == nil {
		return new(big.Int)
	}
	return new(big.Int).Sub(b.After, b.Before)
}

// Swap trades one token of a recorded pool for the other through the router
type Swap struct {
	runner *Runner
}

// NewSwap creates a new Swap use case
func NewSwap(runner *Runner) *Swap {
	return &Swap{runner: runner}
}

// Run executes the swap
func (uc *Swap) Run(ctx context.Context, params SwapParams) (*SwapResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.Pool2Manifest
	}
	result := &SwapResult{}
	spec := OperationSpec{
		Name:     "swap",
		Requires: []ManifestRequirement{pairRequirement(params.Manifest, true), coreRequirement},
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		pair, err := loadPoolPair(ctx, env, params.Manifest)
		if err != nil {
			return err
		}
		router, err := protocolContract(ctx, env, params.Manifest, models.RoleSwapRouter, ABISwapRouter)
		if err != nil {
			return err
		}

		in, out := pair.TokenA, pair.TokenB
		result.TokenIn, result.TokenOut = pair.TokenAMeta, pair.TokenBMeta
		if params.Reverse {
			in, out = out, in
			result.TokenIn, result.TokenOut = result.TokenOut, result.TokenIn
		}
		result.Fee = pair.Fee
		fee := new(big.Int).SetUint64(uint64(pair.Fee))

		if result.AmountIn, err = uniswapv3.ParseUnits(params.Amount, result.TokenIn.Decimals); err != nil {
			return err
		}
		if result.AmountIn.Sign() == 0 {
			return fmt.Errorf("swap amount must be positive")
		}
		minOut := new(big.Int)
		if params.MinOut != "" {
			if minOut, err = uniswapv3.ParseUnits(params.MinOut, result.TokenOut.Decimals); err != nil {
				return err
			}
		}

		if result.BalanceIn.Before, err = in.BalanceOf(ctx, env.Sender); err != nil {
			return err
		}
		if result.BalanceOut.Before, err = out.BalanceOf(ctx, env.Sender); err != nil {
			return err
		}
		if result.SlotBefore, err = readSlot0(ctx, pair.Pool); err != nil {
			return err
		}

		if result.Approved, err = approveIfNeeded(ctx, env, in, result.TokenIn.Symbol, router.Address(), result.AmountIn); err != nil {
			return err
		}

		if params.Quote {
			result.QuotedOut = uc.quote(ctx, env, params.Manifest, result, fee)
		}

		swap := uniswapv3.ExactInputSingleParams{
			TokenIn:           result.TokenIn.Address,
			TokenOut:          result.TokenOut.Address,
			Fee:               fee,
			Recipient:         env.Sender,
			Deadline:          uniswapv3.Deadline(env.Now, params.Deadline),
			AmountIn:          result.AmountIn,
			AmountOutMinimum:  minOut,
			SqrtPriceLimitX96: new(big.Int),
		}
		label := fmt.Sprintf("swap %s for %s", result.TokenIn.Symbol, result.TokenOut.Symbol)
		receipt, err := env.Transact(ctx, router, label, TxOptions{GasLimit: params.GasLimit}, "exactInputSingle", swap)
		if err != nil {
			return err
		}
		result.PoolSwap = findEvent(env.DecodeEvents(receipt, pair.Pool), "Swap")

		if result.BalanceIn.After, err = in.BalanceOf(ctx, env.Sender); err != nil {
			return err
		}
		if result.BalanceOut.After, err = out.BalanceOf(ctx, env.Sender); err != nil {
			return err
		}
		if result.SlotAfter, err = readSlot0(ctx, pair.Pool); err != nil {
			return err
		}

		spent := new(big.Int).Neg(result.BalanceIn.Delta())
		if spent.Cmp(result.AmountIn) != 0 {
			env.Warn(mismatch(result.TokenIn.Symbol+" spent", result.AmountIn, spent, result.TokenIn.Decimals))
		}
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// quote is best effort: a missing or failing quoter only skips the estimate
func (uc *Swap) quote(ctx context.Context, env *Env, manifest string, result *SwapResult, fee *big.Int) *big.Int {
	quoter, err := protocolContract(ctx, env, manifest, roleQuoter, ABIQuoter)
	if err != nil {
		env.runner.log.Debug("skipping quote", "error", err)
		return nil
	}
	quoted, err := callBig(ctx, quoter, "quoteExactInputSingle",
		result.TokenIn.Address, result.TokenOut.Address, fee, result.AmountIn, new(big.Int))
	if err != nil {
		env.runner.log.Warn("quote failed", "error", err)
		return nil
	}
	return quoted
}
