package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// AddLiquidityParams contains parameters for minting a new position
type AddLiquidityParams struct {
	Manifest  string
	TickLower int32
	TickUpper int32
	// Amount0 and Amount1 are whole tokens
	Amount0  string
	Amount1  string
	GasLimit uint64
	Deadline time.Duration
}

// DefaultAddLiquidityParams returns the wide range mint settings
func DefaultAddLiquidityParams() AddLiquidityParams {
	return AddLiquidityParams{
		Manifest:  models.Pool2Manifest,
		TickLower: -10010,
		TickUpper: 10010,
		Amount0:   "10000",
		Amount1:   "10000",
		GasLimit:  1_000_000,
		Deadline:  20 * time.Minute,
	}
}

// LiquidityResult is returned by the liquidity operations
type LiquidityResult struct {
	OperationSummary
	TokenID   *big.Int             `json:"tokenId,omitempty"`
	Token0    models.Token         `json:"token0"`
	Token1    models.Token         `json:"token1"`
	TickLower int32                `json:"tickLower"`
	TickUpper int32                `json:"tickUpper"`
	Slot0     *models.Slot0        `json:"slot0,omitempty"`
	Liquidity *big.Int             `json:"liquidity,omitempty"`
	Amount0   *big.Int             `json:"amount0,omitempty"`
	Amount1   *big.Int             `json:"amount1,omitempty"`
	Collected *models.DecodedEvent `json:"collected,omitempty"`
	// Withdrawn holds the balance changes of the collect that follows a decrease
	Withdrawn *CollectedFees `json:"withdrawn,omitempty"`
	// Position is the state re-read after the transaction
	Position *PositionView `json:"position,omitempty"`
}

func (r *LiquidityResult) applyEvent(ev *models.DecodedEvent) {
	if ev == nil {
		return
	}
	if id := ev.Uint("tokenId"); id != nil {
		r.TokenID = id
	}
	r.Liquidity = ev.Uint("liquidity")
	r.Amount0 = ev.Uint("amount0")
	r.Amount1 = ev.Uint("amount1")
}

// AddLiquidity mints a position on the pool recorded in a manifest
type AddLiquidity struct {
	runner *Runner
}

// NewAddLiquidity creates a new AddLiquidity use case
func NewAddLiquidity(runner *Runner) *AddLiquidity {
	return &AddLiquidity{runner: runner}
}

// Run executes the mint
func (uc *AddLiquidity) Run(ctx context.Context, params AddLiquidityParams) (*LiquidityResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.Pool2Manifest
	}
	if err := uniswapv3.ValidateTickRange(params.TickLower, params.TickUpper); err != nil {
		return nil, err
	}
	result := &LiquidityResult{TickLower: params.TickLower, TickUpper: params.TickUpper}
	spec := OperationSpec{
		Name:     "liquidity add",
		Requires: []ManifestRequirement{pairRequirement(params.Manifest, true), coreRequirement},
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		pair, err := loadPoolPair(ctx, env, params.Manifest)
		if err != nil {
			return err
		}
		npm, err := protocolContract(ctx, env, params.Manifest, models.RolePositionManager, ABIPositionManager)
		if err != nil {
			return err
		}
		result.Token0, result.Token1 = pair.Sorted()

		for _, t := range []struct {
			token erc20
			meta  models.Token
		}{{pair.TokenA, pair.TokenAMeta}, {pair.TokenB, pair.TokenBMeta}} {
			if err := approve(ctx, env, t.token, t.meta.Symbol, npm.Address(), uniswapv3.MaxUint256); err != nil {
				return err
			}
		}

		if result.Slot0, err = readSlot0(ctx, pair.Pool); err != nil {
			return err
		}
		amount0, err := uniswapv3.ParseUnits(params.Amount0, result.Token0.Decimals)
		if err != nil {
			return err
		}
		amount1, err := uniswapv3.ParseUnits(params.Amount1, result.Token1.Decimals)
		if err != nil {
			return err
		}

		mint := uniswapv3.MintParams{
			Token0:         pair.Token0,
			Token1:         pair.Token1,
			Fee:            new(big.Int).SetUint64(uint64(pair.Fee)),
			TickLower:      big.NewInt(int64(params.TickLower)),
			TickUpper:      big.NewInt(int64(params.TickUpper)),
			Amount0Desired: amount0,
			Amount1Desired: amount1,
			Amount0Min:     new(big.Int),
			Amount1Min:     new(big.Int),
			Recipient:      env.Sender,
			Deadline:       uniswapv3.Deadline(env.Now, params.Deadline),
		}
		receipt, err := env.Transact(ctx, npm, "mint position", TxOptions{GasLimit: params.GasLimit}, "mint", mint)
		if err != nil {
			return err
		}

		events := env.DecodeEvents(receipt, npm)
		result.applyEvent(findEvent(events, "IncreaseLiquidity"))
		if result.TokenID == nil {
			// the ERC-721 mint is a Transfer from the zero address
			if transfer := findEvent(events, "Transfer"); transfer != nil && transfer.AddressField("from") == (common.Address{}) {
				result.TokenID = transfer.Uint("tokenId")
			}
		}
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// IncreaseLiquidityParams contains parameters for adding to an existing position
type IncreaseLiquidityParams struct {
	Manifest string
	// TokenID selects the position. Nil asks interactively.
	TokenID  *big.Int
	Amount0  string
	Amount1  string
	GasLimit uint64
	Deadline time.Duration
}

// DefaultIncreaseLiquidityParams returns the original top-up settings
func DefaultIncreaseLiquidityParams() IncreaseLiquidityParams {
	return IncreaseLiquidityParams{
		Manifest: models.PoolManifest,
		Amount0:  "1000",
		Amount1:  "1000",
		GasLimit: 1_500_000,
		Deadline: 20 * time.Minute,
	}
}

// IncreaseLiquidity adds tokens to a position on the recorded pool
type IncreaseLiquidity struct {
	runner   *Runner
	selector PositionSelector
}

// NewIncreaseLiquidity creates a new IncreaseLiquidity use case
func NewIncreaseLiquidity(runner *Runner, selector PositionSelector) *IncreaseLiquidity {
	return &IncreaseLiquidity{runner: runner, selector: selector}
}

// Run executes the increase
func (uc *IncreaseLiquidity) Run(ctx context.Context, params IncreaseLiquidityParams) (*LiquidityResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.PoolManifest
	}
	result := &LiquidityResult{}
	spec := OperationSpec{
		Name:     "liquidity increase",
		Requires: []ManifestRequirement{pairRequirement(params.Manifest, true), coreRequirement},
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		pair, err := loadPoolPair(ctx, env, params.Manifest)
		if err != nil {
			return err
		}
		npmContract, err := protocolContract(ctx, env, params.Manifest, models.RolePositionManager, ABIPositionManager)
		if err != nil {
			return err
		}
		npm := positionManager{npmContract}
		tokens := newTokenCache(env, pair.TokenAMeta, pair.TokenBMeta)

		var ids []*big.Int
		if params.TokenID != nil {
			ids = append(ids, params.TokenID)
		}
		picked, err := pickPositions(ctx, env, uc.selector, npm, tokens, pair, ids, false, "Select the position to increase")
		if err != nil {
			return err
		}
		view := picked[0]
		pos := view.Position
		if !pos.MatchesPair(pair.Token0, pair.Token1) {
			return fmt.Errorf("position %s is a %s/%s position, not on the pool in %s",
				pos.TokenID, view.Token0.Symbol, view.Token1.Symbol, params.Manifest)
		}
		result.TokenID = pos.TokenID
		result.Token0, result.Token1 = view.Token0, view.Token1
		result.TickLower, result.TickUpper = pos.TickLower, pos.TickUpper

		amount0, err := uniswapv3.ParseUnits(params.Amount0, view.Token0.Decimals)
		if err != nil {
			return err
		}
		amount1, err := uniswapv3.ParseUnits(params.Amount1, view.Token1.Decimals)
		if err != nil {
			return err
		}
		if err := approve(ctx, env, pair.ERC20(pos.Token0), view.Token0.Symbol, npm.Address(), amount0); err != nil {
			return err
		}
		if err := approve(ctx, env, pair.ERC20(pos.Token1), view.Token1.Symbol, npm.Address(), amount1); err != nil {
			return err
		}

		increase := uniswapv3.IncreaseLiquidityParams{
			TokenId:        pos.TokenID,
			Amount0Desired: amount0,
			Amount1Desired: amount1,
			Amount0Min:     new(big.Int),
			Amount1Min:     new(big.Int),
			Deadline:       uniswapv3.Deadline(env.Now, params.Deadline),
		}
		receipt, err := env.Transact(ctx, npm, "increase liquidity", TxOptions{GasLimit: params.GasLimit}, "increaseLiquidity", increase)
		if err != nil {
			return err
		}
		events := env.DecodeEvents(receipt, npm)
		result.applyEvent(findEvent(events, "IncreaseLiquidity"))
		result.Collected = findEvent(events, "Collect")

		updated, err := npm.Positions(ctx, pos.TokenID)
		if err != nil {
			return fmt.Errorf("failed to re-read position %s: %w", pos.TokenID, err)
		}
		updated.Owner = env.Sender
		result.Position = &PositionView{Position: updated, Token0: view.Token0, Token1: view.Token1}
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// RemoveLiquidityParams contains parameters for decreasing a position
type RemoveLiquidityParams struct {
	Manifest string
	TokenID  *big.Int
	// Percent of the current liquidity to remove, 1 to 100
	Percent uint
	// Collect sends the withdrawn tokens to the sender after the decrease
	Collect  bool
	GasLimit uint64
	Deadline time.Duration
}

// DefaultRemoveLiquidityParams returns the half withdrawal settings
func DefaultRemoveLiquidityParams() RemoveLiquidityParams {
	return RemoveLiquidityParams{
		Manifest: models.PoolManifest,
		Percent:  50,
		Collect:  true,
		GasLimit: 1_000_000,
		Deadline: 10 * time.Minute,
	}
}

// RemoveLiquidity decreases the liquidity of a position
type RemoveLiquidity struct {
	runner   *Runner
	selector PositionSelector
}

// NewRemoveLiquidity creates a new RemoveLiquidity use case
func NewRemoveLiquidity(runner *Runner, selector PositionSelector) *RemoveLiquidity {
	return &RemoveLiquidity{runner: runner, selector: selector}
}

// Run executes the decrease
func (uc *RemoveLiquidity) Run(ctx context.Context, params RemoveLiquidityParams) (*LiquidityResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.PoolManifest
	}
	if params.Percent == 0 || params.Percent > 100 {
		return nil, fmt.Errorf("percent must be between 1 and 100, got %d", params.Percent)
	}
	result := &LiquidityResult{}
	spec := OperationSpec{
		Name:     "liquidity remove",
		Requires: []ManifestRequirement{{Name: params.Manifest, Optional: true}, coreRequirement},
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		npmContract, err := protocolContract(ctx, env, params.Manifest, models.RolePositionManager, ABIPositionManager)
		if err != nil {
			return err
		}
		npm := positionManager{npmContract}
		tokens := newTokenCache(env)

		var pair *poolPair
		if m, ok := env.Manifest(params.Manifest); ok {
			if _, hasA := m.Address(models.RoleTokenA); hasA {
				if pair, err = loadPoolPair(ctx, env, params.Manifest); err != nil {
					return err
				}
			}
		}
		var ids []*big.Int
		if params.TokenID != nil {
			ids = append(ids, params.TokenID)
		}
		picked, err := pickPositions(ctx, env, uc.selector, npm, tokens, pair, ids, false, "Select the position to decrease")
		if err != nil {
			return err
		}
		view := picked[0]
		pos := view.Position
		result.TokenID = pos.TokenID
		result.Token0, result.Token1 = view.Token0, view.Token1
		result.TickLower, result.TickUpper = pos.TickLower, pos.TickUpper

		share := uniswapv3.LiquidityShare(pos.Liquidity, params.Percent)
		if share.Sign() == 0 {
			return fmt.Errorf("position %s has no liquidity to remove", pos.TokenID)
		}
		decrease := uniswapv3.DecreaseLiquidityParams{
			TokenId:    pos.TokenID,
			Liquidity:  share,
			Amount0Min: new(big.Int),
			Amount1Min: new(big.Int),
			Deadline:   uniswapv3.Deadline(env.Now, params.Deadline),
		}
		receipt, err := env.Transact(ctx, npm, "decrease liquidity", TxOptions{GasLimit: params.GasLimit}, "decreaseLiquidity", decrease)
		if err != nil {
			return err
		}
		result.applyEvent(findEvent(env.DecodeEvents(receipt, npm), "DecreaseLiquidity"))
		if result.Liquidity == nil {
			result.Liquidity = share
		}

		updated, err := npm.Positions(ctx, pos.TokenID)
		if err != nil {
			return fmt.Errorf("failed to re-read position %s: %w", pos.TokenID, err)
		}
		updated.Owner = env.Sender
		result.Position = &PositionView{Position: updated, Token0: view.Token0, Token1: view.Token1}
		if !params.Collect || !updated.HasOwedTokens() {
			return nil
		}

		// Owed amounts now include the withdrawn principal as well as fees
		withdrawn := &CollectedFees{Position: result.Position}
		if err := collectOne(ctx, env, npm, params.GasLimit, withdrawn); err != nil {
			return err
		}
		result.Withdrawn = withdrawn
		result.Collected = withdrawn.Event

		if updated, err = npm.Positions(ctx, pos.TokenID); err != nil {
			return fmt.Errorf("failed to re-read position %s: %w", pos.TokenID, err)
		}
		updated.Owner = env.Sender
		result.Position = &PositionView{Position: updated, Token0: view.Token0, Token1: view.Token1}
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}
