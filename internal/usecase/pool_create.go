package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// CreatePoolParams contains parameters for creating and seeding a pool
type CreatePoolParams struct {
	Manifest string
	TokenA   TokenSpec
	TokenB   TokenSpec
	// ExistingTokenA and ExistingTokenB reuse deployed tokens instead of deploying new ones
	ExistingTokenA common.Address
	ExistingTokenB common.Address
	Fee            uint32
	// Price is token1 per token0 in raw units
	Price      string
	RangeMode  uniswapv3.RangeMode
	RangeWidth int32
	// Amount0 and Amount1 are whole tokens
	Amount0  string
	Amount1  string
	GasLimit uint64
	Deadline time.Duration
}

// DefaultCreatePoolParams returns the settings of the stable pair setup
func DefaultCreatePoolParams() CreatePoolParams {
	return CreatePoolParams{
		Manifest:  models.PoolManifest,
		TokenA:    TokenSpec{Name: "TokenA", Symbol: "TKA", Decimals: 18, Supply: "1000000"},
		TokenB:    TokenSpec{Name: "TokenB", Symbol: "TKB", Decimals: 18, Supply: "1000000"},
		Fee:       500,
		Price:     "1",
		RangeMode: uniswapv3.RangeTickOffset,
		Amount0:   "1000",
		Amount1:   "1000",
		GasLimit:  1_000_000,
		Deadline:  20 * time.Minute,
	}
}

// CreatePoolResult is the outcome of pool creation
type CreatePoolResult struct {
	OperationSummary
	Manifest     string               `json:"manifest"`
	Token0       models.Token         `json:"token0"`
	Token1       models.Token         `json:"token1"`
	Pool         common.Address       `json:"pool"`
	Fee          uint32               `json:"fee"`
	Created      bool                 `json:"created"`
	Initialized  bool                 `json:"initialized"`
	SqrtPriceX96 *big.Int             `json:"sqrtPriceX96,omitempty"`
	Allowances   []models.TokenAmount `json:"allowances"`
	Balances     []models.TokenAmount `json:"balances"`
	Slot0        *models.Slot0        `json:"slot0,omitempty"`
	TickLower    int32                `json:"tickLower"`
	TickUpper    int32                `json:"tickUpper"`
	Minted       *models.DecodedEvent `json:"minted,omitempty"`
	// Canonical is true when the pool sits at the CREATE2 address of the canonical init code
	Canonical bool `json:"canonical"`
}

// CreatePool deploys a token pair, creates and initializes its pool and mints the first position
type CreatePool struct {
	runner *Runner
}

// NewCreatePool creates a new CreatePool use case
func NewCreatePool(runner *Runner) *CreatePool {
	return &CreatePool{runner: runner}
}

// Run executes pool creation. The manifest is written even when minting fails.
func (uc *CreatePool) Run(ctx context.Context, params CreatePoolParams) (*CreatePoolResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.PoolManifest
	}
	spacing, err := uniswapv3.TickSpacing(params.Fee)
	if err != nil {
		return nil, err
	}
	if params.RangeWidth == 0 {
		params.RangeWidth = 1000
		if params.RangeMode == uniswapv3.RangeSpacing {
			params.RangeWidth = 10
		}
	}
	sqrtPrice, err := uniswapv3.EncodePriceSqrtDecimal(params.Price)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", domain.ErrInvalidPrice, params.Price, err)
	}
	if !uniswapv3.ValidSqrtPrice(sqrtPrice) {
		return nil, domain.InvalidPriceError{
			Price:        params.Price,
			SqrtPriceX96: sqrtPrice,
			Min:          uniswapv3.MinSqrtRatio,
			Max:          uniswapv3.MaxSqrtRatio,
		}
	}

	result := &CreatePoolResult{Manifest: params.Manifest, Fee: params.Fee}
	spec := OperationSpec{
		Name:             "pool create",
		Requires:         []ManifestRequirement{coreRequirement},
		PersistOnFailure: true,
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		m := env.CreateManifest(params.Manifest)
		d := deployer{env: env, manifest: params.Manifest, result: &DeployResult{}}

		factory, err := protocolContract(ctx, env, params.Manifest, models.RoleFactory, ABIFactory)
		if err != nil {
			return err
		}
		npm, err := protocolContract(ctx, env, params.Manifest, models.RolePositionManager, ABIPositionManager)
		if err != nil {
			return err
		}

		tokenA, err := uc.token(ctx, env, d, models.RoleTokenA, params.ExistingTokenA, params.TokenA)
		if err != nil {
			return err
		}
		tokenB, err := uc.token(ctx, env, d, models.RoleTokenB, params.ExistingTokenB, params.TokenB)
		if err != nil {
			return err
		}
		token0, token1 := uniswapv3.SortTokens(tokenA.Address(), tokenB.Address())
		t0, t1 := erc20{tokenA}, erc20{tokenB}
		if token0 != tokenA.Address() {
			t0, t1 = t1, t0
		}
		if result.Token0, err = t0.Metadata(ctx); err != nil {
			return err
		}
		if result.Token1, err = t1.Metadata(ctx); err != nil {
			return err
		}

		fee := new(big.Int).SetUint64(uint64(params.Fee))
		poolAddr, err := callAddress(ctx, factory, "getPool", token0, token1, fee)
		if err != nil {
			return fmt.Errorf("failed to look up pool: %w", err)
		}

		record := &models.ContractRecord{Token0: token0.Hex(), Token1: token1.Hex(), Fee: params.Fee}
		if poolAddr == (common.Address{}) {
			receipt, err := env.Transact(ctx, factory, "create pool", TxOptions{}, "createPool", token0, token1, fee)
			if err != nil {
				return err
			}
			record.TransactionHash = receipt.TxHash.Hex()
			if poolAddr, err = callAddress(ctx, factory, "getPool", token0, token1, fee); err != nil {
				return fmt.Errorf("failed to look up created pool: %w", err)
			}
			result.Created = true
		} else {
			env.runner.log.Info("pool already exists", "pool", poolAddr)
		}
		result.Pool = poolAddr
		result.Canonical = uniswapv3.ComputePoolAddress(factory.Address(), token0, token1, params.Fee) == poolAddr
		if !result.Canonical {
			env.runner.log.Debug("pool address is not the canonical CREATE2 address", "pool", poolAddr, "factory", factory.Address())
		}
		record.Address = poolAddr.Hex()
		abiJSON, err := env.runner.abis.JSON(ABIPool)
		if err != nil {
			return err
		}
		if record.ABI, err = env.runner.store.WriteABI(ctx, env.Network.Name, models.RolePool, abiJSON); err != nil {
			return err
		}
		m.Set(models.RolePool, record)

		pool, err := env.ContractAt(ABIPool, poolAddr)
		if err != nil {
			return err
		}
		initialize := result.Created
		if !initialize {
			current, err := readSlot0(ctx, pool)
			if err != nil {
				return err
			}
			initialize = current.SqrtPriceX96.Sign() == 0
		}
		if initialize {
			if _, err := env.Transact(ctx, pool, "initialize pool", TxOptions{}, "initialize", sqrtPrice); err != nil {
				return err
			}
			result.Initialized = true
			result.SqrtPriceX96 = sqrtPrice
		}

		for _, t := range []struct {
			token erc20
			meta  models.Token
		}{{t0, result.Token0}, {t1, result.Token1}} {
			if err := approve(ctx, env, t.token, t.meta.Symbol, npm.Address(), uniswapv3.MaxUint256); err != nil {
				return err
			}
			allowance, err := t.token.Allowance(ctx, env.Sender, npm.Address())
			if err != nil {
				return err
			}
			balance, err := t.token.BalanceOf(ctx, env.Sender)
			if err != nil {
				return err
			}
			result.Allowances = append(result.Allowances, models.TokenAmount{Token: t.meta, Amount: allowance})
			result.Balances = append(result.Balances, models.TokenAmount{Token: t.meta, Amount: balance})
		}

		if result.Slot0, err = readSlot0(ctx, pool); err != nil {
			return err
		}
		if result.TickLower, result.TickUpper, err = uniswapv3.TickRange(params.RangeMode, result.Slot0.Tick, spacing, params.RangeWidth); err != nil {
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
			Token0:         token0,
			Token1:         token1,
			Fee:            fee,
			TickLower:      big.NewInt(int64(result.TickLower)),
			TickUpper:      big.NewInt(int64(result.TickUpper)),
			Amount0Desired: amount0,
			Amount1Desired: amount1,
			Amount0Min:     new(big.Int),
			Amount1Min:     new(big.Int),
			Recipient:      env.Sender,
			Deadline:       uniswapv3.Deadline(env.Now, params.Deadline),
		}
		receipt, err := env.Transact(ctx, npm, "mint position", TxOptions{GasLimit: params.GasLimit}, "mint", mint)
		if receipt != nil {
			record.LiquidityTransaction = receipt.TxHash.Hex()
		}
		if err != nil {
			return err
		}
		result.Minted = findEvent(env.DecodeEvents(receipt, npm), "IncreaseLiquidity")
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

func (uc *CreatePool) token(ctx context.Context, env *Env, d deployer, role string, existing common.Address, spec TokenSpec) (Contract, error) {
	if existing != (common.Address{}) {
		if err := d.existing(ctx, role, existing, ABIToken); err != nil {
			return nil, err
		}
		return env.ContractAt(ABIToken, existing)
	}
	deployed, err := d.token(ctx, role, spec, env.Sender)
	if err != nil {
		return nil, err
	}
	return env.runner.binder.Bind(role, deployed.Address, deployed.ABI), nil
}
