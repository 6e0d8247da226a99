package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// FeesParams selects the positions to query or collect
type FeesParams struct {
	Manifest string
	// TokenIDs selects positions explicitly. Empty asks interactively.
	TokenIDs []*big.Int
	GasLimit uint64
}

// DefaultFeesParams returns the original collect settings
func DefaultFeesParams() FeesParams {
	return FeesParams{Manifest: models.PoolManifest, GasLimit: 300_000}
}

// CollectedFees is the outcome for one position
type CollectedFees struct {
	Position *PositionView `json:"position"`
	// Skipped is true when nothing was owed and no transaction was sent
	Skipped   bool                 `json:"skipped"`
	Received0 BalanceChange        `json:"received0"`
	Received1 BalanceChange        `json:"received1"`
	Event     *models.DecodedEvent `json:"event,omitempty"`
}

// FeesResult is returned by fee query and collection
type FeesResult struct {
	OperationSummary
	Positions []*CollectedFees `json:"positions"`
}

// QueryFees reports the fees owed to positions without sending transactions
type QueryFees struct {
	runner   *Runner
	selector PositionSelector
}

// NewQueryFees creates a new QueryFees use case
func NewQueryFees(runner *Runner, selector PositionSelector) *QueryFees {
	return &QueryFees{runner: runner, selector: selector}
}

// Run executes the query
func (uc *QueryFees) Run(ctx context.Context, params FeesParams) (*FeesResult, error) {
	return runFees(ctx, uc.runner, uc.selector, params, false)
}

// CollectFees withdraws owed fees of one or more positions to the sender
type CollectFees struct {
	runner   *Runner
	selector PositionSelector
}

// NewCollectFees creates a new CollectFees use case
func NewCollectFees(runner *Runner, selector PositionSelector) *CollectFees {
	return &CollectFees{runner: runner, selector: selector}
}

// Run executes the collection. Positions with nothing owed are skipped without a transaction.
func (uc *CollectFees) Run(ctx context.Context, params FeesParams) (*FeesResult, error) {
	return runFees(ctx, uc.runner, uc.selector, params, true)
}

func runFees(ctx context.Context, runner *Runner, selector PositionSelector, params FeesParams, collect bool) (*FeesResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.PoolManifest
	}
	if params.GasLimit == 0 {
		params.GasLimit = 300_000
	}
	name := "fees query"
	if collect {
		name = "fees collect"
	}
	result := &FeesResult{}
	spec := OperationSpec{
		Name:     name,
		Requires: []ManifestRequirement{{Name: params.Manifest, Optional: true}, coreRequirement},
	}

	env, err := runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
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

		prompt := "Select positions"
		if collect {
			prompt = "Select positions to collect fees from"
		}
		picked, err := pickPositions(ctx, env, selector, npm, tokens, pair, params.TokenIDs, true, prompt)
		if err != nil {
			return err
		}

		for _, view := range picked {
			entry := &CollectedFees{Position: view, Skipped: !view.Position.HasOwedTokens()}
			result.Positions = append(result.Positions, entry)
			if !collect || entry.Skipped {
				continue
			}
			if err := collectOne(ctx, env, npm, params.GasLimit, entry); err != nil {
				return err
			}
		}
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// collectOne sends collect with the owed amounts as maxima and checks the received balances
func collectOne(ctx context.Context, env *Env, npm positionManager, gasLimit uint64, entry *CollectedFees) error {
	view := entry.Position
	pos := view.Position

	token0, err := env.ContractAt(ABIERC20, pos.Token0)
	if err != nil {
		return err
	}
	token1, err := env.ContractAt(ABIERC20, pos.Token1)
	if err != nil {
		return err
	}
	t0, t1 := erc20{token0}, erc20{token1}

	if entry.Received0.Before, err = t0.BalanceOf(ctx, env.Sender); err != nil {
		return err
	}
	if entry.Received1.Before, err = t1.BalanceOf(ctx, env.Sender); err != nil {
		return err
	}

	params := uniswapv3.CollectParams{
		TokenId:    pos.TokenID,
		Recipient:  env.Sender,
		Amount0Max: pos.TokensOwed0,
		Amount1Max: pos.TokensOwed1,
	}
	label := fmt.Sprintf("collect fees of #%s", pos.TokenID)
	receipt, err := env.Transact(ctx, npm, label, TxOptions{GasLimit: gasLimit}, "collect", params)
	if err != nil {
		return err
	}
	entry.Event = findEvent(env.DecodeEvents(receipt, npm), "Collect")

	if entry.Received0.After, err = t0.BalanceOf(ctx, env.Sender); err != nil {
		return err
	}
	if entry.Received1.After, err = t1.BalanceOf(ctx, env.Sender); err != nil {
		return err
	}

	subject := fmt.Sprintf("position #%s collected %%s", pos.TokenID)
	if got := entry.Received0.Delta(); got.Cmp(pos.TokensOwed0) != 0 {
		env.Warn(mismatch(fmt.Sprintf(subject, view.Token0.Symbol), pos.TokensOwed0, got, view.Token0.Decimals))
	}
	if got := entry.Received1.Delta(); got.Cmp(pos.TokensOwed1) != 0 {
		env.Warn(mismatch(fmt.Sprintf(subject, view.Token1.Symbol), pos.TokensOwed1, got, view.Token1.Decimals))
	}
	return nil
}

// mismatch builds a verification warning with amounts in whole units
func mismatch(subject string, expected, actual *big.Int, decimals uint8) domain.VerificationWarning {
	return domain.VerificationWarning{
		Subject:  subject,
		Expected: uniswapv3.FormatUnits(expected, decimals),
		Actual:   uniswapv3.FormatUnits(actual, decimals),
	}
}
