package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

// OpenTradingParams contains the arguments of the bespoke token's openTrading call
type OpenTradingParams struct {
	Manifest      string
	Role          string
	OutputRoots   []common.Address
	L2BlockNumber *big.Int
	NewLimit      *big.Int
	GasLimit      uint64
}

// OpenTradingResult is the outcome of OpenTrading
type OpenTradingResult struct {
	OperationSummary
	Token  models.Token           `json:"token"`
	Events []*models.DecodedEvent `json:"events,omitempty"`
}

// OpenTrading calls openTrading on a recorded token
type OpenTrading struct {
	runner *Runner
}

// NewOpenTrading creates a new OpenTrading use case
func NewOpenTrading(runner *Runner) *OpenTrading {
	return &OpenTrading{runner: runner}
}

// Run executes the call
func (uc *OpenTrading) Run(ctx context.Context, params OpenTradingParams) (*OpenTradingResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.TokensManifest
	}
	if params.Role == "" {
		params.Role = models.RoleTokenA
	}
	if params.L2BlockNumber == nil || params.NewLimit == nil {
		return nil, fmt.Errorf("l2 block number and new limit are required")
	}
	if params.OutputRoots == nil {
		params.OutputRoots = []common.Address{}
	}

	result := &OpenTradingResult{}
	spec := OperationSpec{
		Name:     "token open-trading",
		Requires: []ManifestRequirement{{Name: params.Manifest, Roles: []string{params.Role}}},
	}
	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		token, err := env.Bind(ctx, params.Manifest, params.Role, ABIToken)
		if err != nil {
			return err
		}
		if result.Token, err = (erc20{token}).Metadata(ctx); err != nil {
			return err
		}
		receipt, err := env.Transact(ctx, token, "open trading on "+result.Token.Symbol, TxOptions{GasLimit: params.GasLimit},
			"openTrading", params.OutputRoots, params.L2BlockNumber, params.NewLimit)
		if err != nil {
			return err
		}
		result.Events = env.DecodeEvents(receipt, token)
		return nil
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}
