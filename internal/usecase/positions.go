package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// PositionView is a position with the token metadata needed to display it
type PositionView struct {
	Position *models.Position `json:"position"`
	Token0   models.Token     `json:"token0"`
	Token1   models.Token     `json:"token1"`
}

// Label is the one line description used by selectors
func (v *PositionView) Label() string {
	p := v.Position
	return fmt.Sprintf("#%s %s/%s fee %d [%d, %d] liquidity %s owed %s %s / %s %s",
		p.TokenID, v.Token0.Symbol, v.Token1.Symbol, p.Fee, p.TickLower, p.TickUpper, p.Liquidity,
		uniswapv3.FormatUnits(p.TokensOwed0, v.Token0.Decimals), v.Token0.Symbol,
		uniswapv3.FormatUnits(p.TokensOwed1, v.Token1.Decimals), v.Token1.Symbol)
}

// tokenCache avoids reading symbol and decimals of the same token twice
type tokenCache struct {
	env    *Env
	tokens map[common.Address]models.Token
}

func newTokenCache(env *Env, known ...models.Token) *tokenCache {
	c := &tokenCache{env: env, tokens: make(map[common.Address]models.Token)}
	for _, t := range known {
		c.tokens[t.Address] = t
	}
	return c
}

func (c *tokenCache) get(ctx context.Context, address common.Address) (models.Token, error) {
	if t, ok := c.tokens[address]; ok {
		return t, nil
	}
	bound, err := c.env.ContractAt(ABIERC20, address)
	if err != nil {
		return models.Token{Address: address}, err
	}
	t, err := erc20{bound}.Metadata(ctx)
	if err != nil {
		return t, err
	}
	c.tokens[address] = t
	return t, nil
}

func (c *tokenCache) view(ctx context.Context, pos *models.Position) (*PositionView, error) {
	t0, err := c.get(ctx, pos.Token0)
	if err != nil {
		return nil, err
	}
	t1, err := c.get(ctx, pos.Token1)
	if err != nil {
		return nil, err
	}
	return &PositionView{Position: pos, Token0: t0, Token1: t1}, nil
}

// ownedPositions reads every position of owner, optionally restricted to a pair
func ownedPositions(ctx context.Context, owner common.Address, npm positionManager, tokens *tokenCache, pair *poolPair) ([]*PositionView, error) {
	ids, err := npm.OwnedTokenIDs(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]*PositionView, 0, len(ids))
	for _, id := range ids {
		pos, err := npm.Positions(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read position %s: %w", id, err)
		}
		pos.Owner = owner
		if pair != nil && !pos.MatchesPair(pair.Token0, pair.Token1) {
			continue
		}
		if pair != nil && pair.Fee != 0 && pos.Fee != pair.Fee {
			continue
		}
		view, err := tokens.view(ctx, pos)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ownedPosition loads one position and checks that the sender owns it
func ownedPosition(ctx context.Context, env *Env, npm positionManager, tokens *tokenCache, tokenID *big.Int) (*PositionView, error) {
	pos, err := npm.LoadPosition(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if pos.Owner != env.Sender {
		return nil, fmt.Errorf("%w: token id %s is owned by %s", domain.ErrNotPositionOwner, tokenID, pos.Owner.Hex())
	}
	return tokens.view(ctx, pos)
}

// pickPositions resolves explicit token ids or asks the selector
func pickPositions(ctx context.Context, env *Env, selector PositionSelector, npm positionManager, tokens *tokenCache, pair *poolPair, tokenIDs []*big.Int, multi bool, prompt string) ([]*PositionView, error) {
	if len(tokenIDs) > 0 {
		views := make([]*PositionView, 0, len(tokenIDs))
		for _, id := range lo.UniqBy(tokenIDs, func(id *big.Int) string { return id.String() }) {
			view, err := ownedPosition(ctx, env, npm, tokens, id)
			if err != nil {
				return nil, err
			}
			views = append(views, view)
		}
		return views, nil
	}

	candidates, err := ownedPositions(ctx, env.Sender, npm, tokens, pair)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s holds no positions on this pool", domain.ErrPositionNotFound, env.Sender.Hex())
	}
	if selector == nil {
		return nil, errors.New("no token id given and interactive selection is unavailable")
	}

	env.Pause(ctx)
	if multi {
		return selector.SelectPositions(ctx, candidates, prompt)
	}
	view, err := selector.SelectPosition(ctx, candidates, prompt)
	if err != nil {
		return nil, err
	}
	return []*PositionView{view}, nil
}

// ListPositionsParams contains parameters for listing positions
type ListPositionsParams struct {
	// Manifest restricts the listing to its token pair when it exists
	Manifest string
	// Owner lists another account without a signing key. Zero means the sender.
	Owner common.Address
}

// ListPositionsResult contains the sender's positions
type ListPositionsResult struct {
	OperationSummary
	Owner     common.Address  `json:"owner"`
	Positions []*PositionView `json:"positions"`
}

// ListPositions enumerates the positions owned by the sender
type ListPositions struct {
	runner *Runner
}

// NewListPositions creates a new ListPositions use case
func NewListPositions(runner *Runner) *ListPositions {
	return &ListPositions{runner: runner}
}

// Run executes the listing
func (uc *ListPositions) Run(ctx context.Context, params ListPositionsParams) (*ListPositionsResult, error) {
	result := &ListPositionsResult{}
	spec := OperationSpec{
		Name:     "liquidity positions",
		Requires: []ManifestRequirement{coreRequirement},
		ReadOnly: params.Owner != (common.Address{}),
	}
	if params.Manifest != "" {
		spec.Requires = append(spec.Requires, ManifestRequirement{Name: params.Manifest, Optional: true})
	}

	env, err := uc.runner.Run(ctx, spec, func(ctx context.Context, env *Env) error {
		result.Owner = params.Owner
		if result.Owner == (common.Address{}) {
			result.Owner = env.Sender
		}
		npmContract, err := protocolContract(ctx, env, params.Manifest, models.RolePositionManager, ABIPositionManager)
		if err != nil {
			return err
		}

		var pair *poolPair
		if m, ok := env.Manifest(params.Manifest); ok && params.Manifest != "" {
			if _, hasA := m.Address(models.RoleTokenA); hasA {
				if pair, err = loadPoolPair(ctx, env, params.Manifest); err != nil {
					return err
				}
			}
		}
		var known []models.Token
		if pair != nil {
			known = []models.Token{pair.TokenAMeta, pair.TokenBMeta}
		}
		result.Positions, err = ownedPositions(ctx, result.Owner, positionManager{npmContract}, newTokenCache(env, known...), pair)
		return err
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}
