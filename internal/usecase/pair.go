package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// poolPair is the token pair and pool recorded in a pool manifest
type poolPair struct {
	TokenA     erc20
	TokenB     erc20
	TokenAMeta models.Token
	TokenBMeta models.Token
	Token0     common.Address
	Token1     common.Address
	Pool       Contract
	Fee        uint32
}

// Meta returns the metadata of token0 or token1 by address
func (p *poolPair) Meta(token common.Address) models.Token {
	if token == p.TokenAMeta.Address {
		return p.TokenAMeta
	}
	return p.TokenBMeta
}

// Sorted returns the metadata in pool order
func (p *poolPair) Sorted() (models.Token, models.Token) {
	return p.Meta(p.Token0), p.Meta(p.Token1)
}

// ERC20 returns the bound token for an address of the pair
func (p *poolPair) ERC20(token common.Address) erc20 {
	if token == p.TokenA.Address() {
		return p.TokenA
	}
	return p.TokenB
}

// pairRequirement is the manifest requirement of operations that work on a recorded pool
func pairRequirement(manifest string, withPool bool) ManifestRequirement {
	roles := []string{models.RoleTokenA, models.RoleTokenB}
	if withPool {
		roles = append(roles, models.RolePool)
	}
	return ManifestRequirement{Name: manifest, Roles: roles}
}

// loadPoolPair binds the tokens and, when recorded, the pool of a manifest
func loadPoolPair(ctx context.Context, env *Env, manifest string) (*poolPair, error) {
	m, ok := env.Manifest(manifest)
	if !ok {
		return nil, domain.MissingContractError{Manifest: manifest, Role: models.RoleTokenA}
	}

	tokenA, err := env.Bind(ctx, manifest, models.RoleTokenA, ABIToken)
	if err != nil {
		return nil, err
	}
	tokenB, err := env.Bind(ctx, manifest, models.RoleTokenB, ABIToken)
	if err != nil {
		return nil, err
	}
	pair := &poolPair{TokenA: erc20{tokenA}, TokenB: erc20{tokenB}}
	pair.Token0, pair.Token1 = uniswapv3.SortTokens(tokenA.Address(), tokenB.Address())

	if pair.TokenAMeta, err = pair.TokenA.Metadata(ctx); err != nil {
		return nil, err
	}
	if pair.TokenBMeta, err = pair.TokenB.Metadata(ctx); err != nil {
		return nil, err
	}

	if _, ok := m.Address(models.RolePool); ok {
		if pair.Pool, err = env.Bind(ctx, manifest, models.RolePool, ABIPool); err != nil {
			return nil, err
		}
		pair.Fee = m.Contract(models.RolePool).Fee
		if pair.Fee == 0 {
			fee, err := callBig(ctx, pair.Pool, "fee")
			if err != nil {
				return nil, fmt.Errorf("pool record has no fee and reading it failed: %w", err)
			}
			pair.Fee = uint32(fee.Uint64())
		}
	}
	return pair, nil
}
