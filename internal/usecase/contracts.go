package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// ABI names shipped with the binary
const (
	ABIFactory         = "UniswapV3Factory"
	ABIPool            = "UniswapV3Pool"
	ABIPositionManager = "NonfungiblePositionManager"
	ABISwapRouter      = "SwapRouter"
	ABIQuoter          = "Quoter"
	ABIERC20           = "ERC20"
	ABIWETH9           = "WETH9"
	ABIToken           = "GuoWenCoin"
)

// call1 runs a view method and returns its single output
func call1(ctx context.Context, c Contract, method string, args ...any) (any, error) {
	out, err := c.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s.%s returned no values", c.Name(), method)
	}
	return out[0], nil
}

func callBig(ctx context.Context, c Contract, method string, args ...any) (*big.Int, error) {
	v, err := call1(ctx, c, method, args...)
	if err != nil {
		return nil, err
	}
	return toBig(v)
}

func callAddress(ctx context.Context, c Contract, method string, args ...any) (common.Address, error) {
	v, err := call1(ctx, c, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s.%s: unexpected %T", c.Name(), method, v)
	}
	return addr, nil
}

// toBig converts any integer value go-ethereum unpacks into a big.Int
func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return new(big.Int).Set(n), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	default:
		return nil, fmt.Errorf("unexpected numeric type %T", v)
	}
}

func toInt32(v any) (int32, error) {
	b, err := toBig(v)
	if err != nil {
		return 0, err
	}
	if !b.IsInt64() || b.Int64() < -1<<31 || b.Int64() > 1<<31-1 {
		return 0, fmt.Errorf("value %s overflows int32", b)
	}
	return int32(b.Int64()), nil
}

func toUint32(v any) (uint32, error) {
	b, err := toBig(v)
	if err != nil {
		return 0, err
	}
	if !b.IsUint64() || b.Uint64() > 1<<32-1 {
		return 0, fmt.Errorf("value %s overflows uint32", b)
	}
	return uint32(b.Uint64()), nil
}

// erc20 wraps the token methods the operations read
type erc20 struct {
	Contract
}

func (t erc20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return callBig(ctx, t, "balanceOf", owner)
}

func (t erc20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return callBig(ctx, t, "allowance", owner, spender)
}

func (t erc20) Metadata(ctx context.Context) (models.Token, error) {
	token := models.Token{Address: t.Address()}
	sym, err := call1(ctx, t, "symbol")
	if err != nil {
		return token, fmt.Errorf("failed to read symbol of %s: %w", t.Address().Hex(), err)
	}
	if s, ok := sym.(string); ok {
		token.Symbol = s
	}
	dec, err := callBig(ctx, t, "decimals")
	if err != nil {
		return token, fmt.Errorf("failed to read decimals of %s: %w", t.Address().Hex(), err)
	}
	token.Decimals = uint8(dec.Uint64())
	return token, nil
}

// positionManager wraps the NonfungiblePositionManager reads
type positionManager struct {
	Contract
}

func (p positionManager) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return callAddress(ctx, p, "ownerOf", tokenID)
}

func (p positionManager) Positions(ctx context.Context, tokenID *big.Int) (*models.Position, error) {
	out, err := p.Call(ctx, "positions", tokenID)
	if err != nil {
		return nil, err
	}
	if len(out) < 12 {
		return nil, fmt.Errorf("positions(%s) returned %d values", tokenID, len(out))
	}

	pos := &models.Position{TokenID: new(big.Int).Set(tokenID)}
	var ok bool
	if pos.Operator, ok = out[1].(common.Address); !ok {
		return nil, fmt.Errorf("positions: unexpected operator type %T", out[1])
	}
	if pos.Token0, ok = out[2].(common.Address); !ok {
		return nil, fmt.Errorf("positions: unexpected token0 type %T", out[2])
	}
	if pos.Token1, ok = out[3].(common.Address); !ok {
		return nil, fmt.Errorf("positions: unexpected token1 type %T", out[3])
	}
	if pos.Fee, err = toUint32(out[4]); err != nil {
		return nil, err
	}
	if pos.TickLower, err = toInt32(out[5]); err != nil {
		return nil, err
	}
	if pos.TickUpper, err = toInt32(out[6]); err != nil {
		return nil, err
	}
	bigs := []**big.Int{&pos.Liquidity, &pos.FeeGrowthInside0LastX128, &pos.FeeGrowthInside1LastX128, &pos.TokensOwed0, &pos.TokensOwed1}
	for i, dst := range bigs {
		if *dst, err = toBig(out[7+i]); err != nil {
			return nil, err
		}
	}
	return pos, nil
}

// OwnedTokenIDs enumerates the position NFTs held by owner
func (p positionManager) OwnedTokenIDs(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	count, err := callBig(ctx, p, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	ids := make([]*big.Int, 0, count.Int64())
	for i := int64(0); i < count.Int64(); i++ {
		id, err := callBig(ctx, p, "tokenOfOwnerByIndex", owner, big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("failed to read position %d of %s: %w", i, owner.Hex(), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadPosition reads a position and its owner. A reverted ownerOf, which is how the
// position manager rejects an unknown token id, yields ErrPositionNotFound.
func (p positionManager) LoadPosition(ctx context.Context, tokenID *big.Int) (*models.Position, error) {
	owner, err := p.OwnerOf(ctx, tokenID)
	if err != nil {
		var revert *domain.RevertError
		if errors.As(err, &revert) {
			return nil, fmt.Errorf("%w: token id %s: %v", domain.ErrPositionNotFound, tokenID, err)
		}
		return nil, fmt.Errorf("failed to read owner of position %s: %w", tokenID, err)
	}
	pos, err := p.Positions(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	pos.Owner = owner
	return pos, nil
}

// roleQuoter is never written by deploy core, only configured per network
const roleQuoter = "Quoter"

// knownContract returns the configured network address for a protocol role
func knownContract(known config.KnownContracts, role string) common.Address {
	switch role {
	case models.RoleFactory:
		return known.Factory
	case models.RolePositionManager:
		return known.PositionManager
	case models.RoleSwapRouter:
		return known.SwapRouter
	case models.RoleWETH9:
		return known.WETH9
	case roleQuoter:
		return known.Quoter
	}
	return common.Address{}
}

// protocolContract binds a protocol role found in the named manifest, then in the core
// deployment manifest, then among the network's known addresses
func protocolContract(ctx context.Context, env *Env, manifestName, role, abiName string) (Contract, error) {
	for _, name := range []string{manifestName, models.CoreManifest} {
		if m, ok := env.Manifest(name); ok {
			if _, ok := m.Address(role); ok {
				return env.Bind(ctx, name, role, abiName)
			}
		}
	}
	if addr := knownContract(env.Network.Contracts, role); addr != (common.Address{}) {
		env.runner.log.Debug("using network default address", "role", role, "address", addr)
		return env.ContractAt(abiName, addr)
	}
	return nil, domain.MissingContractError{Manifest: manifestName, Role: role}
}

// coreRequirement lets operations fall back to addresses from deploy core
var coreRequirement = ManifestRequirement{Name: models.CoreManifest, Optional: true}

// readSlot0 reads the pool's current price and tick
func readSlot0(ctx context.Context, pool Contract) (*models.Slot0, error) {
	out, err := pool.Call(ctx, "slot0")
	if err != nil {
		return nil, fmt.Errorf("failed to read slot0 of %s: %w", pool.Address().Hex(), err)
	}
	if len(out) < 7 {
		return nil, fmt.Errorf("slot0 returned %d values", len(out))
	}
	slot0 := &models.Slot0{}
	if slot0.SqrtPriceX96, err = toBig(out[0]); err != nil {
		return nil, err
	}
	if slot0.Tick, err = toInt32(out[1]); err != nil {
		return nil, err
	}
	u16 := []*uint16{&slot0.ObservationIndex, &slot0.ObservationCardinality, &slot0.ObservationCardinalityNext}
	for i, dst := range u16 {
		v, err := toBig(out[2+i])
		if err != nil {
			return nil, err
		}
		*dst = uint16(v.Uint64())
	}
	fp, err := toBig(out[5])
	if err != nil {
		return nil, err
	}
	slot0.FeeProtocol = uint8(fp.Uint64())
	slot0.Unlocked, _ = out[6].(bool)
	return slot0, nil
}

// approve sets an allowance and waits for it to be mined
func approve(ctx context.Context, env *Env, token erc20, symbol string, spender common.Address, amount *big.Int) error {
	_, err := env.Transact(ctx, token, "approve "+symbol, TxOptions{}, "approve", spender, amount)
	return err
}

// approveIfNeeded approves MaxUint256 only when the allowance is below amount
func approveIfNeeded(ctx context.Context, env *Env, token erc20, symbol string, spender common.Address, amount *big.Int) (bool, error) {
	allowance, err := token.Allowance(ctx, env.Sender, spender)
	if err != nil {
		return false, fmt.Errorf("failed to read %s allowance: %w", symbol, err)
	}
	if allowance.Cmp(amount) >= 0 {
		return false, nil
	}
	return true, approve(ctx, env, token, symbol, spender, uniswapv3.MaxUint256)
}

// findEvent returns the first decoded event with the given name
func findEvent(events []*models.DecodedEvent, name string) *models.DecodedEvent {
	for _, ev := range events {
		if ev.Name == name {
			return ev
		}
	}
	return nil
}
