package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// parseAddress parses an optional hex address flag
func parseAddress(flag, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid --%s: %q is not an address", flag, value)
	}
	return common.HexToAddress(value), nil
}

// parseAddresses parses a list of hex addresses
func parseAddresses(flag string, values []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(values))
	for _, v := range values {
		addr, err := parseAddress(flag, v)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// parseBigInt parses an optional decimal or 0x-prefixed integer flag
func parseBigInt(flag, value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(value, 0)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid --%s: %q is not a non-negative integer", flag, value)
	}
	return n, nil
}

// parseTokenIDs parses position token ids
func parseTokenIDs(values []string) ([]*big.Int, error) {
	ids := make([]*big.Int, 0, len(values))
	for _, v := range values {
		id, err := parseBigInt("token-id", v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return lo.UniqBy(ids, func(id *big.Int) string { return id.String() }), nil
}

// parseEventKinds maps case-insensitive event names to pool event kinds
func parseEventKinds(values []string) ([]models.PoolEventKind, error) {
	known := []models.PoolEventKind{models.PoolEventSwap, models.PoolEventMint, models.PoolEventBurn, models.PoolEventCollect}
	kinds := make([]models.PoolEventKind, 0, len(values))
	for _, v := range values {
		kind, ok := lo.Find(known, func(k models.PoolEventKind) bool {
			return strings.EqualFold(string(k), strings.TrimSpace(v))
		})
		if !ok {
			return nil, fmt.Errorf("unknown event %q (expected one of %s)", v,
				strings.Join(lo.Map(known, func(k models.PoolEventKind, _ int) string { return strings.ToLower(string(k)) }), ", "))
		}
		kinds = append(kinds, kind)
	}
	return lo.Uniq(kinds), nil
}

// parseRangeMode accepts the range modes pool create can derive from the current tick
func parseRangeMode(value string) (uniswapv3.RangeMode, error) {
	switch mode := uniswapv3.RangeMode(strings.ToLower(value)); mode {
	case uniswapv3.RangeTickOffset, uniswapv3.RangeSpacing:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --range-mode %q (expected %s or %s)", value, uniswapv3.RangeTickOffset, uniswapv3.RangeSpacing)
	}
}
