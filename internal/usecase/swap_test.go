package usecase_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

var (
	testRouter = common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564")
	testQuoter = common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6")
)

// swapFixture is a recorded pool whose router pays out 99% of the input
type swapFixture struct {
	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	tokens     map[common.Address]*fakeContract
	swaps      []uniswapv3.ExactInputSingleParams
}

func newSwapFixture(h *harness) *swapFixture {
	h.cfg.Network.Contracts.SwapRouter = testRouter
	h.store.put("localhost", models.Pool2Manifest, poolManifest(true))
	h.pool(testPool, &poolState{sqrtPriceX96: new(big.Int).Set(uniswapv3.Q96)})

	fx := &swapFixture{
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		tokens:     make(map[common.Address]*fakeContract),
	}
	for addr, symbol := range map[common.Address]string{testTokenA: "HE", testTokenB: "SHE"} {
		fx.balances[addr] = map[common.Address]*big.Int{testSender: ether(10_000)}
		fx.tokens[addr] = h.token(addr, symbol, fx.balances[addr])
		fx.allowances[addr] = approvable(fx.tokens[addr])
	}

	h.binder.contract(testRouter).sends["exactInputSingle"] = func(args ...any) ([]any, error) {
		p := args[0].(uniswapv3.ExactInputSingleParams)
		fx.swaps = append(fx.swaps, p)
		in, out := fx.balances[p.TokenIn], fx.balances[p.TokenOut]
		in[testSender] = new(big.Int).Sub(in[testSender], p.AmountIn)
		paid := new(big.Int).Div(new(big.Int).Mul(p.AmountIn, big.NewInt(99)), big.NewInt(100))
		out[testSender] = new(big.Int).Add(out[testSender], paid)
		return nil, nil
	}
	return fx
}

func TestSwap(t *testing.T) {
	tests := []struct {
		name         string
		allowance    *big.Int
		reverse      bool
		minOut       string
		wantIn       common.Address
		wantOut      common.Address
		wantApproved bool
		wantMinOut   *big.Int
		wantTxs      []string
	}{
		{
			name:         "approves the router when nothing is allowed",
			wantIn:       testTokenA,
			wantOut:      testTokenB,
			wantApproved: true,
			wantMinOut:   new(big.Int),
			wantTxs:      []string{"approve HE", "swap HE for SHE"},
		},
		{
			name:         "approves when the allowance falls short",
			allowance:    ether(999),
			wantIn:       testTokenA,
			wantOut:      testTokenB,
			wantApproved: true,
			wantMinOut:   new(big.Int),
			wantTxs:      []string{"approve HE", "swap HE for SHE"},
		},
		{
			name:       "skips approval when the allowance covers the amount",
			allowance:  ether(1000),
			wantIn:     testTokenA,
			wantOut:    testTokenB,
			wantMinOut: new(big.Int),
			wantTxs:    []string{"swap HE for SHE"},
		},
		{
			name:         "minimum output in whole tokens",
			minOut:       "990.5",
			wantIn:       testTokenA,
			wantOut:      testTokenB,
			wantApproved: true,
			wantMinOut:   new(big.Int).Add(ether(990), big.NewInt(5e17)),
			wantTxs:      []string{"approve HE", "swap HE for SHE"},
		},
		{
			name:         "reverse sells token B",
			reverse:      true,
			wantIn:       testTokenB,
			wantOut:      testTokenA,
			wantApproved: true,
			wantMinOut:   new(big.Int),
			wantTxs:      []string{"approve SHE", "swap SHE for HE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			fx := newSwapFixture(h)
			if tt.allowance != nil {
				fx.allowances[tt.wantIn][testRouter] = tt.allowance
			}

			params := usecase.DefaultSwapParams()
			params.Quote = false
			params.Reverse = tt.reverse
			params.MinOut = tt.minOut
			start := time.Now()
			result, err := usecase.NewSwap(h.runner()).Run(context.Background(), params)
			end := time.Now()
			require.NoError(t, err)

			assert.Equal(t, tt.wantTxs, txLabels(result.Transactions))
			assert.Equal(t, tt.wantApproved, result.Approved)
			if tt.wantApproved {
				assert.Equal(t, uniswapv3.MaxUint256.String(), fx.allowances[tt.wantIn][testRouter].String())
			}
			assert.Empty(t, fx.tokens[tt.wantOut].sent, "the output token is never approved")

			require.Len(t, fx.swaps, 1)
			swap := fx.swaps[0]
			assert.Equal(t, tt.wantIn, swap.TokenIn)
			assert.Equal(t, tt.wantOut, swap.TokenOut)
			assert.Equal(t, int64(500), swap.Fee.Int64())
			assert.Equal(t, testSender, swap.Recipient)
			assert.Equal(t, ether(1000).String(), swap.AmountIn.String())
			assert.Equal(t, tt.wantMinOut.String(), swap.AmountOutMinimum.String())
			assert.Zero(t, swap.SqrtPriceLimitX96.Sign())

			deadline := swap.Deadline.Int64()
			assert.GreaterOrEqual(t, deadline, start.Add(10*time.Minute).Unix())
			assert.LessOrEqual(t, deadline, end.Add(10*time.Minute).Unix())

			assert.Equal(t, "-"+ether(1000).String(), result.BalanceIn.Delta().String())
			assert.Equal(t, ether(990).String(), result.BalanceOut.Delta().String())
			assert.Empty(t, result.Warnings)
		})
	}
}

func TestSwap_Quote(t *testing.T) {
	tests := []struct {
		name       string
		quoter     bool
		quoteErr   error
		wantQuoted *big.Int
	}{
		{name: "quoted by the configured quoter", quoter: true, wantQuoted: ether(995)},
		{name: "failing quoter only skips the estimate", quoter: true, quoteErr: assert.AnError},
		{name: "no quoter on the network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			fx := newSwapFixture(h)
			if tt.quoter {
				h.cfg.Network.Contracts.Quoter = testQuoter
				h.binder.contract(testQuoter).calls["quoteExactInputSingle"] = func(args ...any) ([]any, error) {
					if tt.quoteErr != nil {
						return nil, tt.quoteErr
					}
					assert.Equal(t, testTokenA, args[0])
					assert.Equal(t, testTokenB, args[1])
					return []any{ether(995)}, nil
				}
			}

			result, err := usecase.NewSwap(h.runner()).Run(context.Background(), usecase.DefaultSwapParams())
			require.NoError(t, err)
			require.Len(t, fx.swaps, 1)
			if tt.wantQuoted == nil {
				assert.Nil(t, result.QuotedOut)
			} else {
				require.NotNil(t, result.QuotedOut)
				assert.Equal(t, tt.wantQuoted.String(), result.QuotedOut.String())
			}
		})
	}
}

func TestSwap_RejectsZeroAmount(t *testing.T) {
	h := newHarness()
	fx := newSwapFixture(h)

	params := usecase.DefaultSwapParams()
	params.Amount = "0"
	_, err := usecase.NewSwap(h.runner()).Run(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "swap amount must be positive")
	assert.Empty(t, fx.swaps)
	assert.Zero(t, h.chain.nonce)
}
