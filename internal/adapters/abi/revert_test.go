package abi

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/v3ops/internal/domain"
)

// rpcDataError mimics the JSON-RPC error a node returns for a reverted call
type rpcDataError struct {
	msg  string
	data any
}

func (e rpcDataError) Error() string  { return e.msg }
func (e rpcDataError) ErrorData() any { return e.data }

func selector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

func encodeArgs(t *testing.T, types []string, values ...any) []byte {
	t.Helper()
	args := make(ethabi.Arguments, len(types))
	for i, typ := range types {
		ty, err := ethabi.NewType(typ, "", nil)
		require.NoError(t, err)
		args[i] = ethabi.Argument{Type: ty}
	}
	out, err := args.Pack(values...)
	require.NoError(t, err)
	return out
}

func TestDecodeRevert(t *testing.T) {
	tokenABI, err := ethabi.JSON(strings.NewReader(`[
		{"type":"error","name":"ERC20InsufficientBalance","inputs":[
			{"name":"sender","type":"address"},{"name":"balance","type":"uint256"},{"name":"needed","type":"uint256"}]}
	]`))
	require.NoError(t, err)

	holder := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	customData := append(selector("ERC20InsufficientBalance(address,uint256,uint256)"),
		encodeArgs(t, []string{"address", "uint256", "uint256"}, holder, big.NewInt(5), big.NewInt(10))...)
	reasonData := append(selector("Error(string)"), encodeArgs(t, []string{"string"}, "STF")...)

	tests := []struct {
		name      string
		err       error
		wantType  bool
		reason    string
		errorName string
	}{
		{
			name:     "error string",
			err:      rpcDataError{msg: "execution reverted: STF", data: hexutil.Encode(reasonData)},
			wantType: true,
			reason:   "STF",
		},
		{
			name:      "custom error",
			err:       rpcDataError{msg: "execution reverted", data: hexutil.Encode(customData)},
			wantType:  true,
			errorName: "ERC20InsufficientBalance",
		},
		{
			name:     "unknown selector keeps raw data",
			err:      rpcDataError{msg: "execution reverted", data: "0xdeadbeef"},
			wantType: true,
		},
		{
			name:     "revert without data",
			err:      errors.New("execution reverted"),
			wantType: true,
		},
		{
			name: "transport error passes through",
			err:  errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeRevert(tt.err, &tokenABI, "TokenA", "transfer")

			var revert *domain.RevertError
			if !tt.wantType {
				assert.False(t, errors.As(got, &revert))
				assert.Equal(t, tt.err, got)
				return
			}
			require.ErrorAs(t, got, &revert)
			assert.Equal(t, "TokenA", revert.Contract)
			assert.Equal(t, "transfer", revert.Method)
			assert.Equal(t, tt.reason, revert.Reason)
			assert.Equal(t, tt.errorName, revert.ErrorName)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestDecodeRevert_CustomErrorArgs(t *testing.T) {
	tokenABI, err := ethabi.JSON(strings.NewReader(`[
		{"type":"error","name":"OwnableUnauthorizedAccount","inputs":[{"name":"account","type":"address"}]}
	]`))
	require.NoError(t, err)

	account := common.HexToAddress("0x0b511e0C4890881352e00f3E48f5B6C0D08B8A9B")
	data := append(selector("OwnableUnauthorizedAccount(address)"), encodeArgs(t, []string{"address"}, account)...)

	got := DecodeRevert(rpcDataError{msg: "execution reverted", data: hexutil.Encode(data)}, &tokenABI, "TokenA", "openTrading")

	var revert *domain.RevertError
	require.ErrorAs(t, got, &revert)
	require.Len(t, revert.Args, 1)
	assert.Equal(t, account, revert.Args[0])
	assert.Contains(t, revert.Error(), "OwnableUnauthorizedAccount")
}

func TestDecodeRevert_Nil(t *testing.T) {
	assert.NoError(t, DecodeRevert(nil, nil, "", ""))
}
