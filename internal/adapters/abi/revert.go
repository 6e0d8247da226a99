package abi

import (
	"bytes"
	"errors"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/v3ops/internal/domain"
)

// DecodeRevert turns an eth_call or eth_estimateGas failure into a RevertError.
// Errors that carry no revert information are returned unchanged.
func DecodeRevert(err error, contractABI *ethabi.ABI, contract, method string) error {
	if err == nil {
		return nil
	}
	data, ok := revertData(err)
	if !ok {
		if strings.Contains(err.Error(), "execution reverted") {
			return &domain.RevertError{Contract: contract, Method: method, Err: err}
		}
		return err
	}

	revert := &domain.RevertError{Contract: contract, Method: method, Data: data, Err: err}
	if reason, uerr := ethabi.UnpackRevert(data); uerr == nil {
		revert.Reason = reason
		return revert
	}
	if contractABI != nil && len(data) >= 4 {
		for name, abiErr := range contractABI.Errors {
			if !bytes.Equal(abiErr.ID[:4], data[:4]) {
				continue
			}
			revert.ErrorName = name
			if args, uerr := abiErr.Inputs.Unpack(data[4:]); uerr == nil {
				revert.Args = args
			}
			return revert
		}
	}
	return revert
}

// revertData extracts the return data the node attached to the error
func revertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	switch v := dataErr.ErrorData().(type) {
	case string:
		data, derr := hexutil.Decode(v)
		if derr != nil || len(data) == 0 {
			return nil, false
		}
		return data, true
	case []byte:
		return v, len(v) > 0
	}
	return nil, false
}
