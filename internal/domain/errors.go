package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrMissingManifest is returned when an operation needs a deployment manifest that was never written
	ErrMissingManifest = errors.New("missing manifest")

	// ErrMissingContract is returned when a manifest lacks a required contract role
	ErrMissingContract = errors.New("missing contract")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidChainID is returned when a chain ID is invalid
	ErrInvalidChainID = errors.New("invalid chain ID")

	// ErrNetworkNotConfigured is returned when a network can't be resolved
	ErrNetworkNotConfigured = errors.New("network not configured")

	// ErrNoSigner is returned when a transaction is requested without a signing key
	ErrNoSigner = errors.New("no signer configured")

	// ErrPositionNotFound is returned when a position token id has no owner
	ErrPositionNotFound = errors.New("position not found")

	// ErrNotPositionOwner is returned when the signer does not own the position
	ErrNotPositionOwner = errors.New("position not owned by signer")

	// ErrNodeNotRunning is returned when a local node command needs a running anvil
	ErrNodeNotRunning = errors.New("node not running")

	// ErrNodeRunning is returned when starting a node that is already running
	ErrNodeRunning = errors.New("node already running")

	// ErrInsufficientBalance is returned when the signer can't cover an amount
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrVerificationMismatch is returned in strict mode when a post-transaction check fails
	ErrVerificationMismatch = errors.New("verification mismatch")

	// ErrTransactionFailed is returned when a mined transaction has a failed status
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrInvalidPrice is returned when a pool price encodes outside the sqrt ratio bounds
	ErrInvalidPrice = errors.New("invalid pool price")
)

// MissingManifestError reports a manifest file that does not exist
type MissingManifestError struct {
	Network string
	Name    string
	Path    string
}

func (e MissingManifestError) Error() string {
	return fmt.Sprintf("deployment manifest %q for network %s not found at %s", e.Name, e.Network, e.Path)
}

func (e MissingManifestError) Is(target error) bool {
	return target == ErrMissingManifest
}

// MissingContractError reports a role absent from a manifest
type MissingContractError struct {
	Manifest string
	Role     string
}

func (e MissingContractError) Error() string {
	return fmt.Sprintf("manifest %q has no %s address", e.Manifest, e.Role)
}

func (e MissingContractError) Is(target error) bool {
	return target == ErrMissingContract
}

// ChainIDMismatchError is returned when the RPC endpoint serves another chain
type ChainIDMismatchError struct {
	Network  string
	Expected uint64
	Actual   uint64
}

func (e ChainIDMismatchError) Error() string {
	return fmt.Sprintf("chain ID mismatch for %s: expected %d, got %d", e.Network, e.Expected, e.Actual)
}

func (e ChainIDMismatchError) Is(target error) bool {
	return target == ErrInvalidChainID
}

// InvalidPriceError reports a price whose sqrtPriceX96 pool.initialize would reject
type InvalidPriceError struct {
	Price        string
	SqrtPriceX96 *big.Int
	Min          *big.Int
	Max          *big.Int
}

func (e InvalidPriceError) Error() string {
	return fmt.Sprintf("price %s encodes to sqrtPriceX96 %s, outside [%s, %s)", e.Price, e.SqrtPriceX96, e.Min, e.Max)
}

func (e InvalidPriceError) Is(target error) bool {
	return target == ErrInvalidPrice
}

// RevertError carries whatever the remote end exposed about a rejected call
type RevertError struct {
	Contract string
	Method   string
	Reason   string
	// ErrorName is set when the revert matched a custom error in the contract ABI
	ErrorName string
	Args      []any
	Data      []byte
	Err       error
}

func (e *RevertError) Error() string {
	var b strings.Builder
	b.WriteString("execution reverted")
	if e.Method != "" {
		fmt.Fprintf(&b, " in %s", e.Method)
	}
	switch {
	case e.ErrorName != "":
		fmt.Fprintf(&b, ": %s%v", e.ErrorName, e.Args)
	case e.Reason != "":
		fmt.Fprintf(&b, ": %s", e.Reason)
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RevertError) Unwrap() error {
	return e.Err
}

// TxFailedError is returned when a transaction was mined with status 0
type TxFailedError struct {
	Label   string
	Hash    string
	GasUsed uint64
}

func (e TxFailedError) Error() string {
	return fmt.Sprintf("%s transaction %s failed (gas used %d)", e.Label, e.Hash, e.GasUsed)
}

func (e TxFailedError) Is(target error) bool {
	return target == ErrTransactionFailed
}

// VerificationWarning describes a post-transaction check that did not match expectations.
// It is reported, not returned, unless strict mode is enabled.
type VerificationWarning struct {
	Subject  string
	Expected string
	Actual   string
}

func (w VerificationWarning) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", w.Subject, w.Expected, w.Actual)
}

// VerificationError wraps warnings promoted to errors in strict mode
type VerificationError struct {
	Warnings []VerificationWarning
}

func (e VerificationError) Error() string {
	parts := make([]string, len(e.Warnings))
	for i, w := range e.Warnings {
		parts[i] = w.String()
	}
	return "verification mismatch: " + strings.Join(parts, "; ")
}

func (e VerificationError) Is(target error) bool {
	return target == ErrVerificationMismatch
}
