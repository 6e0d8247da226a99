package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RuntimeConfig represents the complete runtime configuration.
// It is built once per invocation and handed to use cases by value.
type RuntimeConfig struct {
	// Core settings
	ProjectRoot    string
	DataDir        string
	DeploymentsDir string
	ArtifactDirs   []string

	// Context settings
	Network *Network

	// Signing key as hex, empty for read-only use
	PrivateKey string `json:"-"`

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration
	// Strict turns verification mismatches into errors
	Strict bool

	MetricsFile string
	JournalPath string

	// ConfigSource is the project file the settings were read from, empty for defaults
	ConfigSource string
}

// Network represents network configuration
type Network struct {
	Name        string         `json:"name"`
	ChainID     uint64         `json:"chainId"`
	RPCURL      string         `json:"rpcUrl"`
	ExplorerURL string         `json:"explorerUrl,omitempty"`
	Contracts   KnownContracts `json:"contracts"`
	// BuiltIn is true for networks that come with the binary
	BuiltIn bool `json:"builtIn,omitempty"`
}

// KnownContracts are protocol addresses already deployed on a network
type KnownContracts struct {
	Factory         common.Address `json:"factory"`
	PositionManager common.Address `json:"positionManager"`
	SwapRouter      common.Address `json:"swapRouter"`
	Quoter          common.Address `json:"quoter"`
	WETH9           common.Address `json:"weth9"`
}

// HasSigner reports whether a private key is configured
func (c RuntimeConfig) HasSigner() bool {
	return c.PrivateKey != ""
}

// Validate checks the settings every command relies on
func (c RuntimeConfig) Validate() error {
	if c.ProjectRoot == "" {
		return fmt.Errorf("project root is not set")
	}
	if c.DeploymentsDir == "" {
		return fmt.Errorf("deployments directory is not set")
	}
	if c.Network == nil {
		return fmt.Errorf("no network selected")
	}
	if c.Network.Name == "" {
		return fmt.Errorf("network name is empty")
	}
	if c.Network.RPCURL == "" {
		return fmt.Errorf("network %s has no RPC URL (set rpc_url in v3ops.toml or %s)",
			c.Network.Name, RPCEnvVarName(c.Network.Name))
	}
	if c.PrivateKey != "" {
		if _, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x")); err != nil {
			return fmt.Errorf("invalid private key: %w", err)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// RPCEnvVarName is the conventional env var for a network's RPC URL.
// Examples: sepolia -> SEPOLIA_RPC_URL, base-sepolia -> BASE_SEPOLIA_RPC_URL
func RPCEnvVarName(networkName string) string {
	name := strings.ToUpper(networkName)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_RPC_URL"
}
