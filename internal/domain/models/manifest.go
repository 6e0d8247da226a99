package models

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Contract roles recorded in manifests
const (
	RoleFactory            = "UniswapV3Factory"
	RoleNFTDescriptor      = "NFTDescriptor"
	RolePositionDescriptor = "NonfungibleTokenPositionDescriptor"
	RolePositionManager    = "NonfungiblePositionManager"
	RoleSwapRouter         = "SwapRouter"
	RoleWETH9              = "WETH9"
	RoleTokenA             = "TokenA"
	RoleTokenB             = "TokenB"
	RolePool               = "Pool"
)

// Manifest names used by the commands
const (
	CoreManifest   = "deployment"
	WETHManifest   = "weth"
	PoolManifest   = "pool"
	Pool2Manifest  = "pool2"
	TokensManifest = "daibi2"
)

// Manifest is the persisted record of contracts deployed on one network
type Manifest struct {
	Network   string                     `json:"network"`
	ChainID   uint64                     `json:"chainId"`
	Deployer  string                     `json:"deployer"`
	Timestamp time.Time                  `json:"timestamp"`
	Contracts map[string]*ContractRecord `json:"contracts"`
}

// ContractRecord is one deployed contract within a manifest
type ContractRecord struct {
	Address              string  `json:"address"`
	ABI                  *ABIRef `json:"abi,omitempty"`
	TransactionHash      string  `json:"transactionHash,omitempty"`
	Token0               string  `json:"token0,omitempty"`
	Token1               string  `json:"token1,omitempty"`
	Fee                  uint32  `json:"fee,omitempty"`
	LiquidityTransaction string  `json:"liquidityTransaction,omitempty"`
}

// NewManifest creates an empty manifest stamped with the current time
func NewManifest(network string, chainID uint64, deployer common.Address) *Manifest {
	return &Manifest{
		Network:   network,
		ChainID:   chainID,
		Deployer:  deployer.Hex(),
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Contracts: make(map[string]*ContractRecord),
	}
}

// Contract returns the record for a role, or nil
func (m *Manifest) Contract(role string) *ContractRecord {
	if m == nil || m.Contracts == nil {
		return nil
	}
	return m.Contracts[role]
}

// Address returns the parsed address of a role and whether it is present
func (m *Manifest) Address(role string) (common.Address, bool) {
	rec := m.Contract(role)
	if rec == nil || !common.IsHexAddress(rec.Address) {
		return common.Address{}, false
	}
	return common.HexToAddress(rec.Address), true
}

// Set records a contract under a role
func (m *Manifest) Set(role string, rec *ContractRecord) {
	if m.Contracts == nil {
		m.Contracts = make(map[string]*ContractRecord)
	}
	m.Contracts[role] = rec
}

// Roles returns the recorded roles in sorted order
func (m *Manifest) Roles() []string {
	return slices.Sorted(maps.Keys(m.Contracts))
}

// Clone returns a deep copy
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	out := *m
	out.Contracts = make(map[string]*ContractRecord, len(m.Contracts))
	for role, rec := range m.Contracts {
		if rec == nil {
			out.Contracts[role] = nil
			continue
		}
		c := *rec
		if rec.ABI != nil {
			ref := *rec.ABI
			ref.Inline = bytes.Clone(rec.ABI.Inline)
			c.ABI = &ref
		}
		out.Contracts[role] = &c
	}
	return &out
}

// ABIRef points at an interface description. Manifests written by this tool store a
// path relative to the network directory; older manifests embed the ABI array inline.
type ABIRef struct {
	Path   string
	Inline json.RawMessage
}

func (r ABIRef) MarshalJSON() ([]byte, error) {
	if r.Path != "" {
		return json.Marshal(r.Path)
	}
	if len(r.Inline) > 0 {
		return r.Inline, nil
	}
	return []byte("null"), nil
}

func (r *ABIRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if strings.HasPrefix(string(trimmed), `"`) {
		return json.Unmarshal(trimmed, &r.Path)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return err
	}
	r.Inline = buf.Bytes()
	return nil
}
