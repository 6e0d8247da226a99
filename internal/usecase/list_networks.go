package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

// Where a protocol address was found
const (
	// SourceDeployed addresses come from the core manifest written by deploy core
	SourceDeployed = "deployed"
	// SourceKnown addresses are the network's configured defaults
	SourceKnown = "known"
)

// ProtocolAddress is the address one protocol role resolves to on a network
type ProtocolAddress struct {
	Role    string         `json:"role"`
	Address common.Address `json:"address"`
	Source  string         `json:"source"`
}

// protocolRoles are the roles operations resolve through protocolContract, in display order
var protocolRoles = []string{models.RoleFactory, models.RolePositionManager, models.RoleSwapRouter, roleQuoter, models.RoleWETH9}

// tradingRoles must all resolve before pools can be created and traded
var tradingRoles = []string{models.RoleFactory, models.RolePositionManager, models.RoleSwapRouter}

// protocolAddresses resolves the protocol roles of a network in the order operations do:
// the core manifest first, then the network defaults. Unresolved roles are left out.
func protocolAddresses(ctx context.Context, store ManifestStore, network *config.Network) ([]ProtocolAddress, error) {
	core, err := store.Load(ctx, network.Name, models.CoreManifest)
	if err != nil {
		if !errors.Is(err, domain.ErrMissingManifest) {
			return nil, fmt.Errorf("failed to read core manifest of %s: %w", network.Name, err)
		}
		core = nil
	}

	resolved := make([]ProtocolAddress, 0, len(protocolRoles))
	for _, role := range protocolRoles {
		if core != nil {
			if addr, ok := core.Address(role); ok {
				resolved = append(resolved, ProtocolAddress{Role: role, Address: addr, Source: SourceDeployed})
				continue
			}
		}
		if addr := knownContract(network.Contracts, role); addr != (common.Address{}) {
			resolved = append(resolved, ProtocolAddress{Role: role, Address: addr, Source: SourceKnown})
		}
	}
	return resolved, nil
}

// tradable reports whether every trading role resolved
func tradable(resolved []ProtocolAddress) bool {
	have := make(map[string]bool, len(resolved))
	for _, p := range resolved {
		have[p.Role] = true
	}
	for _, role := range tradingRoles {
		if !have[role] {
			return false
		}
	}
	return true
}

// ListNetworksResult contains every network with its protocol deployment
type ListNetworksResult struct {
	Networks []NetworkStatus `json:"networks"`
	// Current is the network selected for this invocation
	Current string `json:"current"`
}

// NetworkStatus is one network and the protocol addresses operations would use on it
type NetworkStatus struct {
	Name        string            `json:"name"`
	ChainID     uint64            `json:"chainId,omitempty"`
	RPCURL      string            `json:"rpcUrl,omitempty"`
	ExplorerURL string            `json:"explorerUrl,omitempty"`
	BuiltIn     bool              `json:"builtIn,omitempty"`
	Protocol    []ProtocolAddress `json:"protocol,omitempty"`
	// Tradable is true when the factory, position manager and router all resolve
	Tradable bool  `json:"tradable"`
	Error    error `json:"-"`
}

// ListNetworks lists the networks and where the Uniswap V3 contracts live on each
type ListNetworks struct {
	resolver NetworkResolver
	store    ManifestStore
	current  string
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(resolver NetworkResolver, store ManifestStore, current CurrentNetwork) *ListNetworks {
	return &ListNetworks{resolver: resolver, store: store, current: string(current)}
}

// CurrentNetwork is the name of the network selected by flags or config
type CurrentNetwork string

// Run resolves every network. Failures are reported per network, never returned.
func (uc *ListNetworks) Run(ctx context.Context) (*ListNetworksResult, error) {
	names := uc.resolver.GetNetworks(ctx)
	result := &ListNetworksResult{Current: uc.current, Networks: make([]NetworkStatus, 0, len(names))}

	for _, name := range names {
		status := NetworkStatus{Name: name}
		network, err := uc.resolver.ResolveNetwork(ctx, name)
		if err != nil {
			status.Error = err
			result.Networks = append(result.Networks, status)
			continue
		}
		status.ChainID = network.ChainID
		status.RPCURL = network.RPCURL
		status.ExplorerURL = network.ExplorerURL
		status.BuiltIn = network.BuiltIn

		if status.Protocol, err = protocolAddresses(ctx, uc.store, network); err != nil {
			status.Error = err
		}
		status.Tradable = tradable(status.Protocol)
		result.Networks = append(result.Networks, status)
	}
	return result, nil
}
