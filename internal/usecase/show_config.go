package usecase

import (
	"context"

	"github.com/trebuchet-org/v3ops/internal/domain/config"
)

// ShowConfigResult is what an operation started now would run with
type ShowConfigResult struct {
	// Config holds the overrides stored in .v3ops/config.local.json
	Config     *config.LocalConfig `json:"local"`
	ConfigPath string              `json:"path"`
	Exists     bool                `json:"exists"`
	// Effective is the configuration this invocation runs with
	Effective *config.RuntimeConfig `json:"effective"`
	// Protocol lists the Uniswap V3 addresses resolved on the effective network
	Protocol []ProtocolAddress `json:"protocol,omitempty"`
	// Manifests are the deployment manifests recorded on the effective network
	Manifests []string `json:"manifests,omitempty"`
}

// ShowConfig reports the local overrides and the protocol deployment they select
type ShowConfig struct {
	store     LocalConfigStore
	manifests ManifestStore
	cfg       *config.RuntimeConfig
}

// NewShowConfig creates a new ShowConfig use case
func NewShowConfig(store LocalConfigStore, manifests ManifestStore, cfg *config.RuntimeConfig) *ShowConfig {
	return &ShowConfig{store: store, manifests: manifests, cfg: cfg}
}

// Run reads the local overrides and resolves the effective network's protocol addresses
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	local, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	result := &ShowConfigResult{
		Config:     local,
		ConfigPath: uc.store.GetPath(),
		Exists:     uc.store.Exists(),
		Effective:  uc.cfg,
	}
	if uc.cfg == nil || uc.cfg.Network == nil {
		return result, nil
	}

	if result.Protocol, err = protocolAddresses(ctx, uc.manifests, uc.cfg.Network); err != nil {
		return nil, err
	}
	if result.Manifests, err = uc.manifests.List(ctx, uc.cfg.Network.Name); err != nil {
		return nil, err
	}
	return result, nil
}
