package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

// ManifestSummary is one manifest found on disk
type ManifestSummary struct {
	Name      string           `json:"name"`
	Path      string           `json:"path"`
	Manifest  *models.Manifest `json:"manifest,omitempty"`
	LoadError error            `json:"-"`
}

// ListManifestsResult contains the manifests of a network
type ListManifestsResult struct {
	Network   string             `json:"network"`
	Manifests []*ManifestSummary `json:"manifests"`
}

// ListManifests lists the deployment manifests of the selected network.
// It never touches the chain.
type ListManifests struct {
	store   ManifestStore
	network string
}

// NewListManifests creates a new ListManifests use case
func NewListManifests(store ManifestStore, network CurrentNetwork) *ListManifests {
	return &ListManifests{store: store, network: string(network)}
}

// Run executes the listing
func (uc *ListManifests) Run(ctx context.Context) (*ListManifestsResult, error) {
	names, err := uc.store.List(ctx, uc.network)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}
	result := &ListManifestsResult{Network: uc.network}
	for _, name := range names {
		summary := &ManifestSummary{Name: name, Path: uc.store.Path(uc.network, name)}
		summary.Manifest, summary.LoadError = uc.store.Load(ctx, uc.network, name)
		result.Manifests = append(result.Manifests, summary)
	}
	return result, nil
}

// ShowManifest loads one manifest
type ShowManifest struct {
	store   ManifestStore
	network string
}

// NewShowManifest creates a new ShowManifest use case
func NewShowManifest(store ManifestStore, network CurrentNetwork) *ShowManifest {
	return &ShowManifest{store: store, network: string(network)}
}

// Run executes the lookup
func (uc *ShowManifest) Run(ctx context.Context, name string) (*ManifestSummary, error) {
	if name == "" {
		return nil, errors.New("manifest name is required")
	}
	m, err := uc.store.Load(ctx, uc.network, name)
	if err != nil {
		if errors.Is(err, domain.ErrMissingManifest) {
			if names, listErr := uc.store.List(ctx, uc.network); listErr == nil && len(names) > 0 {
				return nil, fmt.Errorf("%w (available: %v)", err, names)
			}
		}
		return nil, err
	}
	return &ManifestSummary{Name: name, Path: uc.store.Path(uc.network, name), Manifest: m}, nil
}
