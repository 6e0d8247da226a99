package abi

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

//go:embed abis/*.json
var embedded embed.FS

// Registry serves the contract interfaces shipped with the binary.
// A <Name>.abi.json file in one of the configured artifact directories overrides the embedded copy.
type Registry struct {
	overrideDirs []string
	log          *slog.Logger

	mu     sync.Mutex
	parsed map[string]*abi.ABI
}

// NewRegistry creates a registry that also looks in the configured artifact directories
func NewRegistry(cfg *config.RuntimeConfig, log *slog.Logger) *Registry {
	return &Registry{
		overrideDirs: cfg.ArtifactDirs,
		log:          log.With("component", "ABIRegistry"),
		parsed:       make(map[string]*abi.ABI),
	}
}

// Names lists the embedded interfaces
func (r *Registry) Names() []string {
	entries, err := embedded.ReadDir("abis")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// JSON returns the raw interface description
func (r *Registry) JSON(name string) ([]byte, error) {
	for _, dir := range r.overrideDirs {
		path := filepath.Join(dir, name+".abi.json")
		data, err := os.ReadFile(path)
		if err == nil {
			r.log.Debug("using ABI override", "name", name, "path", path)
			return data, nil
		}
	}
	data, err := embedded.ReadFile("abis/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("no ABI named %s", name)
	}
	return data, nil
}

// Get returns the parsed interface, parsing it once
func (r *Registry) Get(name string) (*abi.ABI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if parsed, ok := r.parsed[name]; ok {
		return parsed, nil
	}
	data, err := r.JSON(name)
	if err != nil {
		return nil, err
	}
	parsed, err := r.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid ABI %s: %w", name, err)
	}
	r.parsed[name] = parsed
	return parsed, nil
}

// Parse parses an ABI array
func (r *Registry) Parse(data []byte) (*abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

var _ usecase.ABIRegistry = (*Registry)(nil)
