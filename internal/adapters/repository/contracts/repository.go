package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// Repository indexes Hardhat artifacts found in the configured artifact directories
type Repository struct {
	dirs []string
	log  *slog.Logger

	mu      sync.RWMutex
	indexed bool
	// byName holds every artifact with a given contract name, in directory order
	byName map[string][]*models.Artifact
}

// NewRepository creates a new artifact repository
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	dirs := make([]string, 0, len(cfg.ArtifactDirs))
	for _, dir := range cfg.ArtifactDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.ProjectRoot, dir)
		}
		dirs = append(dirs, dir)
	}
	return &Repository{
		dirs:   dirs,
		log:    log.With("component", "ArtifactRepository"),
		byName: make(map[string][]*models.Artifact),
	}
}

// Index walks the artifact directories once
func (r *Repository) Index() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}

	for _, dir := range r.dirs {
		if _, err := os.Stat(dir); err != nil {
			r.log.Debug("skipping artifact directory", "dir", dir, "error", err)
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") || strings.HasSuffix(path, ".abi.json") {
				return nil
			}
			return r.processArtifact(path)
		})
		if err != nil {
			return fmt.Errorf("failed to index artifacts in %s: %w", dir, err)
		}
	}

	r.indexed = true
	return nil
}

// processArtifact records one artifact file, ignoring unrelated JSON
func (r *Repository) processArtifact(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil
	}
	if artifact.ContractName == "" || len(artifact.ABI) == 0 {
		return nil
	}
	artifact.Path = path

	r.byName[artifact.ContractName] = append(r.byName[artifact.ContractName], &artifact)
	return nil
}

// Load returns the artifact of a contract. "Source.sol:Name" selects among
// contracts sharing a name; otherwise the first directory wins.
func (r *Repository) Load(ctx context.Context, name string) (*models.Artifact, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, contractName, qualified := strings.Cut(name, ":")
	if !qualified {
		contractName = name
	}

	for _, artifact := range r.byName[contractName] {
		if qualified && artifact.SourceName != source && filepath.Base(artifact.SourceName) != source {
			continue
		}
		if !artifact.HasBytecode() {
			return nil, fmt.Errorf("artifact %s has no bytecode (abstract contract or interface?)", artifact.Path)
		}
		return artifact, nil
	}
	return nil, fmt.Errorf("no artifact for %s in %s", name, strings.Join(r.dirs, ", "))
}

// Names lists the indexed contract names
func (r *Repository) Names() ([]string, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Link substitutes library addresses at the byte offsets recorded in the artifact.
// Libraries are keyed by name or by "Source.sol:Name".
func (r *Repository) Link(artifact *models.Artifact, libraries map[string]common.Address) ([]byte, error) {
	code := strings.TrimPrefix(artifact.Bytecode, "0x")

	if artifact.NeedsLinking() {
		buf := []byte(code)
		for source, libs := range artifact.LinkReferences {
			for lib, refs := range libs {
				addr, ok := libraries[source+":"+lib]
				if !ok {
					addr, ok = libraries[lib]
				}
				if !ok {
					return nil, fmt.Errorf("%s needs library %s:%s, which was not provided", artifact.ContractName, source, lib)
				}
				hexAddr := strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x"))
				for _, ref := range refs {
					start, end := ref.Start*2, (ref.Start+ref.Length)*2
					if ref.Length != common.AddressLength || end > len(buf) {
						return nil, fmt.Errorf("invalid link reference for %s at %d in %s", lib, ref.Start, artifact.Path)
					}
					copy(buf[start:end], hexAddr)
				}
			}
		}
		code = string(buf)
	}

	out, err := hexutil.Decode("0x" + code)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode in %s: %w", artifact.Path, err)
	}
	return out, nil
}

var _ usecase.ArtifactLoader = (*Repository)(nil)
