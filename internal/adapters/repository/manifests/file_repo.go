package manifests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

const (
	// CoreFile is the file name of the core deployment manifest
	CoreFile = "deployment.json"
	// Suffix is appended to every other manifest name
	Suffix = "-deployment.json"
	// ABIDir holds the interface descriptions referenced by manifests
	ABIDir = "abi"

	lockRetryDelay = 50 * time.Millisecond
)

// FileRepository stores manifests as JSON files under deployments/<network>/
type FileRepository struct {
	rootDir string
	log     *slog.Logger
}

// NewFileRepository creates a manifest store rooted at the configured deployments directory
func NewFileRepository(cfg *config.RuntimeConfig, log *slog.Logger) *FileRepository {
	return &FileRepository{
		rootDir: cfg.DeploymentsDir,
		log:     log.With("component", "ManifestStore"),
	}
}

// Path returns the file a manifest is stored in
func (r *FileRepository) Path(network, name string) string {
	return filepath.Join(r.rootDir, network, fileName(name))
}

func fileName(name string) string {
	if name == models.CoreManifest {
		return CoreFile
	}
	return name + Suffix
}

// nameFromFile reverses fileName, returning false for unrelated files
func nameFromFile(file string) (string, bool) {
	if file == CoreFile {
		return models.CoreManifest, true
	}
	name, ok := strings.CutSuffix(file, Suffix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Load reads a manifest. A missing file yields a MissingManifestError.
func (r *FileRepository) Load(ctx context.Context, network, name string) (*models.Manifest, error) {
	path := r.Path(network, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.MissingManifestError{Network: network, Name: name, Path: path}
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m.Contracts == nil {
		m.Contracts = make(map[string]*models.ContractRecord)
	}
	return &m, nil
}

// Save rewrites a manifest through a temporary file and an atomic rename.
// Writers from other processes are serialized by an advisory lock next to the file.
func (r *FileRepository) Save(ctx context.Context, network, name string, manifest *models.Manifest) error {
	path := r.Path(network, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest %s: %w", name, err)
	}
	data = append(data, '\n')

	return r.withLock(ctx, path, func() error {
		return writeAtomic(path, data)
	})
}

// List returns the manifest names stored for a network, sorted
func (r *FileRepository) List(ctx context.Context, network string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.rootDir, network))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list manifests of %s: %w", network, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := nameFromFile(entry.Name()); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// WriteABI stores an interface description as deployments/<network>/abi/<role>.json
func (r *FileRepository) WriteABI(ctx context.Context, network, role string, abiJSON []byte) (*models.ABIRef, error) {
	if len(abiJSON) == 0 {
		return nil, nil
	}
	rel := filepath.ToSlash(filepath.Join(ABIDir, role+".json"))
	path := filepath.Join(r.rootDir, network, ABIDir, role+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := r.withLock(ctx, path, func() error { return writeAtomic(path, abiJSON) }); err != nil {
		return nil, fmt.Errorf("failed to write ABI for %s: %w", role, err)
	}
	return &models.ABIRef{Path: rel}, nil
}

// ReadABI resolves a reference written by WriteABI or an ABI embedded in an older manifest
func (r *FileRepository) ReadABI(ctx context.Context, network string, ref *models.ABIRef) ([]byte, error) {
	if ref == nil {
		return nil, fmt.Errorf("no ABI recorded")
	}
	if len(ref.Inline) > 0 {
		return ref.Inline, nil
	}
	path := ref.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.rootDir, network, filepath.FromSlash(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ABI %s: %w", path, err)
	}
	return data, nil
}

// withLock holds <path>.lock while fn runs
func (r *FileRepository) withLock(ctx context.Context, path string, fn func() error) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s", path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.log.Warn("failed to release lock", "path", path, "error", err)
		}
	}()
	return fn()
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

var _ usecase.ManifestStore = (*FileRepository)(nil)
