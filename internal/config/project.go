package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
)

// LoadEnvFiles loads .env and .env.local from the project root.
// Variables already present in the environment win.
func LoadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// LoadProjectConfig reads v3ops.toml from the project root.
// A missing file yields an empty config and an empty source path.
func LoadProjectConfig(projectRoot string) (*config.ProjectConfig, string, error) {
	path := filepath.Join(projectRoot, config.ProjectFile)

	var raw config.ProjectConfig
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &config.ProjectConfig{Networks: map[string]config.NetworkConfig{}}, "", nil
		}
		return nil, "", fmt.Errorf("failed to parse %s: %w", config.ProjectFile, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, "", fmt.Errorf("unknown keys in %s: %s", config.ProjectFile, strings.Join(keys, ", "))
	}

	if raw.Networks == nil {
		raw.Networks = map[string]config.NetworkConfig{}
	}
	for name, network := range raw.Networks {
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		network.ExplorerURL = os.ExpandEnv(network.ExplorerURL)
		raw.Networks[name] = network
	}
	raw.DeploymentsDir = os.ExpandEnv(raw.DeploymentsDir)

	return &raw, path, nil
}
