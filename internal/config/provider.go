package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
)

const (
	// EnvPrefix prefixes every environment override, e.g. V3OPS_NETWORK
	EnvPrefix = "V3OPS"
	// DataDirName is the per-project directory for caches, journal and local config
	DataDirName = ".v3ops"
	// DefaultDeploymentsDir holds the manifests unless v3ops.toml says otherwise
	DefaultDeploymentsDir = "deployments"
	// JournalFile is the journal database inside the data directory
	JournalFile = "journal.db"
)

// DefaultArtifactDirs are searched for Hardhat artifacts when v3ops.toml lists none
var DefaultArtifactDirs = []string{
	"artifacts",
	"node_modules/@uniswap/v3-core/artifacts",
	"node_modules/@uniswap/v3-periphery/artifacts",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	LoadEnvFiles(projectRoot)

	project, source, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	dataDir := filepath.Join(projectRoot, DataDirName)
	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        dataDir,
		DeploymentsDir: inProject(projectRoot, firstNonEmpty(project.DeploymentsDir, DefaultDeploymentsDir)),
		PrivateKey:     firstNonEmpty(v.GetString("private_key"), os.Getenv("PRIVATE_KEY")),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		Strict:         v.GetBool("strict"),
		MetricsFile:    v.GetString("metrics_file"),
		JournalPath:    firstNonEmpty(v.GetString("journal"), filepath.Join(dataDir, JournalFile)),
		ConfigSource:   source,
	}
	if cfg.MetricsFile != "" {
		cfg.MetricsFile = inProject(projectRoot, cfg.MetricsFile)
	}

	artifactDirs := project.Artifacts
	if len(artifactDirs) == 0 {
		artifactDirs = DefaultArtifactDirs
	}
	for _, dir := range artifactDirs {
		cfg.ArtifactDirs = append(cfg.ArtifactDirs, inProject(projectRoot, os.ExpandEnv(dir)))
	}

	networkName := firstNonEmpty(v.GetString("network"), project.DefaultNetwork, DefaultNetwork)
	network, err := NewNetworkResolver(dataDir, project).Lookup(networkName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
	}
	cfg.Network = network

	return cfg, nil
}

// FindProjectRoot walks up from the current directory to the nearest v3ops.toml.
// Without one the current directory is the project root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, config.ProjectFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	// Set up environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
				panic(err)
			}
		})
	}

	return v
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) (*NetworkResolver, error) {
	project, _, err := LoadProjectConfig(cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	return NewNetworkResolver(cfg.DataDir, project), nil
}

func inProject(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
