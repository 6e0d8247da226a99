package config

// ProjectFile is the name of the project configuration file
const ProjectFile = "v3ops.toml"

// ProjectConfig represents the raw v3ops.toml structure
type ProjectConfig struct {
	DeploymentsDir string                   `toml:"deployments_dir"`
	Artifacts      []string                 `toml:"artifacts"`
	DefaultNetwork string                   `toml:"default_network"`
	Networks       map[string]NetworkConfig `toml:"networks"`
}

// NetworkConfig is one [networks.<name>] table
type NetworkConfig struct {
	RPCURL      string          `toml:"rpc_url"`
	ChainID     uint64          `toml:"chain_id"`
	ExplorerURL string          `toml:"explorer_url"`
	Contracts   ContractsConfig `toml:"contracts"`
}

// ContractsConfig is one [networks.<name>.contracts] table
type ContractsConfig struct {
	Factory         string `toml:"factory"`
	PositionManager string `toml:"position_manager"`
	SwapRouter      string `toml:"swap_router"`
	Quoter          string `toml:"quoter"`
	WETH9           string `toml:"weth9"`
}
