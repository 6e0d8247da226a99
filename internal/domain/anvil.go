package domain

// AnvilInstance describes a local anvil node managed by v3ops
type AnvilInstance struct {
	Name    string `json:"name"`
	Port    string `json:"port"`
	ChainID uint64 `json:"chainId,omitempty"`
	ForkURL string `json:"forkUrl,omitempty"`
	PidFile string `json:"pidFile"`
	LogFile string `json:"logFile"`
}

// RPCURL is the endpoint the node listens on
func (i *AnvilInstance) RPCURL() string {
	return "http://127.0.0.1:" + i.Port
}

// AnvilStatus represents the status of an anvil instance
type AnvilStatus struct {
	Running     bool   `json:"running"`
	PID         int    `json:"pid,omitempty"`
	RPCURL      string `json:"rpcUrl,omitempty"`
	LogFile     string `json:"logFile"`
	RPCHealthy  bool   `json:"rpcHealthy"`
	ChainID     uint64 `json:"chainId,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	Error       string `json:"error,omitempty"`
}
