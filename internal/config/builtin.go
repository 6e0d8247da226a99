package config

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
)

const (
	// DefaultNetwork is used when neither flags nor v3ops.toml pick one
	DefaultNetwork = "localhost"

	localRPCURL  = "http://127.0.0.1:8545"
	localChainID = 31337
)

// BuiltinNetworks returns the networks usable without any project configuration.
// The sepolia RPC URL comes from SEPOLIA_RPC_URL at resolve time.
func BuiltinNetworks() map[string]config.Network {
	local := func(name string) config.Network {
		return config.Network{Name: name, ChainID: localChainID, RPCURL: localRPCURL, BuiltIn: true}
	}
	return map[string]config.Network{
		"localhost": local("localhost"),
		"hardhat":   local("hardhat"),
		"sepolia": {
			Name:        "sepolia",
			ChainID:     11155111,
			ExplorerURL: "https://sepolia.etherscan.io",
			Contracts: config.KnownContracts{
				Factory:         common.HexToAddress("0xCbaec1555707dFAff3303ed6123Db16Eb67F1791"),
				PositionManager: common.HexToAddress("0xc01DdaBBA95E9Cb45C1D7919c0B9f2fb6740c9f4"),
				SwapRouter:      common.HexToAddress("0x3DDB759BF377A352aA12e319a93B17ffA512Dd69"),
				Quoter:          common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"),
				WETH9:           common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"),
			},
			BuiltIn: true,
		},
	}
}

// explorerForChain returns a well known block explorer for a chain id
func explorerForChain(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 8453:
		return "https://basescan.org"
	case 42161:
		return "https://arbiscan.io"
	case 56:
		return "https://bscscan.com"
	default:
		return ""
	}
}
