package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/uniswapv3"
)

// Artifact names looked up by the artifact loader
const (
	artifactWETH9              = "WETH9"
	artifactFactory            = "UniswapV3Factory"
	artifactNFTDescriptor      = "NFTDescriptor"
	artifactPositionDescriptor = "NonfungibleTokenPositionDescriptor"
	artifactPositionManager    = "NonfungiblePositionManager"
	artifactSwapRouter         = "SwapRouter"
	artifactToken              = "guoWenCoin"
)

// DeployedRole is one contract written to a manifest
type DeployedRole struct {
	Role    string         `json:"role"`
	Address common.Address `json:"address"`
	TxHash  string         `json:"transactionHash,omitempty"`
	// Existing is true when the address was supplied instead of deployed
	Existing bool `json:"existing,omitempty"`
}

// DeployResult is returned by the deploy operations
type DeployResult struct {
	OperationSummary
	Manifest  string         `json:"manifest"`
	Contracts []DeployedRole `json:"contracts"`
}

// DeployCoreParams contains parameters for deploying the protocol contracts
type DeployCoreParams struct {
	// WETH is an existing WETH9 address. Zero means the network default.
	WETH       common.Address
	DeployWETH bool
	// NativeCurrencyLabel is passed to the position descriptor
	NativeCurrencyLabel string
}

// DeployCore deploys the factory and periphery contracts
type DeployCore struct {
	runner *Runner
}

// NewDeployCore creates a new DeployCore use case
func NewDeployCore(runner *Runner) *DeployCore {
	return &DeployCore{runner: runner}
}

// Run executes the deployment
func (uc *DeployCore) Run(ctx context.Context, params DeployCoreParams) (*DeployResult, error) {
	result := &DeployResult{Manifest: models.CoreManifest}
	label := params.NativeCurrencyLabel
	if label == "" {
		label = "WETH"
	}
	if len(label) > 32 {
		return nil, fmt.Errorf("native currency label %q is longer than 32 bytes", label)
	}

	env, err := uc.runner.Run(ctx, OperationSpec{Name: "deploy core"}, func(ctx context.Context, env *Env) error {
		env.CreateManifest(models.CoreManifest)
		d := deployer{env: env, manifest: models.CoreManifest, result: result}

		weth := params.WETH
		if params.DeployWETH {
			deployed, err := d.deploy(ctx, models.RoleWETH9, artifactWETH9, nil)
			if err != nil {
				return err
			}
			weth = deployed.Address
		} else {
			if weth == (common.Address{}) {
				weth = env.Network.Contracts.WETH9
			}
			if weth == (common.Address{}) {
				return fmt.Errorf("network %s has no WETH9 address: pass --weth or --deploy-weth", env.Network.Name)
			}
			if err := d.existing(ctx, models.RoleWETH9, weth, ABIWETH9); err != nil {
				return err
			}
		}

		factory, err := d.deploy(ctx, models.RoleFactory, artifactFactory, nil)
		if err != nil {
			return err
		}
		nftDescriptor, err := d.deploy(ctx, models.RoleNFTDescriptor, artifactNFTDescriptor, nil)
		if err != nil {
			return err
		}

		var nativeLabel [32]byte
		copy(nativeLabel[:], label)
		descriptor, err := d.deploy(ctx, models.RolePositionDescriptor, artifactPositionDescriptor,
			map[string]common.Address{artifactNFTDescriptor: nftDescriptor.Address},
			weth, nativeLabel)
		if err != nil {
			return err
		}

		if _, err := d.deploy(ctx, models.RolePositionManager, artifactPositionManager, nil,
			factory.Address, weth, descriptor.Address); err != nil {
			return err
		}
		_, err = d.deploy(ctx, models.RoleSwapRouter, artifactSwapRouter, nil, factory.Address, weth)
		return err
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// DeployWETH deploys a WETH9 contract
type DeployWETH struct {
	runner *Runner
}

// NewDeployWETH creates a new DeployWETH use case
func NewDeployWETH(runner *Runner) *DeployWETH {
	return &DeployWETH{runner: runner}
}

// Run executes the deployment
func (uc *DeployWETH) Run(ctx context.Context) (*DeployResult, error) {
	result := &DeployResult{Manifest: models.WETHManifest}
	env, err := uc.runner.Run(ctx, OperationSpec{Name: "deploy weth"}, func(ctx context.Context, env *Env) error {
		env.CreateManifest(models.WETHManifest)
		d := deployer{env: env, manifest: models.WETHManifest, result: result}
		_, err := d.deploy(ctx, models.RoleWETH9, artifactWETH9, nil)
		return err
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// TokenSpec describes one bespoke token to deploy
type TokenSpec struct {
	Name     string
	Symbol   string
	Decimals uint8
	// Supply is in whole tokens
	Supply string
}

// DefaultTokenSpecs are the token pair deployed by deploy tokens
func DefaultTokenSpecs() (TokenSpec, TokenSpec) {
	return TokenSpec{Name: "HE", Symbol: "HE", Decimals: 18, Supply: "1000000"},
		TokenSpec{Name: "SHE", Symbol: "SHE", Decimals: 18, Supply: "1000000"}
}

// DeployTokensParams contains parameters for deploying a token pair
type DeployTokensParams struct {
	Manifest string
	TokenA   TokenSpec
	TokenB   TokenSpec
	// Owner receives the supply. Zero means the sender.
	Owner common.Address
}

// DeployTokens deploys the bespoke token pair
type DeployTokens struct {
	runner *Runner
}

// NewDeployTokens creates a new DeployTokens use case
func NewDeployTokens(runner *Runner) *DeployTokens {
	return &DeployTokens{runner: runner}
}

// Run executes the deployment
func (uc *DeployTokens) Run(ctx context.Context, params DeployTokensParams) (*DeployResult, error) {
	if params.Manifest == "" {
		params.Manifest = models.TokensManifest
	}
	result := &DeployResult{Manifest: params.Manifest}

	env, err := uc.runner.Run(ctx, OperationSpec{Name: "deploy tokens"}, func(ctx context.Context, env *Env) error {
		env.CreateManifest(params.Manifest)
		d := deployer{env: env, manifest: params.Manifest, result: result}
		owner := params.Owner
		if owner == (common.Address{}) {
			owner = env.Sender
		}
		if _, err := d.token(ctx, models.RoleTokenA, params.TokenA, owner); err != nil {
			return err
		}
		_, err := d.token(ctx, models.RoleTokenB, params.TokenB, owner)
		return err
	})
	result.OperationSummary = summaryOf(env)
	return result, err
}

// deployer deploys contracts into one manifest and collects them for the result
type deployer struct {
	env      *Env
	manifest string
	result   *DeployResult
}

func (d deployer) deploy(ctx context.Context, role, artifact string, libraries map[string]common.Address, args ...any) (*DeployedContract, error) {
	deployed, err := d.env.Deploy(ctx, artifact, libraries, TxOptions{}, args...)
	if err != nil {
		return nil, err
	}
	if _, err := d.env.RecordDeployment(ctx, d.manifest, role, deployed); err != nil {
		return nil, err
	}
	d.result.Contracts = append(d.result.Contracts, DeployedRole{Role: role, Address: deployed.Address, TxHash: deployed.TxHash()})
	d.env.runner.log.Info("deployed contract", "role", role, "address", deployed.Address)
	return deployed, nil
}

func (d deployer) existing(ctx context.Context, role string, address common.Address, abiName string) error {
	if _, err := d.env.RecordExisting(ctx, d.manifest, role, address, abiName); err != nil {
		return err
	}
	d.result.Contracts = append(d.result.Contracts, DeployedRole{Role: role, Address: address, Existing: true})
	return nil
}

func (d deployer) token(ctx context.Context, role string, spec TokenSpec, owner common.Address) (*DeployedContract, error) {
	supply, err := uniswapv3.ParseUnits(spec.Supply, spec.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid supply for %s: %w", spec.Symbol, err)
	}
	return d.deploy(ctx, role, artifactToken, nil, spec.Name, spec.Symbol, spec.Decimals, supply, owner)
}
