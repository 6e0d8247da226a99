package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
)

// ManifestRequirement names a manifest an operation reads and the roles it needs
type ManifestRequirement struct {
	Name     string
	Roles    []string
	Optional bool
}

// OperationSpec describes one operation for the runner
type OperationSpec struct {
	Name     string
	Requires []ManifestRequirement
	// ReadOnly operations run without a signing key
	ReadOnly bool
	// PersistOnFailure saves dirty manifests even when the operation fails
	PersistOnFailure bool
}

// OperationFunc is the operation specific part of a run
type OperationFunc func(ctx context.Context, env *Env) error

// OperationError wraps a failure with the stage it happened in
type OperationError struct {
	Operation string
	Stage     ExecutionStage
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed while %s: %v", e.Operation, strings.ToLower(string(e.Stage)), e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Runner executes operations through the Preparing, Submitting and Reporting stages.
// Transactions are sent one at a time and each is awaited before the next.
type Runner struct {
	cfg       *config.RuntimeConfig
	store     ManifestStore
	client    ChainClient
	binder    ContractBinder
	abis      ABIRegistry
	artifacts ArtifactLoader
	decoder   EventDecoder
	journal   TxJournal
	metrics   TxMetrics
	progress  ProgressSink
	log       *slog.Logger
	clock     func() time.Time
}

// NewRunner creates a new operation runner
func NewRunner(
	cfg *config.RuntimeConfig,
	store ManifestStore,
	client ChainClient,
	binder ContractBinder,
	abis ABIRegistry,
	artifacts ArtifactLoader,
	decoder EventDecoder,
	journal TxJournal,
	metrics TxMetrics,
	progress ProgressSink,
	log *slog.Logger,
) *Runner {
	return &Runner{
		cfg:       cfg,
		store:     store,
		client:    client,
		binder:    binder,
		abis:      abis,
		artifacts: artifacts,
		decoder:   decoder,
		journal:   journal,
		metrics:   metrics,
		progress:  progress,
		log:       log.With("component", "Runner"),
		clock:     time.Now,
	}
}

// Run executes fn inside a prepared environment
func (r *Runner) Run(ctx context.Context, spec OperationSpec, fn OperationFunc) (*Env, error) {
	defer r.progress.OnProgress(ctx, ProgressEvent{Stage: StageCompleted})

	env, err := r.prepare(ctx, spec)
	if err != nil {
		return nil, &OperationError{Operation: spec.Name, Stage: StagePreparing, Err: err}
	}
	defer r.client.Close()

	r.progress.OnProgress(ctx, ProgressEvent{Stage: StageSubmitting, Spinner: true, Message: spec.Name})
	runErr := fn(ctx, env)

	r.progress.OnProgress(ctx, ProgressEvent{Stage: StageReporting, Spinner: true, Message: "saving results"})
	if runErr == nil || spec.PersistOnFailure {
		if err := r.persist(ctx, env); err != nil {
			if runErr == nil {
				return env, &OperationError{Operation: spec.Name, Stage: StageReporting, Err: err}
			}
			r.log.Error("failed to persist manifests after operation error", "error", err)
		}
	}
	if err := r.metrics.Flush(); err != nil {
		r.log.Warn("failed to write metrics", "error", err)
	}

	if runErr != nil {
		return env, &OperationError{Operation: spec.Name, Stage: StageSubmitting, Err: runErr}
	}
	if r.cfg.Strict && len(env.Warnings) > 0 {
		return env, &OperationError{
			Operation: spec.Name,
			Stage:     StageReporting,
			Err:       domain.VerificationError{Warnings: env.Warnings},
		}
	}
	return env, nil
}

func (r *Runner) prepare(ctx context.Context, spec OperationSpec) (*Env, error) {
	r.progress.OnProgress(ctx, ProgressEvent{Stage: StagePreparing, Spinner: true, Message: "loading manifests"})

	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	network := r.cfg.Network

	sender, hasSigner := r.client.Sender()
	if !spec.ReadOnly && !hasSigner {
		return nil, domain.ErrNoSigner
	}

	// Manifests are checked before dialing so configuration errors never reach the network
	manifests := make(map[string]*models.Manifest, len(spec.Requires))
	for _, req := range spec.Requires {
		m, err := r.store.Load(ctx, network.Name, req.Name)
		if err != nil {
			if req.Optional && errors.Is(err, domain.ErrMissingManifest) {
				r.log.Debug("optional manifest not found", "manifest", req.Name)
				continue
			}
			return nil, err
		}
		for _, role := range req.Roles {
			if _, ok := m.Address(role); !ok {
				return nil, domain.MissingContractError{Manifest: req.Name, Role: role}
			}
		}
		manifests[req.Name] = m
	}

	r.progress.OnProgress(ctx, ProgressEvent{Stage: StagePreparing, Spinner: true, Message: "connecting to " + network.Name})
	chainID, err := r.client.Connect(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", network.Name, err)
	}
	if network.ChainID != 0 && network.ChainID != chainID {
		r.client.Close()
		return nil, domain.ChainIDMismatchError{Network: network.Name, Expected: network.ChainID, Actual: chainID}
	}

	r.log.Debug("prepared operation", "operation", spec.Name, "network", network.Name, "chainId", chainID, "sender", sender)

	return &Env{
		Operation: spec.Name,
		Network:   network,
		ChainID:   chainID,
		Sender:    sender,
		Now:       r.clock(),
		runner:    r,
		manifests: manifests,
		dirty:     make(map[string]bool),
	}, nil
}

func (r *Runner) persist(ctx context.Context, env *Env) error {
	for name := range env.dirty {
		m := env.manifests[name]
		if m == nil {
			continue
		}
		if err := r.store.Save(ctx, env.Network.Name, name, m); err != nil {
			return fmt.Errorf("failed to save manifest %s: %w", name, err)
		}
		env.Saved = append(env.Saved, r.store.Path(env.Network.Name, name))
	}
	return nil
}

// Env is what an operation sees while it runs
type Env struct {
	Operation    string
	Network      *config.Network
	ChainID      uint64
	Sender       common.Address
	Now          time.Time
	Transactions []models.TxRecord
	Warnings     []domain.VerificationWarning
	// Saved lists the manifest files written in the reporting stage
	Saved []string

	runner    *Runner
	manifests map[string]*models.Manifest
	dirty     map[string]bool
}

// DeployedContract is the outcome of Env.Deploy
type DeployedContract struct {
	Name    string
	Address common.Address
	ABI     *abi.ABI
	ABIJSON []byte
	Receipt *types.Receipt
}

// TxHash returns the creation transaction hash
func (d *DeployedContract) TxHash() string {
	if d.Receipt == nil {
		return ""
	}
	return d.Receipt.TxHash.Hex()
}

// Manifest returns a loaded manifest
func (e *Env) Manifest(name string) (*models.Manifest, bool) {
	m, ok := e.manifests[name]
	return m, ok
}

// CreateManifest starts a fresh manifest that is saved in the reporting stage
func (e *Env) CreateManifest(name string) *models.Manifest {
	m := models.NewManifest(e.Network.Name, e.ChainID, e.Sender)
	m.Timestamp = e.Now.UTC().Truncate(time.Millisecond)
	e.manifests[name] = m
	e.dirty[name] = true
	return m
}

// MarkDirty schedules a loaded manifest for saving
func (e *Env) MarkDirty(name string) {
	if _, ok := e.manifests[name]; ok {
		e.dirty[name] = true
	}
}

// Client exposes the chain connection for reads
func (e *Env) Client() ChainClient {
	return e.runner.client
}

// ContractAt binds an address with an ABI shipped with the binary
func (e *Env) ContractAt(abiName string, address common.Address) (Contract, error) {
	parsed, err := e.runner.abis.Get(abiName)
	if err != nil {
		return nil, err
	}
	return e.runner.binder.Bind(abiName, address, parsed), nil
}

// Bind binds a manifest role. The ABI recorded in the manifest wins over the embedded one.
func (e *Env) Bind(ctx context.Context, manifestName, role, abiName string) (Contract, error) {
	m, ok := e.manifests[manifestName]
	if !ok {
		return nil, domain.MissingManifestError{
			Network: e.Network.Name,
			Name:    manifestName,
			Path:    e.runner.store.Path(e.Network.Name, manifestName),
		}
	}
	addr, ok := m.Address(role)
	if !ok {
		return nil, domain.MissingContractError{Manifest: manifestName, Role: role}
	}

	parsed, err := e.resolveABI(ctx, m.Contract(role).ABI, abiName)
	if err != nil {
		return nil, err
	}
	return e.runner.binder.Bind(role, addr, parsed), nil
}

func (e *Env) resolveABI(ctx context.Context, ref *models.ABIRef, fallback string) (*abi.ABI, error) {
	if ref != nil && (ref.Path != "" || len(ref.Inline) > 0) {
		data, err := e.runner.store.ReadABI(ctx, e.Network.Name, ref)
		if err == nil {
			return e.runner.abis.Parse(data)
		}
		e.runner.log.Warn("falling back to embedded ABI", "contract", fallback, "error", err)
	}
	return e.runner.abis.Get(fallback)
}

// Status updates the progress line
func (e *Env) Status(ctx context.Context, message string) {
	e.runner.progress.OnProgress(ctx, ProgressEvent{Stage: StageSubmitting, Spinner: true, Message: message})
}

// Pause stops the spinner, for interactive prompts
func (e *Env) Pause(ctx context.Context) {
	e.runner.progress.OnProgress(ctx, ProgressEvent{Stage: StageSubmitting, Spinner: false})
}

// Warn records a verification mismatch
func (e *Env) Warn(w domain.VerificationWarning) {
	e.runner.log.Warn("verification mismatch", "subject", w.Subject, "expected", w.Expected, "actual", w.Actual)
	e.Warnings = append(e.Warnings, w)
}

// Transact calls a state changing method and awaits its receipt
func (e *Env) Transact(ctx context.Context, c Contract, label string, opts TxOptions, method string, args ...any) (*types.Receipt, error) {
	return e.Send(ctx, label, func(ctx context.Context) (*types.Transaction, error) {
		return c.Transact(ctx, opts, method, args...)
	})
}

// Send submits one transaction and waits until it is mined.
// A receipt with a failed status is returned together with a TxFailedError.
func (e *Env) Send(ctx context.Context, label string, submit func(ctx context.Context) (*types.Transaction, error)) (*types.Receipt, error) {
	e.Status(ctx, label)

	tx, err := submit(ctx)
	if err != nil {
		e.runner.metrics.ObserveTransaction(e.Operation, models.TxRecord{Label: label, Status: models.TransactionStatusReverted})
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	e.runner.log.Debug("transaction sent", "label", label, "hash", tx.Hash().Hex())

	record := models.TxRecord{Label: label, Hash: tx.Hash().Hex()}
	if tx.To() != nil {
		record.To = tx.To().Hex()
	}

	receipt, err := e.runner.client.WaitMined(ctx, tx)
	if err != nil {
		// the transaction is already broadcast and may still be mined, so it is journaled
		// even when ctx was cancelled
		record.Status = models.TransactionStatusPending
		e.record(context.WithoutCancel(ctx), record)
		return nil, fmt.Errorf("%s: waiting for %s: %w", label, record.Hash, err)
	}

	record.Status = models.TransactionStatusExecuted
	record.GasUsed = receipt.GasUsed
	if receipt.BlockNumber != nil {
		record.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.ContractAddress != (common.Address{}) {
		record.ContractAddress = receipt.ContractAddress.Hex()
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		record.Status = models.TransactionStatusFailed
	}
	e.record(ctx, record)

	if record.Status == models.TransactionStatusFailed {
		return receipt, domain.TxFailedError{Label: label, Hash: record.Hash, GasUsed: receipt.GasUsed}
	}
	return receipt, nil
}

func (e *Env) record(ctx context.Context, record models.TxRecord) {
	e.Transactions = append(e.Transactions, record)
	e.runner.metrics.ObserveTransaction(e.Operation, record)

	entry := &models.JournalEntry{
		Operation: e.Operation,
		Network:   e.Network.Name,
		ChainID:   e.ChainID,
		Sender:    e.Sender.Hex(),
		CreatedAt: e.runner.clock().UTC(),
		TxRecord:  record,
	}
	if err := e.runner.journal.Record(ctx, entry); err != nil {
		e.runner.log.Warn("failed to journal transaction", "hash", record.Hash, "error", err)
	}
}

// Deploy links, encodes and deploys a contract from its compilation artifact
func (e *Env) Deploy(ctx context.Context, artifactName string, libraries map[string]common.Address, opts TxOptions, args ...any) (*DeployedContract, error) {
	artifact, err := e.runner.artifacts.Load(ctx, artifactName)
	if err != nil {
		return nil, err
	}
	code, err := e.runner.artifacts.Link(artifact, libraries)
	if err != nil {
		return nil, err
	}
	parsed, err := e.runner.abis.Parse(artifact.ABI)
	if err != nil {
		return nil, fmt.Errorf("invalid ABI in %s: %w", artifact.Path, err)
	}
	ctorArgs, err := parsed.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s constructor: %w", artifactName, err)
	}
	code = append(code, ctorArgs...)

	var address common.Address
	receipt, err := e.Send(ctx, "deploy "+artifactName, func(ctx context.Context) (*types.Transaction, error) {
		tx, addr, err := e.runner.client.Deploy(ctx, code, opts)
		address = addr
		return tx, err
	})
	if err != nil {
		return nil, err
	}
	if receipt.ContractAddress != (common.Address{}) {
		address = receipt.ContractAddress
	}

	return &DeployedContract{
		Name:    artifactName,
		Address: address,
		ABI:     parsed,
		ABIJSON: artifact.ABI,
		Receipt: receipt,
	}, nil
}

// RecordDeployment stores a deployed contract under a role, with its ABI file
func (e *Env) RecordDeployment(ctx context.Context, manifestName, role string, d *DeployedContract) (*models.ContractRecord, error) {
	m, ok := e.manifests[manifestName]
	if !ok {
		return nil, fmt.Errorf("manifest %s is not open", manifestName)
	}
	ref, err := e.runner.store.WriteABI(ctx, e.Network.Name, role, d.ABIJSON)
	if err != nil {
		return nil, err
	}
	rec := &models.ContractRecord{
		Address:         d.Address.Hex(),
		ABI:             ref,
		TransactionHash: d.TxHash(),
	}
	m.Set(role, rec)
	e.dirty[manifestName] = true
	return rec, nil
}

// DecodeEvents decodes the receipt logs emitted by the given contracts, skipping unknown logs
func (e *Env) DecodeEvents(receipt *types.Receipt, contracts ...Contract) []*models.DecodedEvent {
	if receipt == nil {
		return nil
	}
	var events []*models.DecodedEvent
	for _, l := range receipt.Logs {
		for _, c := range contracts {
			if l.Address != c.Address() {
				continue
			}
			ev, err := e.runner.decoder.Decode(l, c.ABI())
			if err != nil {
				e.runner.log.Debug("failed to decode log", "address", l.Address, "error", err)
				continue
			}
			if ev != nil {
				events = append(events, ev)
			}
		}
	}
	return events
}

// RecordExisting stores an address that was not deployed by this run, with an embedded ABI
func (e *Env) RecordExisting(ctx context.Context, manifestName, role string, address common.Address, abiName string) (*models.ContractRecord, error) {
	abiJSON, err := e.runner.abis.JSON(abiName)
	if err != nil {
		return nil, err
	}
	return e.RecordDeployment(ctx, manifestName, role, &DeployedContract{
		Name:    abiName,
		Address: address,
		ABIJSON: abiJSON,
	})
}

// Summary returns the part of the result every operation shares
func (e *Env) Summary() OperationSummary {
	return OperationSummary{
		Operation:    e.Operation,
		Network:      e.Network.Name,
		ChainID:      e.ChainID,
		Sender:       e.Sender,
		Transactions: e.Transactions,
		Warnings:     e.Warnings,
		Saved:        e.Saved,
	}
}

// OperationSummary is embedded in every operation result
type OperationSummary struct {
	Operation    string                       `json:"operation"`
	Network      string                       `json:"network"`
	ChainID      uint64                       `json:"chainId"`
	Sender       common.Address               `json:"sender"`
	Transactions []models.TxRecord            `json:"transactions"`
	Warnings     []domain.VerificationWarning `json:"warnings,omitempty"`
	Saved        []string                     `json:"saved,omitempty"`
}

// Summary returns the summary itself, so results that embed it can be handled uniformly
func (s *OperationSummary) Summary() OperationSummary {
	return *s
}

// summaryOf tolerates a nil env from a failed preparation
func summaryOf(env *Env) OperationSummary {
	if env == nil {
		return OperationSummary{}
	}
	return env.Summary()
}
