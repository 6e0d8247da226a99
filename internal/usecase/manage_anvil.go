package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/trebuchet-org/v3ops/internal/domain"
)

// NodeOperation is one of the local node commands
type NodeOperation string

const (
	NodeStart    NodeOperation = "start"
	NodeStop     NodeOperation = "stop"
	NodeRestart  NodeOperation = "restart"
	NodeStatus   NodeOperation = "status"
	NodeSnapshot NodeOperation = "snapshot"
	NodeRevert   NodeOperation = "revert"
)

// ManageAnvilParams contains parameters for anvil operations
type ManageAnvilParams struct {
	Operation NodeOperation
	Name      string
	Port      string
	ChainID   uint64
	// Fork names a network whose RPC the node forks from
	Fork       string
	SnapshotID string
}

// ManageAnvilResult contains the result of anvil operations
type ManageAnvilResult struct {
	Operation  NodeOperation         `json:"operation"`
	Instance   *domain.AnvilInstance `json:"instance"`
	Status     *domain.AnvilStatus   `json:"status,omitempty"`
	SnapshotID string                `json:"snapshotId,omitempty"`
	Message    string                `json:"message"`
}

// ManageAnvil starts, stops and inspects the local anvil node used by the localhost network
type ManageAnvil struct {
	anvil    AnvilManager
	resolver NetworkResolver
	progress ProgressSink
}

// NewManageAnvil creates a new anvil management use case
func NewManageAnvil(anvil AnvilManager, resolver NetworkResolver, progress ProgressSink) *ManageAnvil {
	return &ManageAnvil{
		anvil:    anvil,
		resolver: resolver,
		progress: progress,
	}
}

// Run performs the anvil management operation
func (uc *ManageAnvil) Run(ctx context.Context, params ManageAnvilParams) (*ManageAnvilResult, error) {
	instance, err := uc.instance(ctx, params)
	if err != nil {
		return nil, err
	}

	switch params.Operation {
	case NodeStart:
		return uc.start(ctx, instance)
	case NodeStop:
		return uc.stop(ctx, instance)
	case NodeRestart:
		return uc.restart(ctx, instance)
	case NodeStatus:
		status, err := uc.anvil.GetStatus(ctx, instance)
		if err != nil {
			return nil, fmt.Errorf("failed to get status: %w", err)
		}
		return &ManageAnvilResult{Operation: NodeStatus, Instance: instance, Status: status}, nil
	case NodeSnapshot:
		return uc.snapshot(ctx, instance)
	case NodeRevert:
		return uc.revert(ctx, instance, params.SnapshotID)
	default:
		return nil, fmt.Errorf("unknown node operation: %s", params.Operation)
	}
}

// StreamLogs writes the node log to w, following it when follow is set
func (uc *ManageAnvil) StreamLogs(ctx context.Context, params ManageAnvilParams, w io.Writer, follow bool) error {
	instance, err := uc.instance(ctx, params)
	if err != nil {
		return err
	}
	return uc.anvil.StreamLogs(ctx, instance, w, follow)
}

func (uc *ManageAnvil) instance(ctx context.Context, params ManageAnvilParams) (*domain.AnvilInstance, error) {
	instance := &domain.AnvilInstance{
		Name:    params.Name,
		Port:    params.Port,
		ChainID: params.ChainID,
	}
	if params.Fork == "" || (params.Operation != NodeStart && params.Operation != NodeRestart) {
		return instance, nil
	}

	network, err := uc.resolver.ResolveNetwork(ctx, params.Fork)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fork network: %w", err)
	}
	if network.RPCURL == "" {
		return nil, fmt.Errorf("network %s has no RPC URL to fork from", params.Fork)
	}
	instance.ForkURL = network.RPCURL
	if instance.ChainID == 0 {
		instance.ChainID = network.ChainID
	}
	return instance, nil
}

func (uc *ManageAnvil) start(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	uc.progress.Info(fmt.Sprintf("🔨 Starting local anvil node '%s'...", nameOrDefault(instance.Name)))

	if err := uc.anvil.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start anvil: %w", err)
	}

	status, err := uc.anvil.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}

	return &ManageAnvilResult{
		Operation: NodeStart,
		Instance:  instance,
		Status:    status,
		Message:   fmt.Sprintf("Anvil '%s' started with PID %d", instance.Name, status.PID),
	}, nil
}

func (uc *ManageAnvil) stop(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	uc.progress.Info(fmt.Sprintf("🛑 Stopping anvil '%s'...", nameOrDefault(instance.Name)))

	result := &ManageAnvilResult{Operation: NodeStop, Instance: instance}
	if err := uc.anvil.Stop(ctx, instance); err != nil {
		if errors.Is(err, domain.ErrNodeNotRunning) {
			result.Message = fmt.Sprintf("Anvil '%s' is not running", instance.Name)
			return result, nil
		}
		return nil, fmt.Errorf("failed to stop anvil: %w", err)
	}
	result.Message = "Anvil stopped"
	return result, nil
}

func (uc *ManageAnvil) restart(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	uc.progress.Info(fmt.Sprintf("🔄 Restarting anvil '%s'...", nameOrDefault(instance.Name)))

	if err := uc.anvil.Stop(ctx, instance); err != nil && !errors.Is(err, domain.ErrNodeNotRunning) {
		return nil, fmt.Errorf("failed to stop anvil: %w", err)
	}
	result, err := uc.start(ctx, instance)
	if err != nil {
		return nil, err
	}
	result.Operation = NodeRestart
	result.Message = fmt.Sprintf("Anvil '%s' restarted with PID %d", instance.Name, result.Status.PID)
	return result, nil
}

func (uc *ManageAnvil) snapshot(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	if err := uc.requireRunning(ctx, instance); err != nil {
		return nil, err
	}
	id, err := uc.anvil.TakeSnapshot(ctx, instance)
	if err != nil {
		return nil, err
	}
	return &ManageAnvilResult{
		Operation:  NodeSnapshot,
		Instance:   instance,
		SnapshotID: id,
		Message:    fmt.Sprintf("Snapshot %s taken", id),
	}, nil
}

func (uc *ManageAnvil) revert(ctx context.Context, instance *domain.AnvilInstance, id string) (*ManageAnvilResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("snapshot id is required")
	}
	if err := uc.requireRunning(ctx, instance); err != nil {
		return nil, err
	}
	if err := uc.anvil.RevertSnapshot(ctx, instance, id); err != nil {
		return nil, err
	}
	return &ManageAnvilResult{
		Operation:  NodeRevert,
		Instance:   instance,
		SnapshotID: id,
		Message:    fmt.Sprintf("Reverted to snapshot %s", id),
	}, nil
}

func (uc *ManageAnvil) requireRunning(ctx context.Context, instance *domain.AnvilInstance) error {
	status, err := uc.anvil.GetStatus(ctx, instance)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if !status.Running {
		return fmt.Errorf("%w: %s (start it with v3ops node start)", domain.ErrNodeNotRunning, instance.Name)
	}
	return nil
}

func nameOrDefault(name string) string {
	if name == "" {
		return "anvil"
	}
	return name
}
