package anvil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

const (
	DefaultInstanceName = "anvil"
	DefaultAnvilPort    = "8545"

	readyTimeout = 10 * time.Second
	stopTimeout  = 5 * time.Second
	pollInterval = 100 * time.Millisecond
)

// Manager runs anvil nodes as background processes tracked by PID files
type Manager struct {
	dir    string
	binary string
	log    *slog.Logger
}

// NewManager creates a manager keeping its PID and log files under the data directory
func NewManager(cfg *config.RuntimeConfig, log *slog.Logger) *Manager {
	return &Manager{
		dir:    filepath.Join(cfg.DataDir, "node"),
		binary: "anvil",
		log:    log.With("component", "AnvilManager"),
	}
}

// setFilePaths fills the defaults of an instance, keeping paths that are already set
func (m *Manager) setFilePaths(instance *domain.AnvilInstance) {
	if strings.TrimSpace(instance.Name) == "" {
		instance.Name = DefaultInstanceName
	}
	if strings.TrimSpace(instance.Port) == "" {
		instance.Port = DefaultAnvilPort
	}
	if instance.PidFile == "" {
		instance.PidFile = filepath.Join(m.dir, instance.Name+".pid")
	}
	if instance.LogFile == "" {
		instance.LogFile = filepath.Join(m.dir, instance.Name+".log")
	}
}

func buildAnvilArgs(instance *domain.AnvilInstance) []string {
	args := []string{"--port", instance.Port, "--host", "127.0.0.1"}
	if instance.ChainID != 0 {
		args = append(args, "--chain-id", strconv.FormatUint(instance.ChainID, 10))
	}
	if instance.ForkURL != "" {
		args = append(args, "--fork-url", instance.ForkURL)
	}
	return args
}

// Start launches anvil in the background and waits until its RPC answers
func (m *Manager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)

	if pid, running := m.running(instance); running {
		return fmt.Errorf("%w: %s (PID %d)", domain.ErrNodeRunning, instance.Name, pid)
	}
	if err := os.MkdirAll(filepath.Dir(instance.PidFile), 0755); err != nil {
		return fmt.Errorf("failed to create node directory: %w", err)
	}

	logFile, err := os.Create(instance.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	args := buildAnvilArgs(instance)
	m.log.Debug("starting anvil", "binary", m.binary, "args", args)

	cmd := exec.Command(m.binary, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start anvil: %w", err)
	}

	pid := cmd.Process.Pid
	if err := os.WriteFile(instance.PidFile, []byte(strconv.Itoa(pid)), 0644); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	readyCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	for {
		if _, err := m.blockNumber(readyCtx, instance); err == nil {
			return nil
		}
		select {
		case err := <-exited:
			_ = os.Remove(instance.PidFile)
			return fmt.Errorf("anvil exited during startup (%v), see %s", err, instance.LogFile)
		case <-readyCtx.Done():
			_ = cmd.Process.Kill()
			_ = os.Remove(instance.PidFile)
			return fmt.Errorf("anvil did not answer on %s: %w", instance.RPCURL(), readyCtx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// Stop terminates a running instance, killing it when SIGTERM is not enough
func (m *Manager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)

	pid, running := m.running(instance)
	if !running {
		_ = os.Remove(instance.PidFile)
		return fmt.Errorf("%w: %s", domain.ErrNodeNotRunning, instance.Name)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		m.log.Debug("SIGTERM failed, killing", "pid", pid, "error", err)
		_ = process.Kill()
	}

	deadline := time.Now().Add(stopTimeout)
	for processAlive(pid) {
		if time.Now().After(deadline) {
			_ = process.Kill()
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	if err := os.Remove(instance.PidFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// GetStatus reports the process state and, when running, the RPC health
func (m *Manager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	m.setFilePaths(instance)

	status := &domain.AnvilStatus{LogFile: instance.LogFile}
	pid, running := m.running(instance)
	if !running {
		return status, nil
	}
	status.Running = true
	status.PID = pid
	status.RPCURL = instance.RPCURL()

	block, err := m.blockNumber(ctx, instance)
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.RPCHealthy = true
	status.BlockNumber = block

	var chainID hexutil.Uint64
	if err := m.call(ctx, instance, &chainID, "eth_chainId"); err == nil {
		status.ChainID = uint64(chainID)
	}
	return status, nil
}

// StreamLogs copies the log file to w. With follow it keeps polling for new lines until ctx ends.
func (m *Manager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, w io.Writer, follow bool) error {
	m.setFilePaths(instance)

	f, err := os.Open(instance.LogFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("log file does not exist: %s", instance.LogFile)
		}
		return err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if _, werr := io.WriteString(w, line); werr != nil {
				return werr
			}
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			return err
		}
		if !follow {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(pollInterval):
		}
	}
}

// TakeSnapshot records the node state and returns the snapshot id
func (m *Manager) TakeSnapshot(ctx context.Context, instance *domain.AnvilInstance) (string, error) {
	m.setFilePaths(instance)
	var id string
	if err := m.call(ctx, instance, &id, "evm_snapshot"); err != nil {
		return "", fmt.Errorf("evm_snapshot failed: %w", err)
	}
	return id, nil
}

// RevertSnapshot restores the node to a snapshot. Anvil drops the snapshot once reverted.
func (m *Manager) RevertSnapshot(ctx context.Context, instance *domain.AnvilInstance, snapshotID string) error {
	m.setFilePaths(instance)
	var ok bool
	if err := m.call(ctx, instance, &ok, "evm_revert", snapshotID); err != nil {
		return fmt.Errorf("evm_revert failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("evm_revert returned false for snapshot %s", snapshotID)
	}
	return nil
}

func (m *Manager) blockNumber(ctx context.Context, instance *domain.AnvilInstance) (uint64, error) {
	var block hexutil.Uint64
	if err := m.call(ctx, instance, &block, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(block), nil
}

func (m *Manager) call(ctx context.Context, instance *domain.AnvilInstance, result any, method string, args ...any) error {
	client, err := rpc.DialContext(ctx, instance.RPCURL())
	if err != nil {
		return err
	}
	defer client.Close()
	return client.CallContext(ctx, result, method, args...)
}

// running reads the PID file and checks the process is alive
func (m *Manager) running(instance *domain.AnvilInstance) (int, bool) {
	data, err := os.ReadFile(instance.PidFile)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, processAlive(pid)
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

var _ usecase.AnvilManager = (*Manager)(nil)
