package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// DefaultPort is the port a node starts on when none is given.
const DefaultPort = "8545"

// AnvilManager runs local anvil dev nodes as background processes, one
// per instance name, tracked through pid files.
type AnvilManager struct{}

// NewAnvilManager creates a new anvil node manager.
func NewAnvilManager() *AnvilManager {
	return &AnvilManager{}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      int             `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Start launches an anvil process for the instance and records its pid.
func (m *AnvilManager) Start(ctx context.Context, instance *domain.NodeInstance) error {
	fillFiles(instance)

	if pid, running := m.runningPid(instance); running {
		return fmt.Errorf("node '%s' is already running (PID %d)", instance.Name, pid)
	}

	logFile, err := os.Create(instance.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	cmd := exec.Command("anvil", buildArgs(instance)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("failed to start anvil: %w", err)
	}
	logFile.Close()

	if err := writePidFile(instance.PidFile, cmd.Process.Pid); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	// Give the process a moment to bind its port before callers probe it.
	time.Sleep(200 * time.Millisecond)

	return nil
}

// Stop terminates the instance's process, escalating from SIGTERM to
// SIGKILL after a grace period.
func (m *AnvilManager) Stop(ctx context.Context, instance *domain.NodeInstance) error {
	fillFiles(instance)

	pid, err := readPidFile(instance.PidFile)
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		_, _ = process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = process.Kill()
		<-done
	}

	if err := os.Remove(instance.PidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}

	return nil
}

// GetStatus reports whether the instance runs and whether its RPC
// endpoint answers.
func (m *AnvilManager) GetStatus(ctx context.Context, instance *domain.NodeInstance) (*domain.NodeStatus, error) {
	fillFiles(instance)

	status := &domain.NodeStatus{LogFile: instance.LogFile}

	pid, running := m.runningPid(instance)
	if !running {
		return status, nil
	}

	status.Running = true
	status.PID = pid
	status.RPCURL = fmt.Sprintf("http://localhost:%s", instance.Port)

	if err := m.checkRPCHealth(ctx, instance); err != nil {
		status.Error = err.Error()
	} else {
		status.RPCHealthy = true
	}

	return status, nil
}

// StreamLogs copies the instance's log file to the writer and follows
// appended output until the context ends.
func (m *AnvilManager) StreamLogs(ctx context.Context, instance *domain.NodeInstance, writer io.Writer) error {
	fillFiles(instance)

	f, err := os.Open(instance.LogFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("log file does not exist: %s", instance.LogFile)
		}
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := io.Copy(writer, f); err != nil {
			return fmt.Errorf("failed to stream logs: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runningPid reads the instance's pid file and checks the process is
// still alive.
func (m *AnvilManager) runningPid(instance *domain.NodeInstance) (int, bool) {
	pid, err := readPidFile(instance.PidFile)
	if err != nil {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}
	return pid, true
}

// checkRPCHealth posts an eth_blockNumber request at the instance.
func (m *AnvilManager) checkRPCHealth(ctx context.Context, instance *domain.NodeInstance) error {
	payload, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		Method:  "eth_blockNumber",
		Params:  []interface{}{},
		ID:      1,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%s", instance.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc not responding: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc returned HTTP %d", httpResp.StatusCode)
	}

	var resp rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("rpc error: %s", resp.Error.Message)
	}
	return nil
}

// buildArgs assembles the anvil command line for an instance.
func buildArgs(instance *domain.NodeInstance) []string {
	args := []string{"--port", instance.Port, "--host", "0.0.0.0"}
	if instance.ChainID != "" {
		args = append(args, "--chain-id", instance.ChainID)
	}
	return args
}

// fillFiles derives the pid and log file locations for instances that
// do not carry them yet.
func fillFiles(instance *domain.NodeInstance) {
	if instance.Port == "" {
		instance.Port = DefaultPort
	}
	if instance.PidFile == "" {
		instance.PidFile = filepath.Join(os.TempDir(), fmt.Sprintf("gantry-%s.pid", instance.Name))
	}
	if instance.LogFile == "" {
		instance.LogFile = filepath.Join(os.TempDir(), fmt.Sprintf("gantry-%s.log", instance.Name))
	}
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %s", string(data))
	}
	return pid, nil
}

func writePidFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0644)
}

// Ensure AnvilManager implements NodeManager
var _ usecase.NodeManager = (*AnvilManager)(nil)
