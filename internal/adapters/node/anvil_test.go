package node

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/domain"
)

func TestBuildArgs_Basic(t *testing.T) {
	instance := &domain.NodeInstance{
		Port: "8545",
	}
	args := buildArgs(instance)
	assert.Equal(t, []string{"--port", "8545", "--host", "0.0.0.0"}, args)
}

func TestBuildArgs_WithChainID(t *testing.T) {
	instance := &domain.NodeInstance{
		Port:    "9000",
		ChainID: "31337",
	}
	args := buildArgs(instance)
	assert.Equal(t, []string{"--port", "9000", "--host", "0.0.0.0", "--chain-id", "31337"}, args)
}

func TestFillFiles_Defaults(t *testing.T) {
	instance := &domain.NodeInstance{Name: "local"}
	fillFiles(instance)

	assert.Equal(t, DefaultPort, instance.Port)
	assert.Equal(t, filepath.Join(os.TempDir(), "gantry-local.pid"), instance.PidFile)
	assert.Equal(t, filepath.Join(os.TempDir(), "gantry-local.log"), instance.LogFile)
}

func TestFillFiles_PresetPathsPreserved(t *testing.T) {
	instance := &domain.NodeInstance{
		Name:    "local",
		Port:    "9000",
		PidFile: "/custom/my.pid",
		LogFile: "/custom/my.log",
	}
	fillFiles(instance)

	assert.Equal(t, "9000", instance.Port)
	assert.Equal(t, "/custom/my.pid", instance.PidFile)
	assert.Equal(t, "/custom/my.log", instance.LogFile)
}

// newMockRPCServer answers every JSON-RPC post with the given body.
func newMockRPCServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

// instanceForServer points an instance at the test server, with a pid
// file naming this test process so the instance counts as running.
func instanceForServer(t *testing.T, server *httptest.Server) *domain.NodeInstance {
	t.Helper()
	parts := strings.Split(server.URL, ":")
	port := parts[len(parts)-1]

	pidFile := filepath.Join(t.TempDir(), "node.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644))

	return &domain.NodeInstance{
		Name:    "test",
		Port:    port,
		PidFile: pidFile,
		LogFile: filepath.Join(t.TempDir(), "node.log"),
	}
}

func TestGetStatus_NotRunning(t *testing.T) {
	m := NewAnvilManager()
	instance := &domain.NodeInstance{
		Name:    "test",
		PidFile: filepath.Join(t.TempDir(), "missing.pid"),
		LogFile: filepath.Join(t.TempDir(), "node.log"),
	}

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, instance.LogFile, status.LogFile)
}

func TestGetStatus_StalePidFile(t *testing.T) {
	m := NewAnvilManager()
	pidFile := filepath.Join(t.TempDir(), "stale.pid")
	// Beyond any real pid_max, so the liveness probe fails.
	require.NoError(t, os.WriteFile(pidFile, []byte("99999999"), 0644))

	status, err := m.GetStatus(context.Background(), &domain.NodeInstance{
		Name:    "test",
		PidFile: pidFile,
	})
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestGetStatus_Healthy(t *testing.T) {
	server := newMockRPCServer(t, `{"jsonrpc":"2.0","result":"0x10","id":1}`)
	defer server.Close()

	m := NewAnvilManager()
	instance := instanceForServer(t, server)

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.True(t, status.RPCHealthy)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.Equal(t, "http://localhost:"+instance.Port, status.RPCURL)
}

func TestGetStatus_RPCError(t *testing.T) {
	server := newMockRPCServer(t, `{"jsonrpc":"2.0","error":{"code":-32000,"message":"node is drowning"},"id":1}`)
	defer server.Close()

	m := NewAnvilManager()
	instance := instanceForServer(t, server)

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.False(t, status.RPCHealthy)
	assert.Contains(t, status.Error, "node is drowning")
}

func TestStop_NoPidFile(t *testing.T) {
	m := NewAnvilManager()

	err := m.Stop(context.Background(), &domain.NodeInstance{
		Name:    "test",
		PidFile: filepath.Join(t.TempDir(), "missing.pid"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read PID file")
}

func TestStop_InvalidPidFile(t *testing.T) {
	m := NewAnvilManager()
	pidFile := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte("not a pid"), 0644))

	err := m.Stop(context.Background(), &domain.NodeInstance{
		Name:    "test",
		PidFile: pidFile,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID")
}

func TestStreamLogs_MissingFile(t *testing.T) {
	m := NewAnvilManager()

	err := m.StreamLogs(context.Background(), &domain.NodeInstance{
		Name:    "test",
		LogFile: filepath.Join(t.TempDir(), "missing.log"),
	}, os.Stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file does not exist")
}
