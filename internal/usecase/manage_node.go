package usecase

import (
	"context"
	"fmt"

	"github.com/gantry-org/gantry-cli/internal/domain"
)

// ManageNode drives the lifecycle of the local dev node used to rehearse
// bootstraps before they touch a real network.
type ManageNode struct {
	nodes    NodeManager
	progress ProgressSink
}

// NewManageNode creates the node management use case.
func NewManageNode(nodes NodeManager, progress ProgressSink) *ManageNode {
	return &ManageNode{nodes: nodes, progress: progress}
}

// ManageNodeParams selects the operation and the instance it applies to.
type ManageNodeParams struct {
	Operation string // start, stop, restart, status, logs
	Name      string
	Port      string
	ChainID   string
}

// ManageNodeResult carries the instance state after the operation.
type ManageNodeResult struct {
	Operation string
	Instance  *domain.NodeInstance
	Status    *domain.NodeStatus
	Success   bool
	Message   string
}

// Execute runs a single node operation.
func (m *ManageNode) Execute(ctx context.Context, params ManageNodeParams) (*ManageNodeResult, error) {
	inst := &domain.NodeInstance{
		Name:    params.Name,
		Port:    params.Port,
		ChainID: params.ChainID,
	}

	switch params.Operation {
	case "start":
		return m.start(ctx, inst)
	case "stop":
		return m.stop(ctx, inst)
	case "restart":
		if _, err := m.stop(ctx, inst); err != nil {
			return nil, err
		}
		res, err := m.start(ctx, inst)
		if err != nil {
			return nil, err
		}
		res.Operation = "restart"
		res.Message = fmt.Sprintf("Node '%s' restarted with PID %d", inst.Name, res.Status.PID)
		return res, nil
	case "status", "logs":
		// Log streaming happens in the CLI layer; both operations only
		// need the current status here.
		st, err := m.nodes.GetStatus(ctx, inst)
		if err != nil {
			return nil, fmt.Errorf("failed to get status: %w", err)
		}
		return &ManageNodeResult{
			Operation: params.Operation,
			Instance:  inst,
			Status:    st,
			Success:   true,
		}, nil
	default:
		return nil, fmt.Errorf("unknown operation: %s", params.Operation)
	}
}

func (m *ManageNode) start(ctx context.Context, inst *domain.NodeInstance) (*ManageNodeResult, error) {
	if st, err := m.nodes.GetStatus(ctx, inst); err == nil && st.Running {
		return nil, fmt.Errorf("node '%s' is already running (PID %d)", inst.Name, st.PID)
	}

	m.progress.Info(fmt.Sprintf("Starting node '%s' on port %s", inst.Name, inst.Port))
	if err := m.nodes.Start(ctx, inst); err != nil {
		return nil, fmt.Errorf("failed to start node: %w", err)
	}

	st, err := m.nodes.GetStatus(ctx, inst)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}

	return &ManageNodeResult{
		Operation: "start",
		Instance:  inst,
		Status:    st,
		Success:   true,
		Message:   fmt.Sprintf("Node '%s' started with PID %d", inst.Name, st.PID),
	}, nil
}

func (m *ManageNode) stop(ctx context.Context, inst *domain.NodeInstance) (*ManageNodeResult, error) {
	// Stopping a node that is not running is a no-op.
	st, err := m.nodes.GetStatus(ctx, inst)
	if err != nil || !st.Running {
		return &ManageNodeResult{
			Operation: "stop",
			Instance:  inst,
			Success:   true,
			Message:   fmt.Sprintf("Node '%s' is not running", inst.Name),
		}, nil
	}

	m.progress.Info(fmt.Sprintf("Stopping node '%s'", inst.Name))
	if err := m.nodes.Stop(ctx, inst); err != nil {
		return nil, fmt.Errorf("failed to stop node: %w", err)
	}

	return &ManageNodeResult{
		Operation: "stop",
		Instance:  inst,
		Success:   true,
		Message:   fmt.Sprintf("Node '%s' stopped", inst.Name),
	}, nil
}
