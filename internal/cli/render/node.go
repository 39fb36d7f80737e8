package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NodeRenderer writes the output of the node subcommands.
type NodeRenderer struct {
	out io.Writer
}

func NewNodeRenderer(out io.Writer) *NodeRenderer {
	return &NodeRenderer{out: out}
}

// Render picks the layout for the operation that ran.
func (r *NodeRenderer) Render(result *usecase.ManageNodeResult) error {
	switch result.Operation {
	case "start", "restart":
		return r.renderUp(result)
	case "stop":
		if result.Success {
			fmt.Fprintf(r.out, "%s %s\n", color.GreenString("✓"), result.Message)
		}
		return nil
	case "status":
		return r.renderStatus(result)
	default:
		return fmt.Errorf("unknown operation: %s", result.Operation)
	}
}

func (r *NodeRenderer) renderUp(result *usecase.ManageNodeResult) error {
	if !result.Success {
		return nil
	}
	fmt.Fprintf(r.out, "%s %s\n", color.GreenString("✓"), result.Message)
	fmt.Fprintf(r.out, "  rpc:  %s\n", result.Status.RPCURL)
	fmt.Fprintf(r.out, "  logs: %s\n", faint(result.Status.LogFile))
	return nil
}

func (r *NodeRenderer) renderStatus(result *usecase.ManageNodeResult) error {
	st := result.Status
	if !st.Running {
		fmt.Fprintf(r.out, "%s node '%s' is not running\n", color.RedString("✗"), result.Instance.Name)
		fmt.Fprintf(r.out, "  pid file: %s\n", faint(result.Instance.PidFile))
		fmt.Fprintf(r.out, "  log file: %s\n", faint(result.Instance.LogFile))
		return nil
	}

	fmt.Fprintf(r.out, "%s node '%s' running with PID %d\n", color.GreenString("✓"), result.Instance.Name, st.PID)
	health := color.GreenString("responding")
	if !st.RPCHealthy {
		health = color.RedString("not responding")
	}
	fmt.Fprintf(r.out, "  rpc:  %s (%s)\n", st.RPCURL, health)
	fmt.Fprintf(r.out, "  logs: %s\n", faint(st.LogFile))
	return nil
}

// RenderLogsHeader prints the banner shown before log streaming starts.
func (r *NodeRenderer) RenderLogsHeader(result *usecase.ManageNodeResult) error {
	fmt.Fprintf(r.out, "Following logs for node '%s', Ctrl+C to exit\n", result.Instance.Name)
	fmt.Fprintf(r.out, "%s\n\n", faint(result.Status.LogFile))
	return nil
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}
