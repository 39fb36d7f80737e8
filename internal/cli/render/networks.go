package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NetworksRenderer writes the output of the networks command.
type NetworksRenderer struct {
	out io.Writer
}

func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// RenderNetworksList prints one line per network with the probed chain
// id, or the probe failure.
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in gantry.toml [rpc_endpoints]")
		return nil
	}

	fmt.Fprintf(r.out, "Networks (%d):\n\n", len(result.Networks))
	for _, net := range result.Networks {
		switch {
		case net.Error != nil:
			fmt.Fprintf(r.out, "  %s %s: %v\n", color.RedString("✗"), net.Name, net.Error)
		case net.RPCURL == "":
			fmt.Fprintf(r.out, "  %s %s (chain %d, in-process)\n", color.GreenString("✓"), net.Name, net.ChainID)
		default:
			fmt.Fprintf(r.out, "  %s %s (chain %d) %s\n",
				color.GreenString("✓"), net.Name, net.ChainID, color.New(color.Faint).Sprint(net.RPCURL))
		}
	}
	return nil
}
