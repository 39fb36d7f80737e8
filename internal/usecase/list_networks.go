package usecase

import (
	"context"
)

// ListNetworksParams is empty today; a listing always covers every
// configured network.
type ListNetworksParams struct{}

// ListNetworksResult holds one row per configured network.
type ListNetworksResult struct {
	Networks []NetworkStatus
}

// NetworkStatus is one probed network. A probe failure lands in Error
// on that row only.
type NetworkStatus struct {
	Name    string
	ChainID uint64
	RPCURL  string
	Error   error
}

// ListNetworks probes every network a plan could target.
type ListNetworks struct {
	resolver NetworkResolver
}

// NewListNetworks creates the network listing use case.
func NewListNetworks(resolver NetworkResolver) *ListNetworks {
	return &ListNetworks{resolver: resolver}
}

// Run resolves each configured name, which fetches the chain id when it
// is not cached yet.
func (uc *ListNetworks) Run(ctx context.Context, _ ListNetworksParams) (*ListNetworksResult, error) {
	names := uc.resolver.Names()
	statuses := make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		st := NetworkStatus{Name: name}
		if net, err := uc.resolver.Resolve(name); err != nil {
			st.Error = err
		} else {
			st.ChainID = net.ChainID
			st.RPCURL = net.RPCURL
		}
		statuses = append(statuses, st)
	}
	return &ListNetworksResult{Networks: statuses}, nil
}
