package oracle

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Hub keeps price feed state in memory, one feed per address. It pairs
// with the memory ledger: the ledger logs the publish calls, the hub
// answers the reads the ledger cannot.
type Hub struct {
	mu    sync.Mutex
	feeds map[common.Address]*feedState
}

type feedState struct {
	latest  domain.OracleRound
	history []domain.OracleRound
}

// NewHub creates an empty feed hub.
func NewHub() *Hub {
	return &Hub{feeds: make(map[common.Address]*feedState)}
}

// Connect binds a feed at the address, creating empty state on first
// contact. A fresh feed sits at round zero with a zero price, which is
// what a just-deployed mock reports.
func (h *Hub) Connect(address common.Address) usecase.OracleFeed {
	return &hubFeed{hub: h, address: address}
}

// History returns every round published to the feed, in order.
func (h *Hub) History(address common.Address) []domain.OracleRound {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.feeds[address]
	if !ok {
		return nil
	}
	out := make([]domain.OracleRound, len(state.history))
	copy(out, state.history)
	return out
}

func (h *Hub) state(address common.Address) *feedState {
	state, ok := h.feeds[address]
	if !ok {
		state = &feedState{latest: domain.OracleRound{Price: big.NewInt(0)}}
		h.feeds[address] = state
	}
	return state
}

type hubFeed struct {
	hub     *Hub
	address common.Address
}

// LatestRound returns the feed's latest published round.
func (f *hubFeed) LatestRound(ctx context.Context) (domain.OracleRound, error) {
	f.hub.mu.Lock()
	defer f.hub.mu.Unlock()
	return f.hub.state(f.address).latest, nil
}

// PublishRound records next as the feed's latest observation.
func (f *hubFeed) PublishRound(ctx context.Context, prev, next domain.OracleRound) error {
	f.hub.mu.Lock()
	defer f.hub.mu.Unlock()

	state := f.hub.state(f.address)
	state.latest = next
	state.history = append(state.history, next)
	return nil
}

// Ensure Hub implements OracleFeedConnector
var _ usecase.OracleFeedConnector = (*Hub)(nil)
