package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Mock feed surface, Chainlink aggregator shaped. The mock keeps one
// previous round beside the latest, so a publish writes both.
var (
	funcLatestRoundData   = w3.MustNewFunc("latestRoundData()", "uint80,int256,uint256,uint256,uint80")
	funcSetPrevPrice      = w3.MustNewFunc("setPrevPrice(int256)", "")
	funcSetPrevRoundID    = w3.MustNewFunc("setPrevRoundId(uint80)", "")
	funcSetPrevUpdateTime = w3.MustNewFunc("setPrevUpdateTime(uint256)", "")
	funcSetUpdateTime     = w3.MustNewFunc("setUpdateTime(uint256)", "")
	funcSetPrice          = w3.MustNewFunc("setPrice(int256)", "")
	funcSetLatestRoundID  = w3.MustNewFunc("setLatestRoundId(uint80)", "")
)

// Connector binds price feeds living on a ledger. Reads go through view
// calls, writes through submitted transactions.
type Connector struct {
	ledger usecase.Ledger
}

// NewConnector creates a feed connector over the ledger.
func NewConnector(ledger usecase.Ledger) *Connector {
	return &Connector{ledger: ledger}
}

// Connect binds the feed at the address.
func (c *Connector) Connect(address common.Address) usecase.OracleFeed {
	return &chainFeed{ledger: c.ledger, address: address}
}

type chainFeed struct {
	ledger  usecase.Ledger
	address common.Address
}

// LatestRound reads the feed's latest observation.
func (f *chainFeed) LatestRound(ctx context.Context) (domain.OracleRound, error) {
	data, err := funcLatestRoundData.EncodeArgs()
	if err != nil {
		return domain.OracleRound{}, fmt.Errorf("encode latestRoundData: %w", err)
	}

	out, err := f.ledger.CallView(ctx, f.address, data)
	if err != nil {
		return domain.OracleRound{}, fmt.Errorf("read feed %s: %w", f.address.Hex(), err)
	}

	var roundID, answer, startedAt, updatedAt, answeredInRound *big.Int
	if err := funcLatestRoundData.DecodeReturns(out, &roundID, &answer, &startedAt, &updatedAt, &answeredInRound); err != nil {
		return domain.OracleRound{}, fmt.Errorf("decode latestRoundData: %w", err)
	}

	return domain.OracleRound{
		RoundID:   roundID.Uint64(),
		Price:     answer,
		UpdatedAt: time.Unix(updatedAt.Int64(), 0).UTC(),
	}, nil
}

// PublishRound shifts prev into the previous-round slots, then writes
// next as the latest observation. The latest round id lands last, so a
// consumer polling mid-publish sees the old round, never a torn one.
func (f *chainFeed) PublishRound(ctx context.Context, prev, next domain.OracleRound) error {
	steps := []struct {
		fn   *w3.Func
		sig  string
		args []any
	}{
		{funcSetPrevPrice, "setPrevPrice(int256)", []any{prev.Price}},
		{funcSetPrevRoundID, "setPrevRoundId(uint80)", []any{new(big.Int).SetUint64(prev.RoundID)}},
		{funcSetPrevUpdateTime, "setPrevUpdateTime(uint256)", []any{big.NewInt(prev.UpdatedAt.Unix())}},
		{funcSetUpdateTime, "setUpdateTime(uint256)", []any{big.NewInt(next.UpdatedAt.Unix())}},
		{funcSetPrice, "setPrice(int256)", []any{next.Price}},
		{funcSetLatestRoundID, "setLatestRoundId(uint80)", []any{new(big.Int).SetUint64(next.RoundID)}},
	}

	for _, step := range steps {
		data, err := step.fn.EncodeArgs(step.args...)
		if err != nil {
			return fmt.Errorf("encode %s: %w", step.sig, err)
		}
		call := &domain.Call{To: f.address, Method: step.sig, Data: data}
		if _, err := f.ledger.SubmitCall(ctx, call); err != nil {
			return fmt.Errorf("publish %s: %w", step.sig, err)
		}
	}
	return nil
}

// Ensure Connector implements OracleFeedConnector
var _ usecase.OracleFeedConnector = (*Connector)(nil)
