package oracle_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/adapters/oracle"
	"github.com/gantry-org/gantry-cli/internal/domain"
)

func TestHub(t *testing.T) {
	ctx := context.Background()
	addr := common.HexToAddress("0x00000000000000000000000000000000000000FE")

	t.Run("a fresh feed sits at round zero", func(t *testing.T) {
		hub := oracle.NewHub()
		feed := hub.Connect(addr)

		round, err := feed.LatestRound(ctx)

		require.NoError(t, err)
		assert.Equal(t, uint64(0), round.RoundID)
		assert.Equal(t, big.NewInt(0), round.Price)
		assert.Empty(t, hub.History(addr))
	})

	t.Run("publishes append to the history in order", func(t *testing.T) {
		hub := oracle.NewHub()
		feed := hub.Connect(addr)

		base := time.Unix(1700000000, 0).UTC()
		var prev domain.OracleRound
		for i := 1; i <= 3; i++ {
			next := domain.OracleRound{
				RoundID:   uint64(i),
				Price:     big.NewInt(180000000000),
				UpdatedAt: base.Add(time.Duration(i) * 10 * time.Second),
			}
			require.NoError(t, feed.PublishRound(ctx, prev, next))
			prev = next
		}

		latest, err := feed.LatestRound(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), latest.RoundID)

		history := hub.History(addr)
		require.Len(t, history, 3)
		for i, round := range history {
			assert.Equal(t, uint64(i+1), round.RoundID)
		}
		assert.Equal(t, 10*time.Second, history[1].UpdatedAt.Sub(history[0].UpdatedAt))
	})

	t.Run("feeds are independent per address", func(t *testing.T) {
		hub := oracle.NewHub()
		other := common.HexToAddress("0x00000000000000000000000000000000000000FF")

		require.NoError(t, hub.Connect(addr).PublishRound(ctx, domain.OracleRound{}, domain.OracleRound{
			RoundID: 1,
			Price:   big.NewInt(1),
		}))

		round, err := hub.Connect(other).LatestRound(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), round.RoundID)
		assert.Empty(t, hub.History(other))
	})

	t.Run("history hands out copies", func(t *testing.T) {
		hub := oracle.NewHub()
		require.NoError(t, hub.Connect(addr).PublishRound(ctx, domain.OracleRound{}, domain.OracleRound{
			RoundID: 1,
			Price:   big.NewInt(1),
		}))

		history := hub.History(addr)
		history[0].RoundID = 99

		assert.Equal(t, uint64(1), hub.History(addr)[0].RoundID)
	})
}
