package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// FeedDecimals is the fixed-point scale oracle answers are published at.
const FeedDecimals = 8

// OracleRound is one published observation on a price feed.
type OracleRound struct {
	RoundID   uint64
	Price     *big.Int
	UpdatedAt time.Time
}

// NextRound derives the round that supersedes cur: the id advances by one
// and the timestamp moves to now. Consumers of a feed treat a stale or
// non-advancing round id as an unusable feed, so every warm-up round must
// go through here.
func (cur OracleRound) NextRound(price *big.Int, now time.Time) OracleRound {
	return OracleRound{
		RoundID:   cur.RoundID + 1,
		Price:     new(big.Int).Set(price),
		UpdatedAt: now,
	}
}

// ParsePrice converts a human price string ("1800", "0.9987") into the
// feed's fixed-point representation.
func ParsePrice(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty price")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > FeedDecimals {
		return nil, fmt.Errorf("price %q has more than %d decimal places", s, FeedDecimals)
	}
	frac += strings.Repeat("0", FeedDecimals-len(frac))
	out, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid price %q", s)
	}
	return out, nil
}
