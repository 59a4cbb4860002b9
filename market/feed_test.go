package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomWalkStaysWithinVolatility(t *testing.T) {
	w := NewRandomWalk(0.02, 42)
	s := Stock{Symbol: "AAPL", Price: 178.92}
	now := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		prev := s.Price
		s = w.Next(s, now)
		now = now.Add(3 * time.Second)

		bound := prev*0.02 + 0.01 // rounding to cents can add up to half a cent each way
		assert.LessOrEqual(t, abs(s.Price-prev), bound, "tick %d moved more than ±2%%", i)
		assert.InDelta(t, s.Price-prev, s.Change, 0.011)
	}
}

func TestRandomWalkAppendsHistory(t *testing.T) {
	w := NewRandomWalk(0.02, 7)
	s := Stock{Symbol: "MSFT", Price: 315.75}
	now := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

	s = w.Next(s, now)
	require.Len(t, s.PriceHistory, 1)
	assert.Equal(t, now, s.PriceHistory[0].Time)
	assert.Equal(t, s.Price, s.PriceHistory[0].Price)
}

func TestRandomWalkDoesNotMutateInput(t *testing.T) {
	w := NewRandomWalk(0.02, 7)
	orig := Stock{Symbol: "MSFT", Price: 315.75, PriceHistory: []PricePoint{{Price: 315.75}}}

	_ = w.Next(orig, time.Now())

	assert.Equal(t, 315.75, orig.Price)
	assert.Len(t, orig.PriceHistory, 1)
}

func TestAppendHistoryDropsOldestFirst(t *testing.T) {
	s := Stock{Symbol: "WMT", Price: 59.87}
	base := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

	for i := 0; i < MaxHistory+25; i++ {
		s.AppendHistory(PricePoint{Time: base.Add(time.Duration(i) * time.Second), Price: float64(i)})
	}

	require.Len(t, s.PriceHistory, MaxHistory)
	assert.Equal(t, float64(25), s.PriceHistory[0].Price, "oldest points dropped first")
	assert.Equal(t, float64(MaxHistory+24), s.PriceHistory[MaxHistory-1].Price)
}

func TestSeedCatalogue(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	stocks := Seed(now)

	require.Len(t, stocks, 10)

	seen := map[string]bool{}
	for _, s := range stocks {
		assert.False(t, seen[s.Symbol], "symbols are unique")
		seen[s.Symbol] = true

		assert.NotEmpty(t, s.CompanyName)
		assert.NotEmpty(t, s.Sector)
		assert.Positive(t, s.Price)
		require.NotEmpty(t, s.PriceHistory)
		last := s.PriceHistory[len(s.PriceHistory)-1]
		assert.Equal(t, s.Price, last.Price, "history ends at the quoted price")
		assert.Equal(t, now, last.Time)
	}
	assert.True(t, seen["AAPL"])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
