package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToWatchlistIsIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t, 100000)

	require.NoError(t, e.AddToWatchlist("ACME"))
	require.NoError(t, e.AddToWatchlist("ACME"))

	items := e.Watchlist()
	require.Len(t, items, 1)
	assert.Equal(t, "ACME", items[0].Symbol)
	assert.Equal(t, "Acme Corp.", items[0].CompanyName)
	assert.False(t, items[0].AlertEnabled)
}

func TestAddUnknownSymbolToWatchlist(t *testing.T) {
	e, _, _ := newTestEngine(t, 100000)
	assert.ErrorIs(t, e.AddToWatchlist("NOPE"), ErrUnknownSymbol)
}

func TestRemoveFromWatchlist(t *testing.T) {
	e, _, _ := newTestEngine(t, 100000)

	require.NoError(t, e.AddToWatchlist("ACME"))
	require.NoError(t, e.AddToWatchlist("BETA"))

	e.RemoveFromWatchlist("ACME")

	items := e.Watchlist()
	require.Len(t, items, 1)
	assert.Equal(t, "BETA", items[0].Symbol)

	// Removing an absent symbol is a no-op.
	e.RemoveFromWatchlist("ACME")
	assert.Len(t, e.Watchlist(), 1)
}

func TestSetAlertValidation(t *testing.T) {
	e, _, _ := newTestEngine(t, 100000)
	require.NoError(t, e.AddToWatchlist("ACME"))

	assert.ErrorIs(t, e.SetAlertPrice("ACME", 0), ErrInvalidPrice)
	assert.Error(t, e.SetAlertPrice("BETA", 100), "BETA is not on the watchlist")
	assert.Error(t, e.ToggleAlert("BETA", true))
}

func TestAlertFiresOnceWhenThresholdCrossed(t *testing.T) {
	e, feed, _ := newTestEngine(t, 100000)
	l := &recordingListener{}
	e.SetListener(l)

	require.NoError(t, e.AddToWatchlist("ACME")) // price 150
	require.NoError(t, e.SetAlertPrice("ACME", 155))
	require.NoError(t, e.ToggleAlert("ACME", true))

	now := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

	// Below the threshold: nothing fires.
	feed.push("ACME", 152)
	e.Tick(now)
	assert.Empty(t, l.alerts)

	// Crossing up fires and disarms the alert.
	feed.push("ACME", 156)
	e.Tick(now.Add(3 * time.Second))
	require.Len(t, l.alerts, 1)
	assert.Equal(t, "ACME", l.alerts[0].Symbol)

	items := e.Watchlist()
	require.Len(t, items, 1)
	assert.False(t, items[0].AlertEnabled, "fired alert stays off until re-armed")

	// Further crossings do not fire while disarmed.
	feed.push("ACME", 150)
	e.Tick(now.Add(6 * time.Second))
	feed.push("ACME", 160)
	e.Tick(now.Add(9 * time.Second))
	assert.Len(t, l.alerts, 1)
}

func TestAlertFiresOnDownwardCross(t *testing.T) {
	e, feed, _ := newTestEngine(t, 100000)
	l := &recordingListener{}
	e.SetListener(l)

	require.NoError(t, e.AddToWatchlist("BETA")) // price 50
	require.NoError(t, e.SetAlertPrice("BETA", 45))
	require.NoError(t, e.ToggleAlert("BETA", true))

	feed.push("BETA", 44)
	e.Tick(time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC))

	require.Len(t, l.alerts, 1)
	assert.Equal(t, "BETA", l.alerts[0].Symbol)
}

func TestDisabledAlertNeverFires(t *testing.T) {
	e, feed, _ := newTestEngine(t, 100000)
	l := &recordingListener{}
	e.SetListener(l)

	require.NoError(t, e.AddToWatchlist("ACME"))
	require.NoError(t, e.SetAlertPrice("ACME", 155))
	// alertEnabled stays false

	feed.push("ACME", 160)
	e.Tick(time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC))
	assert.Empty(t, l.alerts)
}
