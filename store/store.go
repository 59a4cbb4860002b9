// Package store is the persistence gateway: a string-keyed, JSON-valued
// key-value store plus helpers for loading and saving the simulator's
// collections.
//
// A reader must tolerate an absent key (first run) and must treat malformed
// JSON as equivalent to absent.
package store

// Keys under which the simulator persists its collections.
const (
	KeyUsers         = "users"
	KeyTrades        = "trades"
	KeyPendingOrders = "pendingOrders"
	KeyPortfolio     = "portfolio"
	KeyWatchlist     = "watchlist"
)

// Store is a minimal key-value store. Get returns ok=false when the key is
// absent.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}
