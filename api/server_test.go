package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxhall/papertrade/auth"
	"github.com/rxhall/papertrade/market"
	"github.com/rxhall/papertrade/sim"
	"github.com/rxhall/papertrade/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// holdFeed keeps every price where it is, so handlers see deterministic state.
type holdFeed struct{}

func (holdFeed) Next(s market.Stock, now time.Time) market.Stock {
	s.AppendHistory(market.PricePoint{Time: now, Price: s.Price})
	return s
}

func testStocks() []market.Stock {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	acme := market.Stock{Symbol: "ACME", CompanyName: "Acme Corp.", Price: 150, Sector: "Industrials"}
	beta := market.Stock{Symbol: "BETA", CompanyName: "Beta Systems", Price: 50, Sector: "Technology"}

	// Enough history for the default backtest windows.
	for i := 0; i < 20; i++ {
		t := base.Add(time.Duration(i) * 24 * time.Hour)
		acme.AppendHistory(market.PricePoint{Time: t, Price: 140 + float64(i)})
		beta.AppendHistory(market.PricePoint{Time: t, Price: 50})
	}
	return []market.Stock{acme, beta}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.NewMemory()
	engine := sim.NewEngine(st, holdFeed{}, nil, 100000, testStocks())
	return NewServer(engine, auth.NewService(st), NewHub())
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"email": "ada@example.com", "password": "hunter22", "name": "Ada",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user auth.User
	decode(t, w, &user)
	assert.NotEmpty(t, user.ID)
	assert.NotContains(t, w.Body.String(), "hunter22")

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"email": "ada@example.com", "password": "other", "name": "Imposter",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email": "ada@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email": "ada@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStocks(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := doJSON(t, r, http.MethodGet, "/api/stocks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stocks []market.Stock `json:"stocks"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Stocks, 2)
	assert.Equal(t, "ACME", resp.Stocks[0].Symbol)
	assert.Equal(t, "BETA", resp.Stocks[1].Symbol)

	w = doJSON(t, r, http.MethodGet, "/api/stocks/ACME", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stock market.Stock
	decode(t, w, &stock)
	assert.Equal(t, 150.0, stock.Price)

	w = doJSON(t, r, http.MethodGet, "/api/stocks/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceMarketOrder(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := doJSON(t, r, http.MethodPost, "/api/orders", sim.OrderRequest{
		Symbol: "ACME", Action: sim.Buy, OrderType: sim.Market, Quantity: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var trade sim.Trade
	decode(t, w, &trade)
	assert.Equal(t, sim.Executed, trade.Status)
	assert.Equal(t, 1500.0, trade.TotalValue)

	w = doJSON(t, r, http.MethodGet, "/api/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pf sim.Portfolio
	decode(t, w, &pf)
	assert.Equal(t, 98500.0, pf.AvailableCapital)
	assert.Equal(t, 1500.0, pf.InvestedCapital)
}

func TestPlaceOrderErrors(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	tests := []struct {
		name string
		req  sim.OrderRequest
		code int
	}{
		{"unknown symbol", sim.OrderRequest{Symbol: "NOPE", Action: sim.Buy, OrderType: sim.Market, Quantity: 1}, http.StatusNotFound},
		{"insufficient funds", sim.OrderRequest{Symbol: "ACME", Action: sim.Buy, OrderType: sim.Market, Quantity: 100000}, http.StatusUnprocessableEntity},
		{"zero quantity", sim.OrderRequest{Symbol: "ACME", Action: sim.Buy, OrderType: sim.Market, Quantity: 0}, http.StatusBadRequest},
		{"bad order type", sim.OrderRequest{Symbol: "ACME", Action: sim.Buy, OrderType: "stop", Quantity: 1}, http.StatusBadRequest},
		{"limit without price", sim.OrderRequest{Symbol: "ACME", Action: sim.Buy, OrderType: sim.Limit, Quantity: 1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/orders", tt.req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestLimitOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := doJSON(t, r, http.MethodPost, "/api/orders", sim.OrderRequest{
		Symbol: "ACME", Action: sim.Buy, OrderType: sim.Limit, Quantity: 10, LimitPrice: 140,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var order sim.Trade
	decode(t, w, &order)
	assert.Equal(t, sim.Pending, order.Status)

	w = doJSON(t, r, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Orders []sim.Trade `json:"orders"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Orders, 1)

	w = doJSON(t, r, http.MethodDelete, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/portfolio", nil)
	var pf sim.Portfolio
	decode(t, w, &pf)
	assert.Equal(t, 100000.0, pf.AvailableCapital)
}

func TestResetPortfolio(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	doJSON(t, r, http.MethodPost, "/api/orders", sim.OrderRequest{
		Symbol: "ACME", Action: sim.Buy, OrderType: sim.Market, Quantity: 10,
	})

	w := doJSON(t, r, http.MethodPost, "/api/portfolio/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var pf sim.Portfolio
	decode(t, w, &pf)
	assert.Equal(t, 100000.0, pf.AvailableCapital)
	assert.Empty(t, pf.Positions)

	w = doJSON(t, r, http.MethodGet, "/api/trades", nil)
	var resp struct {
		Trades []sim.Trade `json:"trades"`
	}
	decode(t, w, &resp)
	assert.Empty(t, resp.Trades)
}

func TestClearTrades(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	doJSON(t, r, http.MethodPost, "/api/orders", sim.OrderRequest{
		Symbol: "BETA", Action: sim.Buy, OrderType: sim.Market, Quantity: 2,
	})

	w := doJSON(t, r, http.MethodDelete, "/api/trades", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/trades", nil)
	var resp struct {
		Trades []sim.Trade `json:"trades"`
	}
	decode(t, w, &resp)
	assert.Empty(t, resp.Trades)
}

func TestWatchlist(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := doJSON(t, r, http.MethodPost, "/api/watchlist", gin.H{"symbol": "ACME"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Watchlist []sim.WatchlistItem `json:"watchlist"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Watchlist, 1)
	assert.Equal(t, "ACME", resp.Watchlist[0].Symbol)

	// Adding the same symbol again is a no-op.
	w = doJSON(t, r, http.MethodPost, "/api/watchlist", gin.H{"symbol": "ACME"})
	decode(t, w, &resp)
	assert.Len(t, resp.Watchlist, 1)

	w = doJSON(t, r, http.MethodPost, "/api/watchlist", gin.H{"symbol": "NOPE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/watchlist/ACME/alert", alertRequest{Enabled: true, Price: 160})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Watchlist, 1)
	assert.True(t, resp.Watchlist[0].AlertEnabled)
	assert.Equal(t, 160.0, resp.Watchlist[0].AlertPrice)

	w = doJSON(t, r, http.MethodPut, "/api/watchlist/NOPE/alert", alertRequest{Enabled: true, Price: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/watchlist/ACME", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Empty(t, resp.Watchlist)
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Leaderboard []struct {
			Rank int    `json:"rank"`
			Name string `json:"name"`
		} `json:"leaderboard"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Leaderboard, 10)
	assert.Equal(t, 1, resp.Leaderboard[0].Rank)
}

func TestBacktest(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := doJSON(t, r, http.MethodPost, "/api/backtest", gin.H{
		"symbol": "ACME", "fastPeriod": 2, "slowPeriod": 3, "initialCapital": 10000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Symbol       string  `json:"symbol"`
		FinalCapital float64 `json:"finalCapital"`
		Trades       int     `json:"trades"`
	}
	decode(t, w, &result)
	assert.Equal(t, "ACME", result.Symbol)
	assert.Greater(t, result.Trades, 0)

	w = doJSON(t, r, http.MethodPost, "/api/backtest", gin.H{"symbol": "NOPE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/backtest", gin.H{
		"symbol": "ACME", "fastPeriod": 9, "slowPeriod": 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "papertrade")
}
