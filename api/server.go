// Package api is the UI surface: a JSON/HTTP command-and-query layer over
// the engine, plus a websocket price stream and the metrics endpoint.
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rxhall/papertrade/auth"
	"github.com/rxhall/papertrade/backtest"
	"github.com/rxhall/papertrade/leaderboard"
	"github.com/rxhall/papertrade/sim"
)

type Server struct {
	engine *sim.Engine
	auth   *auth.Service
	hub    *Hub
	router *gin.Engine
}

func NewServer(engine *sim.Engine, authSvc *auth.Service, hub *Hub) *Server {
	s := &Server{
		engine: engine,
		auth:   authSvc,
		hub:    hub,
		router: gin.Default(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/prices", s.wsPrices)

	api := r.Group("/api")
	{
		api.POST("/auth/register", s.register)
		api.POST("/auth/login", s.login)

		api.GET("/stocks", s.listStocks)
		api.GET("/stocks/:symbol", s.getStock)

		api.GET("/portfolio", s.getPortfolio)
		api.POST("/portfolio/reset", s.resetPortfolio)

		api.GET("/trades", s.listTrades)
		api.DELETE("/trades", s.clearTrades)

		api.GET("/orders", s.listOrders)
		api.POST("/orders", s.placeOrder)
		api.DELETE("/orders/:id", s.cancelOrder)

		api.GET("/watchlist", s.listWatchlist)
		api.POST("/watchlist", s.addWatchlist)
		api.DELETE("/watchlist/:symbol", s.removeWatchlist)
		api.PUT("/watchlist/:symbol/alert", s.setAlert)

		api.GET("/leaderboard", s.getLeaderboard)
		api.POST("/backtest", s.runBacktest)
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) wsPrices(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("api: ws upgrade: %v", err)
		return
	}
	s.hub.add(conn)
}

type credentialsPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

func (s *Server) register(c *gin.Context) {
	var p credentialsPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration payload"})
		return
	}

	user, err := s.auth.Register(p.Email, p.Password, p.Name)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var p credentialsPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login payload"})
		return
	}

	user, err := s.auth.Login(p.Email, p.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listStocks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stocks": s.engine.Stocks()})
}

func (s *Server) getStock(c *gin.Context) {
	stock, err := s.engine.Stock(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (s *Server) getPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Portfolio())
}

func (s *Server) resetPortfolio(c *gin.Context) {
	s.engine.ResetPortfolio()
	c.JSON(http.StatusOK, s.engine.Portfolio())
}

func (s *Server) listTrades(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"trades": s.engine.Trades()})
}

func (s *Server) clearTrades(c *gin.Context) {
	s.engine.ClearTrades()
	c.JSON(http.StatusOK, gin.H{"trades": []sim.Trade{}})
}

func (s *Server) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": s.engine.PendingOrders()})
}

func (s *Server) placeOrder(c *gin.Context) {
	var req sim.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}

	var (
		trade sim.Trade
		err   error
	)
	switch req.OrderType {
	case sim.Market:
		trade, err = s.engine.PlaceMarketOrder(req)
	case sim.Limit:
		trade, err = s.engine.PlaceLimitOrder(req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderType must be market or limit"})
		return
	}
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trade)
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, sim.ErrUnknownSymbol):
		return http.StatusNotFound
	case errors.Is(err, sim.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) cancelOrder(c *gin.Context) {
	if err := s.engine.CancelOrder(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (s *Server) listWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"watchlist": s.engine.Watchlist()})
}

type watchlistPayload struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (s *Server) addWatchlist(c *gin.Context) {
	var p watchlistPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid watchlist payload"})
		return
	}
	if err := s.engine.AddToWatchlist(p.Symbol); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": s.engine.Watchlist()})
}

func (s *Server) removeWatchlist(c *gin.Context) {
	s.engine.RemoveFromWatchlist(c.Param("symbol"))
	c.JSON(http.StatusOK, gin.H{"watchlist": s.engine.Watchlist()})
}

type alertRequest struct {
	Enabled bool    `json:"enabled"`
	Price   float64 `json:"price,omitempty"`
}

func (s *Server) setAlert(c *gin.Context) {
	var p alertRequest
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert payload"})
		return
	}

	symbol := c.Param("symbol")
	if p.Price > 0 {
		if err := s.engine.SetAlertPrice(symbol, p.Price); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	if err := s.engine.ToggleAlert(symbol, p.Enabled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": s.engine.Watchlist()})
}

func (s *Server) getLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard.Standings()})
}

type backtestPayload struct {
	Symbol         string  `json:"symbol" binding:"required"`
	FastPeriod     int     `json:"fastPeriod"`
	SlowPeriod     int     `json:"slowPeriod"`
	InitialCapital float64 `json:"initialCapital"`
}

func (s *Server) runBacktest(c *gin.Context) {
	var p backtestPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backtest payload"})
		return
	}
	if p.FastPeriod == 0 {
		p.FastPeriod = 5
	}
	if p.SlowPeriod == 0 {
		p.SlowPeriod = 12
	}
	if p.InitialCapital == 0 {
		p.InitialCapital = 10000
	}

	stock, err := s.engine.Stock(p.Symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	result, err := backtest.Run(stock, backtest.Params{
		FastPeriod:     p.FastPeriod,
		SlowPeriod:     p.SlowPeriod,
		InitialCapital: p.InitialCapital,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
