package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rxhall/papertrade/market"
	"github.com/rxhall/papertrade/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans tick snapshots and engine events out to websocket clients. It
// implements sim.EventListener, so order fills and alerts stream alongside
// prices.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	lock      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
	}
}

// Run delivers broadcast messages to every connected client, dropping
// clients whose writes fail. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.lock.Lock()
		for client := range h.clients {
			err := client.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.lock.Unlock()
	}
}

// Broadcast enqueues a message; it never blocks the engine. Messages are
// dropped when the queue is full.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.lock.Lock()
	h.clients[conn] = true
	h.lock.Unlock()
}

type quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type wsEvent struct {
	Type  string        `json:"type"` // tick | fill | alert
	Time  time.Time     `json:"time"`
	Ticks []quote       `json:"ticks,omitempty"`
	Trade *sim.Trade    `json:"trade,omitempty"`
	Alert *alertPayload `json:"alert,omitempty"`
}

type alertPayload struct {
	Symbol     string  `json:"symbol"`
	AlertPrice float64 `json:"alertPrice"`
	Price      float64 `json:"price"`
}

// BroadcastTicks publishes the post-tick quotes for all stocks.
func (h *Hub) BroadcastTicks(stocks []market.Stock, now time.Time) {
	ev := wsEvent{Type: "tick", Time: now, Ticks: make([]quote, 0, len(stocks))}
	for _, s := range stocks {
		ev.Ticks = append(ev.Ticks, quote{
			Symbol:        s.Symbol,
			Price:         s.Price,
			Change:        s.Change,
			ChangePercent: s.ChangePercent,
		})
	}
	h.send(ev)
}

// OnOrderExecuted implements sim.EventListener.
func (h *Hub) OnOrderExecuted(t sim.Trade, reason string) {
	h.send(wsEvent{Type: "fill", Time: t.Timestamp, Trade: &t})
}

// OnAlertFired implements sim.EventListener.
func (h *Hub) OnAlertFired(item sim.WatchlistItem, price float64) {
	h.send(wsEvent{
		Type: "alert",
		Time: time.Now().UTC(),
		Alert: &alertPayload{
			Symbol:     item.Symbol,
			AlertPrice: item.AlertPrice,
			Price:      price,
		},
	})
}

func (h *Hub) send(ev wsEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		log.Printf("api: marshal ws event: %v", err)
		return
	}
	h.Broadcast(raw)
}
