package bus

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/crowdfeud/go-feud/internal/domain"
)

// Envelope is the wire format carried over the websocket channel: the
// event kind plus its JSON payload. Display clients route on Kind the
// same way in-process subscribers route on Event.Kind().
type Envelope struct {
	Kind    domain.EventKind `json:"kind"`
	Payload json.RawMessage  `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Burst allowance for the per-client buzz limiter; mashing past it just
// drops messages instead of flooding the moderator.
const buzzBurst = 5

// Client is one websocket connection attached to the hub: a read-only
// display surface or a per-team buzzer page.
type Client struct {
	conn *websocket.Conn
	send chan Envelope

	// limiter throttles inbound buzz messages from this connection.
	limiter *rate.Limiter
}

// Hub relays game events from the moderator process to display clients
// and buzz messages from buzzer clients back to the moderator. Logically
// it carries two channels over one socket: game state out, buzzes in.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Envelope
	buzzes     chan domain.BuzzerPressed

	mu      sync.Mutex
	clients map[*Client]struct{}

	logger   *slog.Logger
	buzzRate rate.Limit
}

// NewHub creates a hub that throttles each buzzer connection to
// buzzesPerSecond inbound messages.
func NewHub(logger *slog.Logger, buzzesPerSecond float64) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Envelope, 64),
		buzzes:     make(chan domain.BuzzerPressed, 16),
		clients:    make(map[*Client]struct{}),
		logger:     logger,
		buzzRate:   rate.Limit(buzzesPerSecond),
	}
}

// Run pumps registrations and broadcasts until the hub's channels close.
// Call it once, on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case env := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- env:
				default:
					// Slow consumer: drop it rather than stall the game.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Buzzes returns the stream of rate-limited buzz messages received from
// buzzer clients. The moderator process consumes it and arbitrates via
// Game.BuzzIn, so FIFO ordering here is what resolves buzz races.
func (h *Hub) Buzzes() <-chan domain.BuzzerPressed { return h.buzzes }

// BroadcastEvent serializes a game event and fans it out to every
// connected client.
func (h *Hub) BroadcastEvent(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", "kind", event.Kind(), "error", err)
		return
	}
	h.broadcast <- Envelope{Kind: event.Kind(), Payload: payload}
}

// ServeWS upgrades an HTTP request to a websocket connection and attaches
// it to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan Envelope, 8),
		limiter: rate.NewLimiter(h.buzzRate, buzzBurst),
	}
	h.register <- client

	go client.writePump()
	client.readPump(h)
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Kind != domain.EventBuzzerPressed {
			continue
		}
		if !c.limiter.Allow() {
			h.logger.Debug("buzz dropped by rate limiter")
			continue
		}

		var buzz domain.BuzzerPressed
		if err := json.Unmarshal(env.Payload, &buzz); err != nil {
			h.logger.Warn("malformed buzz message", "error", err)
			continue
		}
		select {
		case h.buzzes <- buzz:
		default:
			// Buzz queue full; a buzz that cannot be delivered promptly
			// already lost the race.
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			return
		}
	}
}
