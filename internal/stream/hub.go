package stream

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
)

// Message is the JSON envelope for everything pushed over the socket:
// per-tick snapshots, lifecycle events, and damage reports.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Sender  string `json:"sender"`
}

// Client wraps one websocket connection with a buffered outbound queue so a
// slow reader never stalls the broadcast loop.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans simulation messages out to every connected client. Register,
// unregister, and broadcast all funnel through Run's select loop, so the
// clients map has a single owner goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}

	log          logging.Logger
	onConnect    func()
	onDisconnect func()
}

// Option customizes hub construction.
type Option func(*Hub)

// WithHubLogger sets the structured logger.
func WithHubLogger(log logging.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// WithClientHooks installs callbacks fired when clients join and leave, used
// to drive the connected-clients gauge.
func WithClientHooks(onConnect, onDisconnect func()) Option {
	return func(h *Hub) {
		h.onConnect = onConnect
		h.onDisconnect = onDisconnect
	}
}

// NewHub builds a hub. Call Run in its own goroutine before serving clients.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		log:        logging.Noop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run is the hub's event loop. It exits when Stop is called, closing every
// client queue on the way out.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-h.stop:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			if h.onConnect != nil {
				h.onConnect()
			}
			h.log.Debug(ctx, "stream client connected", logging.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if h.onDisconnect != nil {
					h.onDisconnect()
				}
				h.log.Debug(ctx, "stream client disconnected", logging.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Full queue means a stuck reader; drop the client.
					close(client.send)
					delete(h.clients, client)
					if h.onDisconnect != nil {
						h.onDisconnect()
					}
				}
			}
		}
	}
}

// Stop shuts the hub down. Safe to call once.
func (h *Hub) Stop() { close(h.stop) }

// Broadcast marshals the message and queues it for every client. Marshal
// failures are logged and dropped; the tick loop must not fail on them.
func (h *Hub) Broadcast(msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		h.log.Warn(context.Background(), "drop unmarshalable broadcast", logging.String("type", msg.Type))
		return
	}
	select {
	case h.broadcast <- raw:
	case <-h.stop:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades an HTTP request to a websocket and attaches it to the hub.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logging.String("error", err.Error()))
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains inbound frames until the peer goes away. Clients are
// listen-only; anything they send is ignored.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump relays queued messages to the socket. It exits when the hub
// closes the send channel.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
