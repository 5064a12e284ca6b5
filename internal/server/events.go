package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// DefaultMaxClients bounds concurrent event stream connections.
const DefaultMaxClients = 32

// Hub fans bus events out to websocket clients. Clients may narrow the
// stream with ?topics=topology.,simulation.tick (comma-separated topic
// prefixes). A client that falls clientBuffer messages behind is dropped.
type Hub struct {
	logger      *zap.Logger
	unsubscribe func()
	maxClients  int
	origins     []string

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	prefixes []string
	send     chan []byte
	dropped  chan struct{}
	once     sync.Once
}

func (c *client) wants(topic string) bool {
	if len(c.prefixes) == 0 {
		return true
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(topic, p) {
			return true
		}
	}
	return false
}

func (c *client) drop() {
	c.once.Do(func() { close(c.dropped) })
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithMaxClients caps concurrent connections.
func WithMaxClients(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.maxClients = n
		}
	}
}

// WithOriginPatterns allows cross-origin browser connections from hosts
// matching patterns.
func WithOriginPatterns(patterns ...string) HubOption {
	return func(h *Hub) { h.origins = patterns }
}

// NewHub subscribes to every topic on bus.
func NewHub(bus pkgplugin.EventBus, logger *zap.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		logger:     logger,
		maxClients: DefaultMaxClients,
		clients:    make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.unsubscribe = bus.SubscribeAll(h.broadcast)
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close unsubscribes from the bus and disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	h.unsubscribe()
	for c := range clients {
		c.drop()
	}
}

func (h *Hub) broadcast(_ context.Context, event pkgplugin.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	var data []byte
	for c := range h.clients {
		if !c.wants(event.Topic) {
			continue
		}
		if data == nil {
			b, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("event not serializable", zap.String("topic", event.Topic), zap.Error(err))
				return
			}
			data = b
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow event client")
			delete(h.clients, c)
			c.drop()
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || len(h.clients) >= h.maxClients {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects, falls behind, or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := &client{
		send:    make(chan []byte, clientBuffer),
		dropped: make(chan struct{}),
	}
	for _, p := range strings.Split(r.URL.Query().Get("topics"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			c.prefixes = append(c.prefixes, p)
		}
	}
	if !h.register(c) {
		ServiceUnavailable(w, "event stream is at capacity", r.URL.Path)
		return
	}
	defer h.unregister(c)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	// Inbound messages are ignored; CloseRead handles control frames.
	ctx := conn.CloseRead(r.Context())
	h.logger.Debug("event client connected", zap.Strings("topics", c.prefixes))

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.dropped:
			conn.Close(websocket.StatusGoingAway, "stream closed")
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
