package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
)

const (
	clientBuffer = 256
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool; the server binds to localhost by default
	},
}

// EventMessage is one websocket frame: an attempt event and the view state after it
type EventMessage struct {
	Event *domain.Event `json:"event,omitempty"`
	State app.ViewState `json:"state"`
}

// EventHub fans presenter events out to websocket clients.
// A client that cannot keep up is dropped rather than stalling the presenter.
type EventHub struct {
	snapshot func() app.ViewState
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	send chan []byte
	once sync.Once
}

func (c *hubClient) close() {
	c.once.Do(func() { close(c.send) })
}

// NewEventHub creates a hub. snapshot supplies the state sent on connect.
func NewEventHub(snapshot func() app.ViewState, logger *zap.Logger) *EventHub {
	return &EventHub{
		snapshot: snapshot,
		logger:   logger,
		clients:  make(map[*hubClient]struct{}),
	}
}

// Broadcast matches app.Listener and is registered with Presenter.Subscribe
func (h *EventHub) Broadcast(ev domain.Event, state app.ViewState) {
	data, err := json.Marshal(EventMessage{Event: &ev, State: state})
	if err != nil {
		h.logger.Error("Failed to marshal event for broadcast", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("Dropping slow websocket client")
			delete(h.clients, client)
			client.close()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) register() *hubClient {
	client := &hubClient{send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	return client
}

func (h *EventHub) unregister(client *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
	h.mu.Unlock()
}

// HandleWebSocket handles GET /api/v1/events/ws
func (h *EventHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	client := h.register()
	defer h.unregister(client)

	h.logger.Info("WebSocket client connected", zap.String("remote_addr", c.Request.RemoteAddr))

	initial, err := json.Marshal(EventMessage{State: h.snapshot()})
	if err == nil {
		if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
			return
		}
	}

	// Read messages from client so close frames and pongs are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-client.send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "client too slow"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("Failed to send event", zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
