package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/avidal-games/complot/internal/catalog"
	"github.com/avidal-games/complot/internal/domain/state"
	"github.com/avidal-games/complot/internal/engine"
	"github.com/avidal-games/complot/internal/platform/logger"
	"github.com/avidal-games/complot/internal/platform/metrics"
)

// Dispatcher is the slice of the session the hub needs: serialized action
// dispatch and a read-only snapshot of the current state.
type Dispatcher interface {
	Dispatch(act engine.Action) engine.Result
	State() *state.GameState
}

// Options tune per-client behavior from the server config.
type Options struct {
	// SendBuffer is the per-client outgoing queue; a client that falls this
	// far behind is dropped.
	SendBuffer int

	// MinActionInterval throttles incoming player actions per client.
	MinActionInterval time.Duration
}

// Hub maintains the set of active clients and broadcasts frames to them.
type Hub struct {
	session Dispatcher
	catalog *catalog.Catalog
	opts    Options

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub over a running session.
func NewHub(session Dispatcher, cat *catalog.Catalog, opts Options, log *logger.Logger) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	return &Hub{
		session:    session,
		catalog:    cat,
		opts:       opts,
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
			client.sendFrame(ServerFrame{Type: FrameState, State: BuildStateView(h.session.State(), h.catalog)})
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastResult pushes the outcome of one applied action to every client:
// the new state, each notification (with a fresh wire id), and a frame per
// unlocked achievement. Wired as a session observer.
func (h *Hub) BroadcastResult(_ engine.Action, res engine.Result) {
	h.broadcastFrame(ServerFrame{Type: FrameState, State: BuildStateView(res.State, h.catalog)})

	for _, n := range res.Notifications {
		h.broadcastFrame(ServerFrame{Type: FrameNotification, Notification: notificationView(n)})
	}
	for _, id := range res.Unlocked {
		a := h.catalog.Achievement(id)
		if a == nil {
			continue
		}
		h.broadcastFrame(ServerFrame{Type: FrameAchievement, Achievement: &AchievementView{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Category:    a.Category,
			Rarity:      string(a.Rarity),
		}})
	}
}

func (h *Hub) broadcastFrame(f ServerFrame) {
	payload, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("Failed to serialize frame for broadcast: " + err.Error())
		return
	}
	h.broadcast <- payload
}
