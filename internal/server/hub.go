package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rifqimaruf/We-are-Cooked/internal/catalog"
	"github.com/rifqimaruf/We-are-Cooked/internal/config"
	"github.com/rifqimaruf/We-are-Cooked/internal/game"
	"github.com/rifqimaruf/We-are-Cooked/internal/protocol"
)

// Hub owns the client roster and the round lifecycle. Connection handlers of
// every transport (TCP stream, websocket, HTTP polling) dispatch through it;
// it is the only writer of the roster and the only holder of the round loop.
type Hub struct {
	cfg         config.Config
	catalog     *catalog.Catalog
	broadcaster *Broadcaster

	mu          sync.Mutex
	clients     map[string]*protocol.ClientInfo
	gameState   *game.State
	gameStarted bool
	loop        *game.Loop
}

func NewHub(cfg config.Config, cat *catalog.Catalog, b *Broadcaster) *Hub {
	return &Hub{
		cfg:         cfg,
		catalog:     cat,
		broadcaster: b,
		clients:     make(map[string]*protocol.ClientInfo),
		gameState:   game.New(cfg, cat, nil),
	}
}

// Broadcaster exposes the fan-out layer to the transport bindings.
func (h *Hub) Broadcaster() *Broadcaster {
	return h.broadcaster
}

// Connect registers a new client identity and returns its id. If a round is
// already running the client also gets a player immediately; otherwise
// players are spawned at round start.
func (h *Hub) Connect() string {
	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = &protocol.ClientInfo{Username: fmt.Sprintf("Chef_%s", id[:5]), Ready: false}
	st := h.gameState
	started := h.gameStarted
	total := len(h.clients)
	h.mu.Unlock()

	if started {
		st.AddPlayer(id)
	}
	log.Printf("client %s connected, total players: %d", id, total)
	return id
}

// Known reports whether the client id is registered. The polling transport
// uses it to reject actions from stale or invented ids.
func (h *Hub) Known(clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[clientID]
	return ok
}

// Disconnect removes a client and its player, returns everyone to the lobby
// when the last client leaves mid-round, and pushes the updated roster.
func (h *Hub) Disconnect(clientID string) {
	h.mu.Lock()
	if _, ok := h.clients[clientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, clientID)
	st := h.gameState
	empty := len(h.clients) == 0
	started := h.gameStarted
	h.mu.Unlock()

	st.RemovePlayer(clientID)
	log.Printf("client %s disconnected", clientID)

	if empty && started {
		log.Println("all players disconnected, returning to lobby")
		h.ReturnToLobby()
		return
	}
	h.BroadcastState()
}

// HandleAction dispatches one decoded client action, gated by round phase:
// lobby actions before the round, movement and in-round actions only while
// the timer runs, return-to-lobby always. Unknown or out-of-phase actions
// are ignored, never propagated as errors to other clients.
func (h *Hub) HandleAction(clientID string, act protocol.Action) {
	switch a := act.(type) {
	case protocol.ReturnToLobby:
		h.ReturnToLobby()

	case protocol.SetUsername:
		if h.updateClient(clientID, func(c *protocol.ClientInfo) { c.Username = a.Username }) {
			h.BroadcastState()
		}

	case protocol.ToggleReady:
		if h.updateClient(clientID, func(c *protocol.ClientInfo) { c.Ready = !c.Ready }) {
			h.BroadcastState()
		}

	case protocol.StartGame:
		h.StartRound()

	case protocol.Move:
		if st, ok := h.activeState(); ok {
			st.MovePlayer(clientID, a.Direction)
		}

	case protocol.Restart:
		if _, ok := h.activeState(); ok {
			h.Restart()
		}

	case protocol.ChangeIngredient:
		if st, ok := h.activeState(); ok && st.CanChangeIngredient(clientID) {
			st.ChangeIngredient(clientID)
		}
	}
}

// updateClient applies fn to a lobby-phase client record. Returns false when
// the client is unknown or the round already started.
func (h *Hub) updateClient(clientID string, fn func(*protocol.ClientInfo)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gameStarted {
		return false
	}
	c, ok := h.clients[clientID]
	if !ok {
		return false
	}
	fn(c)
	return true
}

// activeState returns the game state while a round is running and its timer
// has not hit zero. Actions arriving after timer zero are ignored.
func (h *Hub) activeState() (*game.State, bool) {
	h.mu.Lock()
	st := h.gameState
	started := h.gameStarted
	h.mu.Unlock()
	if !started || st.Timer() <= 0 {
		return nil, false
	}
	return st, true
}

// StartRound begins a round when every client is ready and at least two are
// present. Returns whether the round started.
func (h *Hub) StartRound() bool {
	h.mu.Lock()
	if h.gameStarted || len(h.clients) < 2 {
		h.mu.Unlock()
		return false
	}
	for _, c := range h.clients {
		if !c.Ready {
			h.mu.Unlock()
			return false
		}
	}
	h.gameStarted = true
	ids := h.clientIDsLocked()
	h.mu.Unlock()

	h.beginRound(ids)
	return true
}

// Restart abandons the running round and starts a fresh one with the same
// roster.
func (h *Hub) Restart() {
	h.mu.Lock()
	if !h.gameStarted {
		h.mu.Unlock()
		return
	}
	loop := h.loop
	h.loop = nil
	ids := h.clientIDsLocked()
	h.mu.Unlock()

	if loop != nil {
		loop.Stop()
	}
	h.beginRound(ids)
}

// ReturnToLobby stops any running round, resets ready flags and installs a
// fresh idle state.
func (h *Hub) ReturnToLobby() {
	h.mu.Lock()
	loop := h.loop
	h.loop = nil
	h.mu.Unlock()

	if loop != nil {
		loop.Stop()
	}

	h.mu.Lock()
	h.gameStarted = false
	for _, c := range h.clients {
		c.Ready = false
	}
	h.gameState = game.New(h.cfg, h.catalog, nil)
	h.mu.Unlock()

	log.Println("returned to lobby")
	h.BroadcastState()
}

func (h *Hub) beginRound(clientIDs []string) {
	st := game.New(h.cfg, h.catalog, nil)
	st.Begin(time.Now(), clientIDs)

	h.mu.Lock()
	h.gameState = st
	h.loop = game.StartLoop(st, h.BroadcastState, func() {
		h.mu.Lock()
		h.loop = nil
		h.mu.Unlock()
	})
	h.mu.Unlock()

	log.Printf("round started with %d players", len(clientIDs))
}

// Shutdown stops the round loop, if any. Connections fail their next I/O
// when the listeners close; nothing is persisted.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	loop := h.loop
	h.loop = nil
	h.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
}

func (h *Hub) clientIDsLocked() []string {
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot assembles the full wire state for one client: the simulation
// snapshot plus roster and phase, tagged with the client's id.
func (h *Hub) Snapshot(clientID string) protocol.Snapshot {
	h.mu.Lock()
	st := h.gameState
	started := h.gameStarted
	info := make(map[string]protocol.ClientInfo, len(h.clients))
	for id, c := range h.clients {
		info[id] = *c
	}
	h.mu.Unlock()

	snap := st.Snapshot(time.Now())
	snap.ClientID = clientID
	snap.ClientsInfo = info
	snap.GameStarted = started
	return snap
}

// BroadcastState fans the current snapshot out to every streaming client and
// reaps connections whose sends fail. A reap changes the roster, so one more
// broadcast follows to tell the survivors.
func (h *Hub) BroadcastState() {
	dead := h.broadcaster.Broadcast(h.Snapshot(""))
	if len(dead) == 0 {
		return
	}
	for _, id := range dead {
		h.dropQuietly(id)
	}
	h.BroadcastState()
}

// dropQuietly removes a dead client without triggering another broadcast;
// the caller rebroadcasts once after the whole reap pass.
func (h *Hub) dropQuietly(clientID string) {
	h.mu.Lock()
	delete(h.clients, clientID)
	st := h.gameState
	empty := len(h.clients) == 0
	started := h.gameStarted
	h.mu.Unlock()

	st.RemovePlayer(clientID)
	if empty && started {
		h.ReturnToLobby()
	}
}

// Status summarizes occupancy for the lobby server's polling.
func (h *Hub) Status() (started bool, players int, full bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gameStarted, len(h.clients), len(h.clients) >= h.cfg.MaxPlayers
}
