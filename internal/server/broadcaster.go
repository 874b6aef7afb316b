package server

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/rifqimaruf/We-are-Cooked/internal/protocol"
)

// Conn is one client's outbound half. Implementations apply their own
// framing (length prefix on TCP, message frames on websocket) and their own
// write serialization.
type Conn interface {
	Send(payload []byte) error
	Close() error
}

// Broadcaster fans full-state snapshots out to every attached connection.
// The connection map is guarded so a broadcast never iterates a map being
// resized; connections that fail a send are collected during iteration and
// reaped afterwards, never mid-loop.
type Broadcaster struct {
	mu    sync.RWMutex
	conns map[Conn]string // conn -> client id
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{conns: make(map[Conn]string)}
}

// Register attaches a connection under a client id.
func (b *Broadcaster) Register(c Conn, clientID string) {
	b.mu.Lock()
	b.conns[c] = clientID
	b.mu.Unlock()
}

// Unregister detaches and closes a connection. Safe to call twice.
func (b *Broadcaster) Unregister(c Conn) {
	b.mu.Lock()
	if _, ok := b.conns[c]; ok {
		delete(b.conns, c)
		c.Close()
	}
	b.mu.Unlock()
}

// SendTo pushes one snapshot to a single connection, tagged with its id.
func (b *Broadcaster) SendTo(c Conn, snap protocol.Snapshot) error {
	b.mu.RLock()
	id := b.conns[c]
	b.mu.RUnlock()
	snap.ClientID = id
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.Send(data)
}

// Broadcast pushes the snapshot to every connection, tagging each with its
// own client id. Dead connections are closed and removed; their client ids
// are returned so the caller can clean up game-side registration. A failed
// send to one client never aborts delivery to the rest.
func (b *Broadcaster) Broadcast(snap protocol.Snapshot) []string {
	b.mu.RLock()
	targets := make(map[Conn]string, len(b.conns))
	for c, id := range b.conns {
		targets[c] = id
	}
	b.mu.RUnlock()

	var dead []Conn
	var deadIDs []string
	for c, id := range targets {
		snap.ClientID = id
		data, err := json.Marshal(snap)
		if err != nil {
			log.Println("snapshot marshal error:", err)
			return nil
		}
		if err := c.Send(data); err != nil {
			log.Println("broadcast send error:", err)
			dead = append(dead, c)
			deadIDs = append(deadIDs, id)
		}
	}

	for _, c := range dead {
		b.Unregister(c)
	}
	return deadIDs
}

// Count returns the number of attached connections.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}
