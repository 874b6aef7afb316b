package server

import (
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rifqimaruf/We-are-Cooked/internal/protocol"
)

// readTimeout bounds a blocking read so handlers wake up periodically and
// notice server shutdown.
const readTimeout = 500 * time.Millisecond

// Inbound action budget per connection. Sustained rate comfortably above a
// human mashing movement keys; the burst absorbs client-side buffering.
const (
	actionRate  = 60
	actionBurst = 120
)

// tcpConn frames outbound snapshots with the 4-byte length prefix. Sends are
// serialized per connection so a broadcast and a direct reply never
// interleave bytes.
type tcpConn struct {
	mu   sync.Mutex
	conn net.Conn
}

func (c *tcpConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return protocol.WriteFrame(c.conn, payload)
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

// TCPServer is the primary transport: a length-prefixed JSON stream with one
// goroutine per accepted connection.
type TCPServer struct {
	hub  *Hub
	ln   net.Listener
	quit chan struct{}
	wg   sync.WaitGroup
}

func NewTCPServer(hub *Hub) *TCPServer {
	return &TCPServer{hub: hub, quit: make(chan struct{})}
}

// ListenAndServe accepts connections until Close. Each connection gets its
// own handler goroutine; a misbehaving client only ever kills its own.
func (s *TCPServer) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.Printf("game server listening on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			log.Println("accept error:", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

// Close stops accepting and waits briefly for handlers to notice.
func (s *TCPServer) Close() {
	close(s.quit)
	if s.ln != nil {
		s.ln.Close()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		log.Println("connection handlers still draining, abandoning")
	}
}

func (s *TCPServer) handle(conn net.Conn) {
	c := &tcpConn{conn: conn}
	clientID := s.hub.Connect()
	s.hub.Broadcaster().Register(c, clientID)

	defer func() {
		s.hub.Broadcaster().Unregister(c)
		s.hub.Disconnect(clientID)
	}()

	// Initial full snapshot tells the client who it is.
	if err := s.hub.Broadcaster().SendTo(c, s.hub.Snapshot(clientID)); err != nil {
		log.Printf("initial snapshot to %s failed: %v", clientID, err)
		return
	}
	s.hub.BroadcastState()

	limiter := rate.NewLimiter(rate.Limit(actionRate), actionBurst)

	for {
		select {
		case <-s.quit:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		frame, err := protocol.ReadFrame(conn)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if !errors.Is(err, io.EOF) {
				log.Printf("read from %s failed: %v", clientID, err)
			}
			return
		}

		act, _, err := protocol.DecodeAction(frame)
		if err != nil {
			// Malformed frame content is fatal to this connection only.
			log.Printf("malformed action from %s: %v", clientID, err)
			return
		}

		if !limiter.Allow() {
			continue
		}
		s.hub.HandleAction(clientID, act)
	}
}
