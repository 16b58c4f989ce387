package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSTransport is a concrete Transport over WebSocket connections. Each
// peer is identified by the node id it announces on connect; a single
// instance serves as both the inbound accept point (via Handler) and
// the outbound dialer (via Dial).
type WSTransport struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*websocket.Conn

	events chan Event

	closeOnce sync.Once
}

// helloFrame is the first frame exchanged on a new connection so each
// side learns the other's node id.
type helloFrame struct {
	NodeID string `json:"node_id"`
}

// NewWSTransport returns a ready-to-use WSTransport.
func NewWSTransport() *WSTransport {
	return &WSTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns:  make(map[string]*websocket.Conn),
		events: make(chan Event, 256),
	}
}

// Handler returns an http.Handler that accepts inbound WebSocket
// connections and registers them once the peer's hello frame arrives.
func (t *WSTransport) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := t.upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, fmt.Sprintf("websocket upgrade failed: %v", err), http.StatusBadRequest)
			return
		}
		t.adopt(conn)
	})
}

// Dial connects outbound to a peer's listen address, identifying
// ourselves as localNodeID.
func (t *WSTransport) Dial(ctx context.Context, addr, localNodeID string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	if err := conn.WriteJSON(helloFrame{NodeID: localNodeID}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("sending hello: %w", err)
	}
	t.adopt(conn)
	return nil
}

func (t *WSTransport) adopt(conn *websocket.Conn) {
	var hello helloFrame
	if err := conn.ReadJSON(&hello); err != nil || hello.NodeID == "" {
		_ = conn.Close()
		return
	}

	t.mu.Lock()
	t.conns[hello.NodeID] = conn
	t.mu.Unlock()

	t.events <- Event{Kind: Connected, Peer: hello.NodeID}
	go t.readLoop(hello.NodeID, conn)
}

func (t *WSTransport) readLoop(peer string, conn *websocket.Conn) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.drop(peer)
			return
		}
		t.events <- Event{Kind: Received, Peer: peer, Data: data}
	}
}

func (t *WSTransport) drop(peer string) {
	t.mu.Lock()
	conn, ok := t.conns[peer]
	if ok {
		delete(t.conns, peer)
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	_ = conn.Close()
	t.events <- Event{Kind: Disconnected, Peer: peer}
}

func (t *WSTransport) Events() <-chan Event { return t.events }

// Send writes data as a single binary WebSocket frame to peer.
func (t *WSTransport) Send(ctx context.Context, peer string, data []byte) error {
	t.mu.RLock()
	conn, ok := t.conns[peer]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("peer %s is not connected", peer)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("sending to %s: %w", peer, err)
	}
	t.events <- Event{Kind: Sent, Peer: peer}
	return nil
}

// Close closes every connection and the event channel.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	conns := t.conns
	t.conns = make(map[string]*websocket.Conn)
	t.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	t.closeOnce.Do(func() { close(t.events) })
	return nil
}
