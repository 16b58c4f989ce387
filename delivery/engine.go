// Package delivery implements whisper's Delivery Engine (spec §4.5): a
// single-threaded cooperative event loop that owns the transport
// handle, tracks per-peer connectivity, and drives the pending queue.
package delivery

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/internal/logger"
	"github.com/sudokatie/whisper/store"
	"github.com/sudokatie/whisper/transport"
)

// Engine drives message submission, queue flushing, and inbound
// decoding. A single goroutine (Run) owns the transport handle and the
// peer map; all other callers reach the engine only through Submit's
// channel handoff, matching the source's "single task owns the
// transport, work arrives on a bounded channel" strategy (spec §9).
type Engine struct {
	st   *store.Store
	tr   transport.Transport
	keys *identity.KeyPair
	enc  *identity.EncryptionKeyPair
	log  logger.Logger

	selfNodeID string

	peersMu sync.RWMutex
	peers   map[string]*PeerRecord

	submitCh chan submitRequest
	inviteCh chan inviteRequest
}

// New builds an Engine over an already-open store and transport, bound
// to the local identity's keys.
func New(st *store.Store, tr transport.Transport, keys *identity.KeyPair, enc *identity.EncryptionKeyPair, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &Engine{
		st:         st,
		tr:         tr,
		keys:       keys,
		enc:        enc,
		log:        log,
		selfNodeID: keys.NodeID(),
		peers:      make(map[string]*PeerRecord),
		submitCh:   make(chan submitRequest),
		inviteCh:   make(chan inviteRequest),
	}
}

// Run processes transport events and submit requests until ctx is
// canceled or the transport's event stream closes. It must run on its
// own goroutine; every other Engine method is safe to call
// concurrently with Run.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-e.tr.Events():
			if !ok {
				return nil
			}
			e.handleEvent(ctx, ev)
		case req, ok := <-e.submitCh:
			if !ok {
				continue
			}
			msgID, err := e.submit(ctx, req.destination, req.plaintext)
			req.result <- submitResult{msgID: msgID, err: err}
		case req, ok := <-e.inviteCh:
			if !ok {
				continue
			}
			req.result <- e.invite(ctx, req.groupID, req.toNodeID)
		}
	}
}

// SelfNodeID returns the node id this engine's identity derives to.
func (e *Engine) SelfNodeID() string {
	return e.selfNodeID
}

// LogTransportError surfaces a listener-level transport failure through
// the engine's structured logger, for callers that own the net.Listener
// directly (the CLI binds the WebSocket handler behind its own
// http.Server rather than through Run's event loop).
func (e *Engine) LogTransportError(err error) {
	e.log.Error("transport listener failed", logger.Error(err))
}

func (e *Engine) handleEvent(ctx context.Context, ev transport.Event) {
	switch ev.Kind {
	case transport.Connected:
		e.handleConnected(ctx, ev.Peer)
	case transport.Disconnected:
		e.setState(ev.Peer, Offline)
	case transport.Received:
		e.handleReceived(ctx, ev.Peer, ev.Data)
	case transport.Listening, transport.Sent:
		// No engine-level state change; logged for observability.
		e.log.Debug("transport event", logger.String("kind", ev.Kind.String()), logger.String("peer", ev.Peer))
	}
}

func newMsgID() string {
	return uuid.NewString()
}
