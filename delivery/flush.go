package delivery

import (
	"context"
	"time"

	"github.com/sudokatie/whisper/internal/logger"
	"github.com/sudokatie/whisper/internal/metrics"
	"github.com/sudokatie/whisper/store"
)

// handleConnected implements spec §4.5.2: on Connected(node_id), the
// contact's last_contacted is refreshed and every pending entry for
// that peer is handed to the transport in enqueue order.
func (e *Engine) handleConnected(ctx context.Context, nodeID string) {
	e.setState(nodeID, Online)

	if contact, err := e.st.GetContactByID(nodeID); err == nil {
		now := time.Now()
		contact.LastContacted = &now
		_ = e.st.UpsertContact(*contact)
	}

	e.flushPending(ctx, nodeID)
}

// flushPending drains pending_for(nodeID) in enqueue order. Because
// the engine loop is the sole writer of the pending table, nothing can
// interleave a concurrent submit between reads here (spec §5).
func (e *Engine) flushPending(ctx context.Context, nodeID string) {
	for {
		pending, err := e.st.PendingFor(nodeID)
		if err != nil {
			e.log.Error("reading pending queue", logger.Error(err), logger.String("peer", nodeID))
			return
		}
		if len(pending) == 0 {
			return
		}

		for _, p := range pending {
			if err := e.tr.Send(ctx, nodeID, p.OpaqueEncrypted); err != nil {
				_ = e.st.BumpAttempts(p.MsgID)
				metrics.MessagesSent.WithLabelValues("failed").Inc()
				e.log.Warn("flush send failed, retrying later",
					logger.String("msg_id", p.MsgID), logger.String("peer", nodeID), logger.Error(err))
				continue
			}
			if err := e.st.RemovePending(p.MsgID); err != nil {
				e.log.Error("removing flushed pending entry", logger.Error(err), logger.String("msg_id", p.MsgID))
			}
			_ = e.st.UpdateStatus(p.MsgID, store.Sent, "")
			metrics.MessagesSent.WithLabelValues("sent").Inc()
		}

		remaining, err := e.st.PendingFor(nodeID)
		if err != nil || len(remaining) == 0 {
			return
		}
		if len(remaining) == len(pending) {
			// Every remaining entry just failed to send; stop spinning
			// until the next Connected event.
			return
		}
	}
}
