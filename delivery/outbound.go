package delivery

import (
	"context"
	"time"

	"github.com/sudokatie/whisper/internal/metrics"
	"github.com/sudokatie/whisper/store"
)

// queueFrame durably enqueues an already-encoded wire frame for nodeID
// and, if the peer is currently online, attempts an immediate send —
// the same pending-queue-then-flush-on-connect path Submit uses for
// application text (spec §4.5.1), reused here for frames that must
// never become a MessageLogEntry (receipts, invites).
func (e *Engine) queueFrame(ctx context.Context, nodeID string, frame []byte) error {
	pending := store.PendingOutbound{
		MsgID:           newMsgID(),
		Destination:     nodeID,
		OpaqueEncrypted: frame,
		EnqueuedAt:      time.Now(),
	}
	if err := e.st.QueuePending(pending); err != nil {
		return err
	}

	if e.PeerState(nodeID) == Online {
		if sendErr := e.tr.Send(ctx, nodeID, frame); sendErr == nil {
			_ = e.st.RemovePending(pending.MsgID)
			metrics.MessagesSent.WithLabelValues("sent").Inc()
		} else {
			_ = e.st.BumpAttempts(pending.MsgID)
			metrics.MessagesSent.WithLabelValues("failed").Inc()
		}
	}
	return nil
}
