package delivery

import (
	"context"
	"time"

	"github.com/sudokatie/whisper/internal/metrics"
)

// Health summarizes the delivery engine's state for the `status`
// command (spec §6).
type Health struct {
	SelfNodeID    string    `json:"self_node_id"`
	PeersOnline   int       `json:"peers_online"`
	PeersKnown    int       `json:"peers_known"`
	PendingCount  int       `json:"pending_count"`
	CheckedAt     time.Time `json:"checked_at"`
}

// CheckHealth gathers a snapshot of the engine's current state. It
// does not require Run's goroutine — the peer-map and store reads here
// are safe from any goroutine.
func (e *Engine) CheckHealth(ctx context.Context) (*Health, error) {
	peers := e.Peers()
	online := 0
	for _, p := range peers {
		if p.State == Online {
			online++
		}
	}

	pending, err := e.st.AllPending()
	if err != nil {
		return nil, err
	}

	metrics.PeersOnline.Set(float64(online))
	metrics.PendingQueueDepth.Set(float64(len(pending)))

	return &Health{
		SelfNodeID:   e.selfNodeID,
		PeersOnline:  online,
		PeersKnown:   len(peers),
		PendingCount: len(pending),
		CheckedAt:    time.Now(),
	}, nil
}
