package delivery

// PeerState is a peer's connectivity state in the delivery engine
// (spec §4.5). Online is entered only on a transport Connected event
// and exited only on Disconnected; it is never set speculatively.
type PeerState int

const (
	Unknown PeerState = iota
	Offline
	Online
	Dropped
)

func (s PeerState) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Offline:
		return "Offline"
	case Online:
		return "Online"
	case Dropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// PeerRecord is the engine's in-memory view of one peer.
type PeerRecord struct {
	NodeID string
	State  PeerState
}

func (e *Engine) peerRecord(nodeID string) *PeerRecord {
	if rec, ok := e.peers[nodeID]; ok {
		return rec
	}
	rec := &PeerRecord{NodeID: nodeID, State: Unknown}
	e.peers[nodeID] = rec
	return rec
}

// PeerState returns the current state the engine tracks for nodeID,
// Unknown if it has never been observed.
func (e *Engine) PeerState(nodeID string) PeerState {
	e.peersMu.RLock()
	defer e.peersMu.RUnlock()
	if rec, ok := e.peers[nodeID]; ok {
		return rec.State
	}
	return Unknown
}

// Peers returns a snapshot of every peer the engine has observed.
func (e *Engine) Peers() []PeerRecord {
	e.peersMu.RLock()
	defer e.peersMu.RUnlock()
	out := make([]PeerRecord, 0, len(e.peers))
	for _, rec := range e.peers {
		out = append(out, *rec)
	}
	return out
}

func (e *Engine) setState(nodeID string, state PeerState) {
	e.peersMu.Lock()
	defer e.peersMu.Unlock()
	e.peerRecord(nodeID).State = state
}

// dropPeer marks a peer Dropped regardless of its prior state — used
// when trust transitions to Blocked (spec §4.5.4).
func (e *Engine) dropPeer(nodeID string) {
	e.setState(nodeID, Dropped)
}
