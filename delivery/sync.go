package delivery

import (
	"sort"
	"time"

	"github.com/sudokatie/whisper/store"
)

// HistoryRequest describes a bounded slice of message history, for
// peers exchanging catch-up state after a reconnect.
type HistoryRequest struct {
	Since time.Time
	Limit int // 0 means unbounded
}

// FilterHistory returns the entries newer than req.Since, oldest
// first, truncated to req.Limit if set.
func FilterHistory(entries []store.MessageLogEntry, req HistoryRequest) []store.MessageLogEntry {
	var filtered []store.MessageLogEntry
	for _, m := range entries {
		if m.Timestamp.After(req.Since) {
			filtered = append(filtered, m)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Timestamp.Before(filtered[j].Timestamp) })
	if req.Limit > 0 && len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}
	return filtered
}

// statusPriority ranks a status by how final it is, for merge conflict
// resolution; Failed is as final as Read since neither will advance on
// its own.
func statusPriority(s store.Status) int {
	switch s {
	case store.Pending:
		return 0
	case store.Sent:
		return 1
	case store.Delivered:
		return 2
	case store.Read, store.Failed:
		return 3
	default:
		return 0
	}
}

// MergeHistory combines a local and a remote view of message history,
// deduplicating by msg_id; when both sides know an entry, the one with
// the more final status wins. The result is sorted by timestamp.
func MergeHistory(local, remote []store.MessageLogEntry) []store.MessageLogEntry {
	byID := make(map[string]store.MessageLogEntry, len(local)+len(remote))
	for _, m := range local {
		byID[m.MsgID] = m
	}
	for _, m := range remote {
		existing, ok := byID[m.MsgID]
		if !ok || statusPriority(m.Status) > statusPriority(existing.Status) {
			byID[m.MsgID] = m
		}
	}

	merged := make([]store.MessageLogEntry, 0, len(byID))
	for _, m := range byID {
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp.Before(merged[j].Timestamp) })
	return merged
}

// NeedsSync reports whether m has not yet reached a final status and
// should be re-offered to a peer on reconnect.
func NeedsSync(m store.MessageLogEntry) bool {
	return m.Status == store.Pending || m.Status == store.Sent
}

// DiffMissing returns the entries in local whose msg_id is absent from
// remoteIDs — what still needs to be sent to a peer that announced it
// already has remoteIDs.
func DiffMissing(local []store.MessageLogEntry, remoteIDs []string) []store.MessageLogEntry {
	known := make(map[string]struct{}, len(remoteIDs))
	for _, id := range remoteIDs {
		known[id] = struct{}{}
	}
	var missing []store.MessageLogEntry
	for _, m := range local {
		if _, ok := known[m.MsgID]; !ok {
			missing = append(missing, m)
		}
	}
	return missing
}
