package store

import (
	"sort"

	"go.etcd.io/bbolt"

	"github.com/sudokatie/whisper/internal/werrors"
)

// InsertMessage appends a new log entry. msg_id is the primary key; a
// duplicate id is rejected (spec §3, entries are append-mostly).
func (s *Store) InsertMessage(m MessageLogEntry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketMessages))
		if b.Get([]byte(m.MsgID)) != nil {
			return werrors.New(werrors.AlreadyExists, "message already logged", nil)
		}
		return s.putJSON(tx, bucketMessages, m.MsgID, m)
	})
}

// GetMessage looks up a single log entry by msg_id.
func (s *Store) GetMessage(msgID string) (*MessageLogEntry, error) {
	var m MessageLogEntry
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = s.getJSON(tx, bucketMessages, msgID, &m)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, werrors.New(werrors.NotFound, "message not found", nil)
	}
	return &m, nil
}

// MessagesBetween returns, newest first, up to limit log entries
// exchanged with peer (a direct node id or a group id) — spec §4.3.
// limit <= 0 means unbounded.
func (s *Store) MessagesBetween(peer string, limit int) ([]MessageLogEntry, error) {
	var entries []MessageLogEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketMessages))
		return b.ForEach(func(k, v []byte) error {
			plain, err := s.open(v)
			if err != nil {
				return err
			}
			var m MessageLogEntry
			if err := unmarshalJSON(plain, &m); err != nil {
				return err
			}
			if m.From == peer || m.To.Direct == peer || m.To.Group == peer {
				entries = append(entries, m)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// UpdateStatus advances a log entry's status. Transitions are monotone
// with respect to Pending < Sent < Delivered < Read on the same msg_id;
// a late or repeated update is a silent no-op rather than an error
// (spec §8 contract 7). Failed is terminal-but-retryable and is never
// blocked by rank, in either direction.
func (s *Store) UpdateStatus(msgID string, newStatus Status, failedReason string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var m MessageLogEntry
		found, err := s.getJSON(tx, bucketMessages, msgID, &m)
		if err != nil {
			return err
		}
		if !found {
			return werrors.New(werrors.NotFound, "message not found", nil)
		}

		if m.Status != Failed && newStatus != Failed && newStatus.rank() <= m.Status.rank() {
			return nil
		}

		m.Status = newStatus
		if newStatus == Failed {
			m.FailedReason = failedReason
		} else {
			m.FailedReason = ""
		}
		return s.putJSON(tx, bucketMessages, msgID, m)
	})
}
