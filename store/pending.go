package store

import (
	"sort"

	"go.etcd.io/bbolt"

	"github.com/sudokatie/whisper/internal/werrors"
)

// QueuePending durably records an already-encrypted outbound payload
// awaiting delivery. Queuing again under the same msg_id replaces the
// entry in place rather than duplicating it (spec §3, §4.5.1).
func (s *Store) QueuePending(p PendingOutbound) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return s.putJSON(tx, bucketPending, p.MsgID, p)
	})
}

// PendingFor returns, oldest first, every pending entry queued for
// destination (spec §4.5.2: flush is FIFO per destination).
func (s *Store) PendingFor(destination string) ([]PendingOutbound, error) {
	var entries []PendingOutbound
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPending))
		return b.ForEach(func(k, v []byte) error {
			plain, err := s.open(v)
			if err != nil {
				return err
			}
			var p PendingOutbound
			if err := unmarshalJSON(plain, &p); err != nil {
				return err
			}
			if p.Destination == destination {
				entries = append(entries, p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EnqueuedAt.Before(entries[j].EnqueuedAt) })
	return entries, nil
}

// AllPending returns every queued entry across all destinations, oldest
// first within each destination's relative order.
func (s *Store) AllPending() ([]PendingOutbound, error) {
	var entries []PendingOutbound
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPending))
		return b.ForEach(func(k, v []byte) error {
			plain, err := s.open(v)
			if err != nil {
				return err
			}
			var p PendingOutbound
			if err := unmarshalJSON(plain, &p); err != nil {
				return err
			}
			entries = append(entries, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EnqueuedAt.Before(entries[j].EnqueuedAt) })
	return entries, nil
}

// RemovePending deletes a queue entry once it has been flushed.
func (s *Store) RemovePending(msgID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPending))
		if b.Get([]byte(msgID)) == nil {
			return werrors.New(werrors.NotFound, "pending entry not found", nil)
		}
		return b.Delete([]byte(msgID))
	})
}

// BumpAttempts increments a queue entry's retry counter (spec §4.5.4:
// failure handling tracks attempts for backoff decisions).
func (s *Store) BumpAttempts(msgID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var p PendingOutbound
		found, err := s.getJSON(tx, bucketPending, msgID, &p)
		if err != nil {
			return err
		}
		if !found {
			return werrors.New(werrors.NotFound, "pending entry not found", nil)
		}
		p.Attempts++
		return s.putJSON(tx, bucketPending, msgID, p)
	})
}
