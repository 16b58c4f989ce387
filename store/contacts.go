package store

import (
	"sort"

	"go.etcd.io/bbolt"

	"github.com/sudokatie/whisper/internal/werrors"
)

// UpsertContact inserts or updates a contact, keeping the alias index in
// sync. Aliases are unique within a vault (spec §3).
func (s *Store) UpsertContact(c Contact) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		aliasBucket := tx.Bucket([]byte(bucketContactAlias))
		if existingRaw := aliasBucket.Get([]byte(c.Alias)); existingRaw != nil {
			plain, err := s.open(existingRaw)
			if err == nil && string(plain) != c.NodeID {
				return werrors.New(werrors.AlreadyExists, "alias already in use", nil)
			}
		}

		if err := s.putJSON(tx, bucketContacts, c.NodeID, c); err != nil {
			return err
		}
		sealedID, err := s.seal([]byte(c.NodeID))
		if err != nil {
			return err
		}
		return aliasBucket.Put([]byte(c.Alias), sealedID)
	})
}

// GetContactByID looks up a contact by node id.
func (s *Store) GetContactByID(nodeID string) (*Contact, error) {
	var c Contact
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = s.getJSON(tx, bucketContacts, nodeID, &c)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, werrors.New(werrors.NotFound, "contact not found", nil)
	}
	return &c, nil
}

// GetContactByAlias looks up a contact by its unique human alias.
func (s *Store) GetContactByAlias(alias string) (*Contact, error) {
	var nodeID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketContactAlias))
		raw := b.Get([]byte(alias))
		if raw == nil {
			return werrors.New(werrors.NotFound, "alias not found", nil)
		}
		plain, err := s.open(raw)
		if err != nil {
			return err
		}
		nodeID = string(plain)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetContactByID(nodeID)
}

// ListContacts returns all contacts ordered by alias (spec §4.3).
func (s *Store) ListContacts() ([]Contact, error) {
	var contacts []Contact
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketContacts))
		return b.ForEach(func(k, v []byte) error {
			if string(k) == "__canary__" {
				return nil
			}
			plain, err := s.open(v)
			if err != nil {
				return err
			}
			var c Contact
			if err := unmarshalJSON(plain, &c); err != nil {
				return err
			}
			contacts = append(contacts, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Alias < contacts[j].Alias })
	return contacts, nil
}

// DeleteContact removes a contact and its alias index entry.
func (s *Store) DeleteContact(nodeID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var c Contact
		found, err := s.getJSON(tx, bucketContacts, nodeID, &c)
		if err != nil {
			return err
		}
		if !found {
			return werrors.New(werrors.NotFound, "contact not found", nil)
		}
		if err := tx.Bucket([]byte(bucketContacts)).Delete([]byte(nodeID)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketContactAlias)).Delete([]byte(c.Alias))
	})
}
