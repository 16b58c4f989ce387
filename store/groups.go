package store

import (
	"go.etcd.io/bbolt"

	"github.com/sudokatie/whisper/internal/werrors"
)

// CreateGroup persists a new group, keeping the name index in sync
// (spec §3: name unique).
func (s *Store) CreateGroup(g Group) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		nameBucket := tx.Bucket([]byte(bucketGroupName))
		if nameBucket.Get([]byte(g.Name)) != nil {
			return werrors.New(werrors.AlreadyExists, "group name already in use", nil)
		}
		if err := s.putJSON(tx, bucketGroups, g.GroupID, g); err != nil {
			return err
		}
		sealedID, err := s.seal([]byte(g.GroupID))
		if err != nil {
			return err
		}
		return nameBucket.Put([]byte(g.Name), sealedID)
	})
}

// GetGroupByID looks up a group by its uuid.
func (s *Store) GetGroupByID(groupID string) (*Group, error) {
	var g Group
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = s.getJSON(tx, bucketGroups, groupID, &g)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, werrors.New(werrors.NotFound, "group not found", nil)
	}
	return &g, nil
}

// GetGroupByName looks up a group by its unique name.
func (s *Store) GetGroupByName(name string) (*Group, error) {
	var groupID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketGroupName))
		raw := b.Get([]byte(name))
		if raw == nil {
			return werrors.New(werrors.NotFound, "group not found", nil)
		}
		plain, err := s.open(raw)
		if err != nil {
			return err
		}
		groupID = string(plain)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetGroupByID(groupID)
}

// ListGroups returns every known group.
func (s *Store) ListGroups() ([]Group, error) {
	var groups []Group
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketGroups))
		return b.ForEach(func(k, v []byte) error {
			plain, err := s.open(v)
			if err != nil {
				return err
			}
			var g Group
			if err := unmarshalJSON(plain, &g); err != nil {
				return err
			}
			groups = append(groups, g)
			return nil
		})
	})
	return groups, err
}

// SetGroupKey replaces a group's symmetric key, e.g. when re-accepting
// an invite that reveals the same group under a refreshed key.
func (s *Store) SetGroupKey(groupID string, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var g Group
		found, err := s.getJSON(tx, bucketGroups, groupID, &g)
		if err != nil {
			return err
		}
		if !found {
			return werrors.New(werrors.NotFound, "group not found", nil)
		}
		g.SymmetricKey = key
		return s.putJSON(tx, bucketGroups, groupID, g)
	})
}

// AddGroupMember adds nodeID to group's member set if not already present.
func (s *Store) AddGroupMember(groupID, nodeID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var g Group
		found, err := s.getJSON(tx, bucketGroups, groupID, &g)
		if err != nil {
			return err
		}
		if !found {
			return werrors.New(werrors.NotFound, "group not found", nil)
		}
		for _, m := range g.Members {
			if m == nodeID {
				return nil
			}
		}
		g.Members = append(g.Members, nodeID)
		return s.putJSON(tx, bucketGroups, groupID, g)
	})
}

// RemoveGroupMember removes nodeID from group's member set.
func (s *Store) RemoveGroupMember(groupID, nodeID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var g Group
		found, err := s.getJSON(tx, bucketGroups, groupID, &g)
		if err != nil {
			return err
		}
		if !found {
			return werrors.New(werrors.NotFound, "group not found", nil)
		}
		filtered := g.Members[:0]
		for _, m := range g.Members {
			if m != nodeID {
				filtered = append(filtered, m)
			}
		}
		g.Members = filtered
		return s.putJSON(tx, bucketGroups, groupID, g)
	})
}
