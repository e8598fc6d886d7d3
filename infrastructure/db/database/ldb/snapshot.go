package ldb

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/qurulab/Waves/infrastructure/db/database"
)

// LevelDBSnapshot is a thin wrapper around a leveldb snapshot. It observes
// the database as it was at the moment it was taken, no matter what gets
// committed afterwards.
type LevelDBSnapshot struct {
	snapshot    *leveldb.Snapshot
	releaseOnce sync.Once
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (s *LevelDBSnapshot) Get(key []byte) ([]byte, error) {
	data, err := s.snapshot.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound,
				"key %x not found", key)
		}
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Has returns true if the snapshot does contain the
// given key.
func (s *LevelDBSnapshot) Has(key []byte) (bool, error) {
	exists, err := s.snapshot.Has(key, nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}

// Cursor begins a new cursor over the given prefix, observing the
// snapshot's state.
func (s *LevelDBSnapshot) Cursor(prefix []byte) (database.Cursor, error) {
	ldbIterator := s.snapshot.NewIterator(util.BytesPrefix(prefix), nil)
	return newLevelDBCursor(ldbIterator, prefix), nil
}

// Release releases the snapshot. It is safe to call more than once.
func (s *LevelDBSnapshot) Release() {
	s.releaseOnce.Do(func() {
		s.snapshot.Release()
	})
}
