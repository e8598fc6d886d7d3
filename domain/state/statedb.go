package state

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/infrastructure/db/database/ldb"
	"github.com/qurulab/Waves/util/serialization"
)

// schemaVersion is bumped whenever the byte layout of any tag changes.
// A database written with a different version cannot be opened without a
// migration.
const schemaVersion = 1

// DB is the node's state database: all persisted entities layered over one
// ordered key-value store.
//
// Any number of concurrent read-only views may be open at once, each
// isolated on its own snapshot. The design provides no multi-writer conflict
// detection; callers are responsible for serializing writers, typically one
// writer applying blocks in height order.
type DB struct {
	db database.Database
}

// Open opens (creating if needed) the state database at the given path.
func Open(path string) (*DB, error) {
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		return nil, err
	}
	stateDB := &DB{db: db}
	err = stateDB.checkSchemaVersion()
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			log.Errorf("Failed to close the database after a version check failure: %s", closeErr)
		}
		return nil, err
	}
	return stateDB, nil
}

// NewDB wraps an already-open database. Mostly useful for tests that want
// to inject an engine.
func NewDB(db database.Database) (*DB, error) {
	stateDB := &DB{db: db}
	err := stateDB.checkSchemaVersion()
	if err != nil {
		return nil, err
	}
	return stateDB, nil
}

func (s *DB) checkSchemaVersion() error {
	versionBytes, err := s.db.Get(schemaVersionKey())
	if err != nil {
		if database.IsNotFoundError(err) {
			// Fresh database. Stamp it with the current version.
			log.Infof("Initializing state database with schema version %d", schemaVersion)
			return s.db.Put(schemaVersionKey(), serialization.AppendUint32(nil, schemaVersion))
		}
		return err
	}
	version, rest, err := serialization.ReadUint32(versionBytes)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return errors.Wrapf(ErrCorruptedState,
			"schema version record has %d trailing bytes", len(rest))
	}
	if version != schemaVersion {
		return errors.Errorf("state database has schema version %d, this build requires %d; "+
			"run a migration or resync from scratch", version, schemaVersion)
	}
	return nil
}

// Close closes the underlying database.
func (s *DB) Close() error {
	return s.db.Close()
}

// View runs fn against a read-only point-in-time view of the state. The
// view's snapshot is released when View returns, on every exit path.
func (s *DB) View(fn func(accessor database.DataAccessor) error) error {
	snapshot, err := s.db.Snapshot()
	if err != nil {
		return err
	}
	defer snapshot.Release()
	return fn(snapshot)
}

// Update runs fn against a read-write view of the state. Reads observe the
// state as it was when Update began and do NOT see the view's own pending
// writes. If fn returns nil, the accumulated writes are flushed to the
// database as one atomic batch; if fn returns an error, the batch is
// discarded and nothing is persisted.
func (s *DB) Update(fn func(rw database.DataWriter) error) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		rollbackErr := dbTx.RollbackUnlessClosed()
		if rollbackErr != nil {
			log.Errorf("Failed to rollback an unclosed transaction: %s", rollbackErr)
		}
	}()
	err = fn(dbTx)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

// decodeUint32Record decodes a record that holds exactly one u32. Trailing
// bytes mean the record wasn't produced by the matching encoder.
func decodeUint32Record(recordBytes []byte, what string) (uint32, error) {
	value, rest, err := serialization.ReadUint32(recordBytes)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to decode %s", what)
	}
	if len(rest) != 0 {
		return 0, errors.Wrapf(serialization.ErrMalformedData,
			"%s record has %d trailing bytes", what, len(rest))
	}
	return value, nil
}

// Height returns the current tip height. A fresh database has height 0.
func Height(accessor database.DataAccessor) (uint32, error) {
	heightBytes, err := accessor.Get(heightKey())
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	return decodeUint32Record(heightBytes, "tip height")
}

// PutHeight records the current tip height.
func PutHeight(rw database.DataWriter, height uint32) error {
	return rw.Put(heightKey(), serialization.AppendUint32(nil, height))
}

// PutScore records the cumulative chain score as of the given height.
func PutScore(rw database.DataWriter, height uint32, score *big.Int) error {
	return rw.Put(scoreKey(height), score.Bytes())
}

// ScoreAt returns the cumulative chain score as of the given height.
func ScoreAt(accessor database.DataAccessor, height uint32) (*big.Int, error) {
	scoreBytes, err := accessor.Get(scoreKey(height))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(scoreBytes), nil
}
