package database

// Database defines the interface of an ordered key-value store suitable for
// holding the node state: point reads, prefix cursors, point-in-time
// snapshots, and atomically committed write transactions.
type Database interface {
	DataWriter

	// Begin begins a new database transaction. Reads issued through
	// the transaction observe the database as it was when Begin was
	// called; writes are accumulated and applied atomically on Commit.
	Begin() (Transaction, error)

	// Snapshot returns a read-only view of the database as it is at
	// the moment of the call. The view must be released with Release
	// when no longer needed.
	Snapshot() (Snapshot, error)

	// Close closes the database, releasing any resources it holds.
	Close() error
}
