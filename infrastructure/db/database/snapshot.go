package database

// Snapshot defines the interface of a read-only point-in-time view of the
// database. All reads issued through it observe the same state even if
// concurrent writers commit afterwards.
type Snapshot interface {
	DataAccessor

	// Release releases the snapshot's resources. The snapshot must not
	// be used after Release returns. It is safe to call more than once.
	Release()
}
