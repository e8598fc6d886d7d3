package database

// DataAccessor defines the common interface by which data gets accessed in a
// generic Waves state database, regardless of whether it's accessed through
// a transaction, a snapshot, or the database itself.
type DataAccessor interface {
	// Get gets the value for the given key. It returns
	// ErrNotFound if the given key does not exist.
	Get(key []byte) ([]byte, error)

	// Has returns true if the database does contain the
	// given key.
	Has(key []byte) (bool, error)

	// Cursor begins a new cursor over the keys sharing the
	// given prefix, positioned before the first of them.
	Cursor(prefix []byte) (Cursor, error)
}

// DataWriter extends DataAccessor with mutation methods. Depending on the
// implementation the mutations are either applied immediately (the database
// itself) or accumulated for an atomic commit (a transaction).
type DataWriter interface {
	DataAccessor

	// Put sets the value for the given key. It overwrites
	// any previous value for that key.
	Put(key []byte, value []byte) error

	// Delete deletes the value for the given key. Will not
	// return an error if the key doesn't exist.
	Delete(key []byte) error
}
