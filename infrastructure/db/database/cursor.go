package database

// Cursor iterates in ascending byte order over the keys sharing one prefix.
// Cursors are forward-only, finite, and non-restartable. A cursor must be
// closed on every exit path; using a closed cursor panics, since that is a
// programming error rather than a runtime condition.
type Cursor interface {
	// Next moves the cursor to the next key/value pair. It returns false
	// when the cursor is exhausted.
	Next() bool

	// Seek moves the cursor to the first key/value pair whose key is
	// lexicographically greater than or equal to the given key. It
	// returns ErrNotFound if no such pair exists within the prefix.
	Seek(key []byte) error

	// Key returns the full key of the current key/value pair. It returns
	// ErrNotFound if the cursor is before the first pair or after the
	// last one.
	Key() ([]byte, error)

	// Value returns the value of the current key/value pair. It returns
	// ErrNotFound if the cursor is before the first pair or after the
	// last one.
	Value() ([]byte, error)

	// Close releases the cursor's resources. It is an error to call
	// Close twice.
	Close() error
}
