package database

// Transaction defines the interface of a database transaction.
//
// Note: transactions provide data consistency over the state of the database
// as it was when the transaction started. There is NO guarantee that if one
// puts data into the transaction then it will be available to get within the
// same transaction. Reads are served from the underlying snapshot, not from
// the pending batch.
type Transaction interface {
	DataWriter

	// Rollback discards whatever changes were accumulated within this
	// transaction and releases its snapshot.
	Rollback() error

	// Commit atomically applies whatever changes were accumulated within
	// this transaction to the database and releases its snapshot. Either
	// all of them become visible or, on error, none.
	Commit() error

	// RollbackUnlessClosed rolls back the transaction unless it had
	// already been closed using either Rollback or Commit. It is meant
	// to be deferred right after Begin so the transaction's snapshot is
	// released on every exit path.
	RollbackUnlessClosed() error
}
