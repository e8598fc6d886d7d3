package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/util/serialization"
)

// ErrCorruptedState denotes that the database violates one of the storage
// layer's invariants, e.g. a history sequence referencing a height that has
// no snapshot record. It is detected eagerly so a corrupted database fails
// fast instead of producing wrong answers.
var ErrCorruptedState = errors.New("corrupted state database")

// IsCorruptedStateError checks whether an error is an ErrCorruptedState.
func IsCorruptedStateError(err error) bool {
	return errors.Is(err, ErrCorruptedState)
}

// IsMalformedDataError checks whether an error denotes malformed entity or
// primitive bytes. Such errors are scoped to the record being decoded; the
// caller decides whether to reject the record or abort the surrounding
// operation.
func IsMalformedDataError(err error) bool {
	return serialization.IsMalformedError(err)
}
