package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// ContinuationState is the saved position of a multi-step script
// invocation: how many steps already ran and the expression left to
// evaluate, as serialized by the script subsystem.
//
// Only in-progress invocations are persisted. An invocation that completes
// is deleted outright rather than stored in a "done" state.
type ContinuationState struct {
	Step       uint32
	Expression []byte
}

func serializeContinuationState(state *ContinuationState) []byte {
	buf := make([]byte, 0, 4+len(state.Expression))
	buf = serialization.AppendUint32(buf, state.Step)
	return append(buf, state.Expression...)
}

func deserializeContinuationState(stateBytes []byte) (*ContinuationState, error) {
	step, rest, err := serialization.ReadUint32(stateBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode continuation state")
	}
	expression := make([]byte, len(rest))
	copy(expression, rest)
	return &ContinuationState{Step: step, Expression: expression}, nil
}

// PutContinuationState stores the in-progress state of the invocation with
// the given transaction id.
func PutContinuationState(rw database.DataWriter, invocationTxID ids.Digest, state *ContinuationState) error {
	return rw.Put(continuationStateKey(invocationTxID), serializeContinuationState(state))
}

// ContinuationStateByID returns the in-progress state of the invocation
// with the given transaction id. It returns ErrNotFound for invocations
// that completed or never suspended.
func ContinuationStateByID(accessor database.DataAccessor, invocationTxID ids.Digest) (*ContinuationState, error) {
	stateBytes, err := accessor.Get(continuationStateKey(invocationTxID))
	if err != nil {
		return nil, err
	}
	return deserializeContinuationState(stateBytes)
}

// DeleteContinuationState removes the invocation's saved state once it
// completes.
func DeleteContinuationState(rw database.DataWriter, invocationTxID ids.Digest) error {
	return rw.Delete(continuationStateKey(invocationTxID))
}
