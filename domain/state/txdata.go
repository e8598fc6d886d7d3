package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// modernTxMarker opens the structured transaction wire form. Legacy
// transaction bytes always start with the transaction type, which was never
// zero, so the two forms cannot be confused.
const modernTxMarker = 0x00

const txFailedFlag = 0x01

// TransactionData is a stored transaction in one of its two wire forms.
// Exactly one of LegacyBytes and ModernBytes is populated: legacy
// transactions keep their original self-delimited serialization, newer ones
// carry the structured payload produced by the protobuf-era serializer.
//
// Succeeded reports whether the script ran to completion. Records written
// before failed transactions could be stored at all have no flag and decode
// as succeeded.
type TransactionData struct {
	Succeeded   bool
	LegacyBytes []byte
	ModernBytes []byte
}

func serializeTransactionData(data *TransactionData) ([]byte, error) {
	switch {
	case data.LegacyBytes != nil && data.ModernBytes != nil:
		return nil, errors.New("transaction data has both wire forms populated")
	case data.LegacyBytes != nil:
		if !data.Succeeded {
			return nil, errors.New("the legacy wire form cannot record a failed transaction")
		}
		if len(data.LegacyBytes) == 0 || data.LegacyBytes[0] == modernTxMarker {
			return nil, errors.Errorf("invalid legacy transaction bytes of length %d",
				len(data.LegacyBytes))
		}
		buf := make([]byte, len(data.LegacyBytes))
		copy(buf, data.LegacyBytes)
		return buf, nil
	case data.ModernBytes != nil:
		var flags byte
		if !data.Succeeded {
			flags |= txFailedFlag
		}
		buf := make([]byte, 0, 2+4+len(data.ModernBytes))
		buf = append(buf, modernTxMarker, flags)
		buf = serialization.AppendUint32(buf, uint32(len(data.ModernBytes)))
		return append(buf, data.ModernBytes...), nil
	default:
		return nil, errors.New("transaction data has no wire form populated")
	}
}

func deserializeTransactionData(dataBytes []byte) (*TransactionData, error) {
	if len(dataBytes) == 0 {
		return nil, transactionDataError(errors.Wrap(serialization.ErrMalformedData,
			"empty buffer"))
	}
	if dataBytes[0] != modernTxMarker {
		// Legacy self-delimited form; no failure flag existed back
		// then, so the transaction succeeded.
		legacyBytes := make([]byte, len(dataBytes))
		copy(legacyBytes, dataBytes)
		return &TransactionData{Succeeded: true, LegacyBytes: legacyBytes}, nil
	}
	if len(dataBytes) < 2 {
		return nil, transactionDataError(errors.Wrap(serialization.ErrMalformedData,
			"truncated flags"))
	}
	flags := dataBytes[1]
	if flags&^txFailedFlag != 0 {
		return nil, transactionDataError(errors.Wrapf(serialization.ErrMalformedData,
			"unrecognized flags 0x%02x", flags))
	}
	size, rest, err := serialization.ReadUint32(dataBytes[2:])
	if err != nil {
		return nil, transactionDataError(err)
	}
	if uint32(len(rest)) != size {
		return nil, transactionDataError(errors.Wrapf(serialization.ErrMalformedData,
			"payload of %d bytes, %d available", size, len(rest)))
	}
	modernBytes := make([]byte, size)
	copy(modernBytes, rest)
	return &TransactionData{
		Succeeded:   flags&txFailedFlag == 0,
		ModernBytes: modernBytes,
	}, nil
}

func transactionDataError(err error) error {
	return errors.Wrap(err, "failed to decode transaction data")
}

// PutTransaction stores a transaction under its id.
func PutTransaction(rw database.DataWriter, txID ids.Digest, data *TransactionData) error {
	dataBytes, err := serializeTransactionData(data)
	if err != nil {
		return err
	}
	return rw.Put(transactionInfoKey(txID), dataBytes)
}

// TransactionByID returns the stored transaction with the given id. It
// returns ErrNotFound for an unknown id.
func TransactionByID(accessor database.DataAccessor, txID ids.Digest) (*TransactionData, error) {
	dataBytes, err := accessor.Get(transactionInfoKey(txID))
	if err != nil {
		return nil, err
	}
	return deserializeTransactionData(dataBytes)
}

func deleteTransaction(rw database.DataWriter, txID ids.Digest) error {
	return rw.Delete(transactionInfoKey(txID))
}
