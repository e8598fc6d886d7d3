package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/serialization"
)

// DataEntryKind discriminates the payload variants of a DataEntry.
type DataEntryKind byte

// The wire tags of the data entry variants. An empty entry marks a key
// removed by a data transaction; it has no payload at all.
const (
	DataEmpty   DataEntryKind = 0x00
	DataInteger DataEntryKind = 0x01
	DataBoolean DataEntryKind = 0x02
	DataBinary  DataEntryKind = 0x03
	DataString  DataEntryKind = 0x04
)

// DataEntry is one key of an account's data storage. Exactly one payload
// field, selected by Kind, is meaningful per entry; the others hold their
// zero values.
type DataEntry struct {
	Key string

	Kind        DataEntryKind
	IntValue    int64
	BoolValue   bool
	BinaryValue []byte
	StringValue string
}

func serializeDataEntry(entry *DataEntry) ([]byte, error) {
	buf := []byte{byte(entry.Kind)}
	switch entry.Kind {
	case DataEmpty:
		return buf, nil
	case DataInteger:
		return serialization.AppendUint64(buf, uint64(entry.IntValue)), nil
	case DataBoolean:
		return serialization.AppendBool(buf, entry.BoolValue), nil
	case DataBinary:
		return serialization.AppendBytes16(buf, entry.BinaryValue)
	case DataString:
		return serialization.AppendString(buf, entry.StringValue)
	default:
		return nil, errors.Errorf("unknown data entry kind %d", entry.Kind)
	}
}

func deserializeDataEntry(key string, entryBytes []byte) (*DataEntry, error) {
	if len(entryBytes) == 0 {
		return nil, dataEntryError(errors.Wrap(serialization.ErrMalformedData,
			"empty buffer"))
	}
	entry := &DataEntry{Key: key, Kind: DataEntryKind(entryBytes[0])}
	rest := entryBytes[1:]
	var err error
	switch entry.Kind {
	case DataEmpty:
	case DataInteger:
		var value uint64
		value, rest, err = serialization.ReadUint64(rest)
		if err != nil {
			return nil, dataEntryError(err)
		}
		entry.IntValue = int64(value)
	case DataBoolean:
		entry.BoolValue, rest, err = serialization.ReadBool(rest)
		if err != nil {
			return nil, dataEntryError(err)
		}
	case DataBinary:
		entry.BinaryValue, rest, err = serialization.ReadBytes16(rest)
		if err != nil {
			return nil, dataEntryError(err)
		}
	case DataString:
		entry.StringValue, rest, err = serialization.ReadString(rest)
		if err != nil {
			return nil, dataEntryError(err)
		}
	default:
		return nil, dataEntryError(errors.Wrapf(serialization.ErrMalformedData,
			"unrecognized kind tag 0x%02x", entryBytes[0]))
	}
	if len(rest) != 0 {
		return nil, dataEntryError(errors.Wrapf(serialization.ErrMalformedData,
			"%d trailing bytes", len(rest)))
	}
	return entry, nil
}

func dataEntryError(err error) error {
	return errors.Wrap(err, "failed to decode data entry")
}

// The identity of a data entry is the owning address id plus the
// length-prefixed entry key, so that identities never collide and the entry
// key can be recovered from the database key.
func dataEntryIdentity(addr AddressID, key string) ([]byte, error) {
	identity := make([]byte, 0, AddressIDLength+2+len(key))
	identity = append(identity, addr[:]...)
	return serialization.AppendString(identity, key)
}

// PutDataEntry records the entry under the account's data storage as of the
// given height.
func PutDataEntry(rw database.DataWriter, addr AddressID, height uint32, entry *DataEntry) error {
	identity, err := dataEntryIdentity(addr, entry.Key)
	if err != nil {
		return err
	}
	entryBytes, err := serializeDataEntry(entry)
	if err != nil {
		return err
	}
	return dataEntryBucket.recordChange(rw, identity, height, entryBytes)
}

// DataEntryByKey returns the account's current entry under the given key.
// It returns ErrNotFound if the key was never written. Note that a key
// removed by a data transaction is an empty entry, not an absent one.
func DataEntryByKey(accessor database.DataAccessor, addr AddressID, key string) (*DataEntry, error) {
	identity, err := dataEntryIdentity(addr, key)
	if err != nil {
		return nil, err
	}
	entryBytes, found, err := dataEntryBucket.currentValue(accessor, identity)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no data entry %q on address id %x", key, addr)
	}
	return deserializeDataEntry(key, entryBytes)
}

// DataEntryAt returns the account's entry under the given key as it was at
// the given height.
func DataEntryAt(accessor database.DataAccessor, addr AddressID, key string, height uint32) (*DataEntry, error) {
	identity, err := dataEntryIdentity(addr, key)
	if err != nil {
		return nil, err
	}
	entryBytes, found, err := dataEntryBucket.valueAt(accessor, identity, height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no data entry %q on address id %x at height %d", key, addr, height)
	}
	return deserializeDataEntry(key, entryBytes)
}
