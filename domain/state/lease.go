package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// LeaseInfo is the stored state of a lease. A cancelled lease stays in the
// database with IsActive flipped off so that lease history survives
// rollbacks.
type LeaseInfo struct {
	IsActive  bool
	Sender    AddressID
	Recipient AddressID
	Amount    uint64
}

func serializeLeaseInfo(info *LeaseInfo) []byte {
	buf := make([]byte, 0, 1+2*AddressIDLength+8)
	buf = serialization.AppendBool(buf, info.IsActive)
	buf = append(buf, info.Sender[:]...)
	buf = append(buf, info.Recipient[:]...)
	return serialization.AppendUint64(buf, info.Amount)
}

func deserializeLeaseInfo(infoBytes []byte) (*LeaseInfo, error) {
	if len(infoBytes) != 1+2*AddressIDLength+8 {
		return nil, errors.Wrapf(serialization.ErrMalformedData,
			"failed to decode lease info: length %d, want %d",
			len(infoBytes), 1+2*AddressIDLength+8)
	}
	info := &LeaseInfo{}
	isActive, rest, err := serialization.ReadBool(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode lease info")
	}
	info.IsActive = isActive
	copy(info.Sender[:], rest[:AddressIDLength])
	rest = rest[AddressIDLength:]
	copy(info.Recipient[:], rest[:AddressIDLength])
	rest = rest[AddressIDLength:]
	info.Amount, _, err = serialization.ReadUint64(rest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode lease info")
	}
	return info, nil
}

// PutLeaseInfo records the lease's state as of the given height.
func PutLeaseInfo(rw database.DataWriter, leaseID ids.Digest, height uint32, info *LeaseInfo) error {
	return leaseInfoBucket.recordChange(rw, leaseID[:], height, serializeLeaseInfo(info))
}

// LeaseInfoByID returns the lease's current state. It returns ErrNotFound
// for an unknown lease.
func LeaseInfoByID(accessor database.DataAccessor, leaseID ids.Digest) (*LeaseInfo, error) {
	infoBytes, found, err := leaseInfoBucket.currentValue(accessor, leaseID[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound, "unknown lease %s", leaseID)
	}
	return deserializeLeaseInfo(infoBytes)
}

// LeaseInfoAt returns the lease's state as it was at the given height.
func LeaseInfoAt(accessor database.DataAccessor, leaseID ids.Digest, height uint32) (*LeaseInfo, error) {
	infoBytes, found, err := leaseInfoBucket.valueAt(accessor, leaseID[:], height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"unknown lease %s at height %d", leaseID, height)
	}
	return deserializeLeaseInfo(infoBytes)
}
