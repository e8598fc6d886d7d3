package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// BalanceProfile is an account's WAVES balance together with its open lease
// totals. Lease totals are signed deltas and may legitimately go negative
// on buggy historical chains, so they keep their sign bit.
type BalanceProfile struct {
	Balance  uint64
	LeaseIn  int64
	LeaseOut int64
}

func serializeBalanceProfile(profile *BalanceProfile) []byte {
	buf := make([]byte, 0, 24)
	buf = serialization.AppendUint64(buf, profile.Balance)
	buf = serialization.AppendUint64(buf, uint64(profile.LeaseIn))
	buf = serialization.AppendUint64(buf, uint64(profile.LeaseOut))
	return buf
}

func deserializeBalanceProfile(profileBytes []byte) (*BalanceProfile, error) {
	if len(profileBytes) != 24 {
		return nil, errors.Wrapf(serialization.ErrMalformedData,
			"failed to decode balance profile: length %d, want 24", len(profileBytes))
	}
	profile := &BalanceProfile{}
	var leaseIn, leaseOut uint64
	var err error
	profile.Balance, profileBytes, err = serialization.ReadUint64(profileBytes)
	if err != nil {
		return nil, err
	}
	leaseIn, profileBytes, err = serialization.ReadUint64(profileBytes)
	if err != nil {
		return nil, err
	}
	leaseOut, _, err = serialization.ReadUint64(profileBytes)
	if err != nil {
		return nil, err
	}
	profile.LeaseIn = int64(leaseIn)
	profile.LeaseOut = int64(leaseOut)
	return profile, nil
}

// PutWavesBalance records the account's balance profile as of the given
// height.
func PutWavesBalance(rw database.DataWriter, addr AddressID, height uint32, profile *BalanceProfile) error {
	return wavesBalanceBucket.recordChange(rw, addr[:], height, serializeBalanceProfile(profile))
}

// WavesBalance returns the account's current balance profile. An account
// that never held WAVES has a zero profile.
func WavesBalance(accessor database.DataAccessor, addr AddressID) (*BalanceProfile, error) {
	profileBytes, found, err := wavesBalanceBucket.currentValue(accessor, addr[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return &BalanceProfile{}, nil
	}
	return deserializeBalanceProfile(profileBytes)
}

// WavesBalanceAt returns the account's balance profile as it was at the
// given height.
func WavesBalanceAt(accessor database.DataAccessor, addr AddressID, height uint32) (*BalanceProfile, error) {
	profileBytes, found, err := wavesBalanceBucket.valueAt(accessor, addr[:], height)
	if err != nil {
		return nil, err
	}
	if !found {
		return &BalanceProfile{}, nil
	}
	return deserializeBalanceProfile(profileBytes)
}

func assetBalanceIdentity(addr AddressID, assetID ids.Digest) []byte {
	identity := make([]byte, 0, AddressIDLength+ids.DigestLength)
	identity = append(identity, addr[:]...)
	identity = append(identity, assetID[:]...)
	return identity
}

// PutAssetBalance records the account's balance of the given asset as of
// the given height.
func PutAssetBalance(rw database.DataWriter, addr AddressID, assetID ids.Digest, height uint32, balance uint64) error {
	return assetBalanceBucket.recordChange(rw, assetBalanceIdentity(addr, assetID),
		height, serialization.AppendUint64(nil, balance))
}

// AssetBalance returns the account's current balance of the given asset.
func AssetBalance(accessor database.DataAccessor, addr AddressID, assetID ids.Digest) (uint64, error) {
	balanceBytes, found, err := assetBalanceBucket.currentValue(accessor, assetBalanceIdentity(addr, assetID))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return decodeAssetBalance(balanceBytes)
}

// AssetBalanceAt returns the account's balance of the given asset as it was
// at the given height.
func AssetBalanceAt(accessor database.DataAccessor, addr AddressID, assetID ids.Digest, height uint32) (uint64, error) {
	balanceBytes, found, err := assetBalanceBucket.valueAt(accessor, assetBalanceIdentity(addr, assetID), height)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return decodeAssetBalance(balanceBytes)
}

func decodeAssetBalance(balanceBytes []byte) (uint64, error) {
	balance, rest, err := serialization.ReadUint64(balanceBytes)
	if err != nil {
		return 0, errors.Wrap(err, "failed to decode asset balance")
	}
	if len(rest) != 0 {
		return 0, errors.Wrapf(serialization.ErrMalformedData,
			"failed to decode asset balance: %d trailing bytes", len(rest))
	}
	return balance, nil
}
