package state

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// AccountScriptInfo describes the script attached to an account. The script
// itself is an opaque payload serialized by the script subsystem; the
// complexity figures come pre-computed from the estimator.
//
// Complexities maps an estimator version to the complexity of each callable
// the script exposes.
type AccountScriptInfo struct {
	PublicKey          PublicKey
	Script             []byte
	VerifierComplexity uint64
	Complexities       map[uint8]map[string]uint64
}

// AssetScriptInfo describes the script attached to an asset.
type AssetScriptInfo struct {
	Complexity uint64
	Script     []byte
}

func serializeAccountScriptInfo(info *AccountScriptInfo) ([]byte, error) {
	buf := make([]byte, 0, PublicKeyLength+4+len(info.Script)+8)
	buf = append(buf, info.PublicKey[:]...)
	buf = serialization.AppendUint32(buf, uint32(len(info.Script)))
	buf = append(buf, info.Script...)
	buf = serialization.AppendUint64(buf, info.VerifierComplexity)

	// Map iteration order is random; sort both levels so encoding the
	// same logical value twice yields identical bytes.
	versions := make([]int, 0, len(info.Complexities))
	for version := range info.Complexities {
		versions = append(versions, int(version))
	}
	sort.Ints(versions)
	buf = serialization.AppendUint16(buf, uint16(len(versions)))
	for _, version := range versions {
		callables := info.Complexities[uint8(version)]
		names := make([]string, 0, len(callables))
		for name := range callables {
			names = append(names, name)
		}
		sort.Strings(names)
		buf = append(buf, uint8(version))
		buf = serialization.AppendUint16(buf, uint16(len(names)))
		for _, name := range names {
			var err error
			buf, err = serialization.AppendString(buf, name)
			if err != nil {
				return nil, err
			}
			buf = serialization.AppendUint64(buf, callables[name])
		}
	}
	return buf, nil
}

func deserializeAccountScriptInfo(infoBytes []byte) (*AccountScriptInfo, error) {
	info := &AccountScriptInfo{}
	if len(infoBytes) < PublicKeyLength {
		return nil, accountScriptError(errors.Wrap(serialization.ErrMalformedData,
			"truncated public key"))
	}
	copy(info.PublicKey[:], infoBytes[:PublicKeyLength])
	rest := infoBytes[PublicKeyLength:]

	scriptSize, rest, err := serialization.ReadUint32(rest)
	if err != nil {
		return nil, accountScriptError(err)
	}
	if uint32(len(rest)) < scriptSize {
		return nil, accountScriptError(errors.Wrapf(serialization.ErrMalformedData,
			"script of %d bytes, %d available", scriptSize, len(rest)))
	}
	info.Script = make([]byte, scriptSize)
	copy(info.Script, rest[:scriptSize])
	rest = rest[scriptSize:]

	info.VerifierComplexity, rest, err = serialization.ReadUint64(rest)
	if err != nil {
		return nil, accountScriptError(err)
	}

	versionCount, rest, err := serialization.ReadUint16(rest)
	if err != nil {
		return nil, accountScriptError(err)
	}
	info.Complexities = make(map[uint8]map[string]uint64, versionCount)
	for i := 0; i < int(versionCount); i++ {
		if len(rest) < 1 {
			return nil, accountScriptError(errors.Wrap(serialization.ErrMalformedData,
				"truncated estimator version"))
		}
		version := rest[0]
		rest = rest[1:]
		if _, ok := info.Complexities[version]; ok {
			return nil, accountScriptError(errors.Wrapf(serialization.ErrMalformedData,
				"duplicate estimator version %d", version))
		}
		var callableCount uint16
		callableCount, rest, err = serialization.ReadUint16(rest)
		if err != nil {
			return nil, accountScriptError(err)
		}
		callables := make(map[string]uint64, callableCount)
		for j := 0; j < int(callableCount); j++ {
			var name string
			name, rest, err = serialization.ReadString(rest)
			if err != nil {
				return nil, accountScriptError(err)
			}
			var complexity uint64
			complexity, rest, err = serialization.ReadUint64(rest)
			if err != nil {
				return nil, accountScriptError(err)
			}
			callables[name] = complexity
		}
		info.Complexities[version] = callables
	}
	if len(rest) != 0 {
		return nil, accountScriptError(errors.Wrapf(serialization.ErrMalformedData,
			"%d trailing bytes", len(rest)))
	}
	return info, nil
}

func accountScriptError(err error) error {
	return errors.Wrap(err, "failed to decode account script info")
}

// The asset script layout is a fixed 8-byte complexity followed by the raw
// script payload with no length prefix: the script is the last field, so
// everything past the prefix belongs to it.
func serializeAssetScriptInfo(info *AssetScriptInfo) []byte {
	buf := make([]byte, 0, 8+len(info.Script))
	buf = serialization.AppendUint64(buf, info.Complexity)
	return append(buf, info.Script...)
}

func deserializeAssetScriptInfo(infoBytes []byte) (*AssetScriptInfo, error) {
	complexity, rest, err := serialization.ReadUint64(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode asset script info")
	}
	script := make([]byte, len(rest))
	copy(script, rest)
	return &AssetScriptInfo{Complexity: complexity, Script: script}, nil
}

// PutAccountScript records the account's script as of the given height.
func PutAccountScript(rw database.DataWriter, addr AddressID, height uint32, info *AccountScriptInfo) error {
	infoBytes, err := serializeAccountScriptInfo(info)
	if err != nil {
		return err
	}
	return accountScriptBucket.recordChange(rw, addr[:], height, infoBytes)
}

// AccountScript returns the account's current script. It returns
// ErrNotFound for an account that has no script.
func AccountScript(accessor database.DataAccessor, addr AddressID) (*AccountScriptInfo, error) {
	infoBytes, found, err := accountScriptBucket.currentValue(accessor, addr[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound, "no script on address id %x", addr)
	}
	return deserializeAccountScriptInfo(infoBytes)
}

// AccountScriptAt returns the account's script as it was at the given
// height.
func AccountScriptAt(accessor database.DataAccessor, addr AddressID, height uint32) (*AccountScriptInfo, error) {
	infoBytes, found, err := accountScriptBucket.valueAt(accessor, addr[:], height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no script on address id %x at height %d", addr, height)
	}
	return deserializeAccountScriptInfo(infoBytes)
}

// PutAssetScript records the asset's script as of the given height.
func PutAssetScript(rw database.DataWriter, assetID ids.Digest, height uint32, info *AssetScriptInfo) error {
	return assetScriptBucket.recordChange(rw, assetID[:], height, serializeAssetScriptInfo(info))
}

// AssetScript returns the asset's current script. It returns ErrNotFound
// for an asset that has no script.
func AssetScript(accessor database.DataAccessor, assetID ids.Digest) (*AssetScriptInfo, error) {
	infoBytes, found, err := assetScriptBucket.currentValue(accessor, assetID[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound, "no script on asset %s", assetID)
	}
	return deserializeAssetScriptInfo(infoBytes)
}

// AssetScriptAt returns the asset's script as it was at the given height.
func AssetScriptAt(accessor database.DataAccessor, assetID ids.Digest, height uint32) (*AssetScriptInfo, error) {
	infoBytes, found, err := assetScriptBucket.valueAt(accessor, assetID[:], height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no script on asset %s at height %d", assetID, height)
	}
	return deserializeAssetScriptInfo(infoBytes)
}
