package state

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// AssetStaticInfo holds the fields of an asset that are fixed at issue time.
// They never change, so they are stored directly with no history
// indirection.
type AssetStaticInfo struct {
	SourceTxID ids.Digest
	Issuer     PublicKey
	Decimals   uint8
	IsNFT      bool
}

// AssetInfo holds the renameable part of an asset's description.
type AssetInfo struct {
	Name          string
	Description   string
	LastUpdatedAt uint32
}

// AssetVolumeInfo holds the reissuance state of an asset. The total volume
// is unbounded (reissuable assets can overflow 64 bits), hence the big int.
type AssetVolumeInfo struct {
	IsReissuable bool
	TotalVolume  *big.Int
}

func serializeAssetStaticInfo(info *AssetStaticInfo) []byte {
	buf := make([]byte, 0, ids.DigestLength+PublicKeyLength+2)
	buf = append(buf, info.SourceTxID[:]...)
	buf = append(buf, info.Issuer[:]...)
	buf = append(buf, info.Decimals)
	buf = serialization.AppendBool(buf, info.IsNFT)
	return buf
}

func deserializeAssetStaticInfo(infoBytes []byte) (*AssetStaticInfo, error) {
	if len(infoBytes) != ids.DigestLength+PublicKeyLength+2 {
		return nil, errors.Wrapf(serialization.ErrMalformedData,
			"failed to decode asset static info: length %d, want %d",
			len(infoBytes), ids.DigestLength+PublicKeyLength+2)
	}
	info := &AssetStaticInfo{}
	copy(info.SourceTxID[:], infoBytes[:ids.DigestLength])
	rest := infoBytes[ids.DigestLength:]
	copy(info.Issuer[:], rest[:PublicKeyLength])
	rest = rest[PublicKeyLength:]
	info.Decimals = rest[0]
	isNFT, _, err := serialization.ReadBool(rest[1:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode asset static info")
	}
	info.IsNFT = isNFT
	return info, nil
}

func serializeAssetInfo(info *AssetInfo) ([]byte, error) {
	buf, err := serialization.AppendString(nil, info.Name)
	if err != nil {
		return nil, err
	}
	buf, err = serialization.AppendString(buf, info.Description)
	if err != nil {
		return nil, err
	}
	return serialization.AppendUint32(buf, info.LastUpdatedAt), nil
}

func deserializeAssetInfo(infoBytes []byte) (*AssetInfo, error) {
	info := &AssetInfo{}
	var err error
	info.Name, infoBytes, err = serialization.ReadString(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode asset info")
	}
	info.Description, infoBytes, err = serialization.ReadString(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode asset info")
	}
	info.LastUpdatedAt, infoBytes, err = serialization.ReadUint32(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode asset info")
	}
	if len(infoBytes) != 0 {
		return nil, errors.Wrapf(serialization.ErrMalformedData,
			"failed to decode asset info: %d trailing bytes", len(infoBytes))
	}
	return info, nil
}

func serializeAssetVolumeInfo(info *AssetVolumeInfo) ([]byte, error) {
	buf := serialization.AppendBool(nil, info.IsReissuable)
	// big.Int.Bytes is canonical (no leading zeros), which keeps the
	// encoding deterministic.
	return serialization.AppendBytes16(buf, info.TotalVolume.Bytes())
}

func deserializeAssetVolumeInfo(infoBytes []byte) (*AssetVolumeInfo, error) {
	isReissuable, rest, err := serialization.ReadBool(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode asset volume info")
	}
	volumeBytes, rest, err := serialization.ReadBytes16(rest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode asset volume info")
	}
	if len(rest) != 0 {
		return nil, errors.Wrapf(serialization.ErrMalformedData,
			"failed to decode asset volume info: %d trailing bytes", len(rest))
	}
	return &AssetVolumeInfo{
		IsReissuable: isReissuable,
		TotalVolume:  new(big.Int).SetBytes(volumeBytes),
	}, nil
}

// PutAssetStaticInfo stores the immutable part of a newly issued asset.
func PutAssetStaticInfo(rw database.DataWriter, assetID ids.Digest, info *AssetStaticInfo) error {
	return rw.Put(assetStaticInfoKey(assetID), serializeAssetStaticInfo(info))
}

// AssetStaticInfoByID returns the immutable part of an asset. It returns
// ErrNotFound for an unknown asset.
func AssetStaticInfoByID(accessor database.DataAccessor, assetID ids.Digest) (*AssetStaticInfo, error) {
	infoBytes, err := accessor.Get(assetStaticInfoKey(assetID))
	if err != nil {
		return nil, err
	}
	return deserializeAssetStaticInfo(infoBytes)
}

func deleteAssetStaticInfo(rw database.DataWriter, assetID ids.Digest) error {
	return rw.Delete(assetStaticInfoKey(assetID))
}

// PutAssetInfo records the asset's name and description as of the given
// height.
func PutAssetInfo(rw database.DataWriter, assetID ids.Digest, height uint32, info *AssetInfo) error {
	infoBytes, err := serializeAssetInfo(info)
	if err != nil {
		return err
	}
	return assetInfoBucket.recordChange(rw, assetID[:], height, infoBytes)
}

// AssetInfoByID returns the asset's current name and description. It
// returns ErrNotFound for an asset with no recorded info.
func AssetInfoByID(accessor database.DataAccessor, assetID ids.Digest) (*AssetInfo, error) {
	infoBytes, found, err := assetInfoBucket.currentValue(accessor, assetID[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound, "no info for asset %s", assetID)
	}
	return deserializeAssetInfo(infoBytes)
}

// AssetInfoAt returns the asset's name and description as they were at the
// given height.
func AssetInfoAt(accessor database.DataAccessor, assetID ids.Digest, height uint32) (*AssetInfo, error) {
	infoBytes, found, err := assetInfoBucket.valueAt(accessor, assetID[:], height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no info for asset %s at height %d", assetID, height)
	}
	return deserializeAssetInfo(infoBytes)
}

// PutAssetVolumeInfo records the asset's reissuance state as of the given
// height.
func PutAssetVolumeInfo(rw database.DataWriter, assetID ids.Digest, height uint32, info *AssetVolumeInfo) error {
	infoBytes, err := serializeAssetVolumeInfo(info)
	if err != nil {
		return err
	}
	return assetVolumeBucket.recordChange(rw, assetID[:], height, infoBytes)
}

// AssetVolumeInfoByID returns the asset's current reissuance state. It
// returns ErrNotFound for an asset with no recorded volume.
func AssetVolumeInfoByID(accessor database.DataAccessor, assetID ids.Digest) (*AssetVolumeInfo, error) {
	infoBytes, found, err := assetVolumeBucket.currentValue(accessor, assetID[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound, "no volume for asset %s", assetID)
	}
	return deserializeAssetVolumeInfo(infoBytes)
}

// AssetVolumeInfoAt returns the asset's reissuance state as it was at the
// given height.
func AssetVolumeInfoAt(accessor database.DataAccessor, assetID ids.Digest, height uint32) (*AssetVolumeInfo, error) {
	infoBytes, found, err := assetVolumeBucket.valueAt(accessor, assetID[:], height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no volume for asset %s at height %d", assetID, height)
	}
	return deserializeAssetVolumeInfo(infoBytes)
}
