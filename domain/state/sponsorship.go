package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// SponsorshipInfo is the fee an asset's issuer charges for paying fees in
// that asset. A MinAssetFee of zero means sponsorship is disabled.
type SponsorshipInfo struct {
	MinAssetFee uint64
}

// PutSponsorship records the asset's sponsorship state as of the given
// height.
func PutSponsorship(rw database.DataWriter, assetID ids.Digest, height uint32, info *SponsorshipInfo) error {
	return sponsorshipBucket.recordChange(rw, assetID[:], height,
		serialization.AppendUint64(nil, info.MinAssetFee))
}

// Sponsorship returns the asset's current sponsorship state. It returns
// ErrNotFound for an asset that was never sponsored.
func Sponsorship(accessor database.DataAccessor, assetID ids.Digest) (*SponsorshipInfo, error) {
	infoBytes, found, err := sponsorshipBucket.currentValue(accessor, assetID[:])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no sponsorship for asset %s", assetID)
	}
	return decodeSponsorship(infoBytes)
}

// SponsorshipAt returns the asset's sponsorship state as it was at the
// given height.
func SponsorshipAt(accessor database.DataAccessor, assetID ids.Digest, height uint32) (*SponsorshipInfo, error) {
	infoBytes, found, err := sponsorshipBucket.valueAt(accessor, assetID[:], height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(database.ErrNotFound,
			"no sponsorship for asset %s at height %d", assetID, height)
	}
	return decodeSponsorship(infoBytes)
}

func decodeSponsorship(infoBytes []byte) (*SponsorshipInfo, error) {
	minAssetFee, rest, err := serialization.ReadUint64(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode sponsorship")
	}
	if len(rest) != 0 {
		return nil, errors.Wrapf(serialization.ErrMalformedData,
			"failed to decode sponsorship: %d trailing bytes", len(rest))
	}
	return &SponsorshipInfo{MinAssetFee: minAssetFee}, nil
}
