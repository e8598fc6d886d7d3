package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/serialization"
)

// historyBucket describes one versioned table: a history tag holding, per
// identity, the sequence of heights at which the identity changed
// (most-recent-first), and a value tag holding the identity's encoded value
// at each of those heights.
//
// The two records are kept consistent within the same write batch: every
// height listed in the sequence has a live value record, and the sequence is
// strictly descending with no duplicates.
type historyBucket struct {
	historyTag byte
	valueTag   byte
}

var (
	wavesBalanceBucket  = historyBucket{tagWavesBalanceHistory, tagWavesBalanceAt}
	assetBalanceBucket  = historyBucket{tagAssetBalanceHistory, tagAssetBalanceAt}
	assetInfoBucket     = historyBucket{tagAssetInfoHistory, tagAssetInfoAt}
	assetVolumeBucket   = historyBucket{tagAssetVolumeHistory, tagAssetVolumeAt}
	accountScriptBucket = historyBucket{tagAccountScriptHist, tagAccountScriptAt}
	assetScriptBucket   = historyBucket{tagAssetScriptHistory, tagAssetScriptAt}
	dataEntryBucket     = historyBucket{tagDataEntryHistory, tagDataEntryAt}
	leaseInfoBucket     = historyBucket{tagLeaseInfoHistory, tagLeaseInfoAt}
	sponsorshipBucket   = historyBucket{tagSponsorshipHistory, tagSponsorshipAt}
	featureVotesBucket  = historyBucket{tagFeatureVotesHistory, tagFeatureVotesAt}
)

func (hb historyBucket) historyKey(identity []byte) []byte {
	return makeKey(hb.historyTag, identity)
}

func (hb historyBucket) valueKeyAt(identity []byte, height uint32) []byte {
	return makeKey(hb.valueTag, identity, heightSuffix(height))
}

// heights reads the identity's recorded heights, most recent first. An
// identity with no history yields an empty slice.
func (hb historyBucket) heights(accessor database.DataAccessor, identity []byte) ([]uint32, error) {
	historyBytes, err := accessor.Get(hb.historyKey(identity))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeHeights(historyBytes)
}

func decodeHeights(historyBytes []byte) ([]uint32, error) {
	count, err := serialization.CountFixedSize(historyBytes, 4)
	if err != nil {
		return nil, err
	}
	heights := make([]uint32, 0, count)
	rest := historyBytes
	for len(rest) > 0 {
		var height uint32
		height, rest, err = serialization.ReadUint32(rest)
		if err != nil {
			return nil, err
		}
		if len(heights) > 0 && heights[len(heights)-1] <= height {
			return nil, errors.Wrapf(ErrCorruptedState,
				"history sequence is not strictly descending: %d after %d",
				height, heights[len(heights)-1])
		}
		heights = append(heights, height)
	}
	return heights, nil
}

func encodeHeights(heights []uint32) []byte {
	encoded := make([]byte, 0, len(heights)*4)
	for _, height := range heights {
		encoded = serialization.AppendUint32(encoded, height)
	}
	return encoded
}

// currentValue returns the identity's value as of the most recent recorded
// height. found is false for an identity with no history.
func (hb historyBucket) currentValue(accessor database.DataAccessor, identity []byte) (value []byte, found bool, err error) {
	heights, err := hb.heights(accessor, identity)
	if err != nil {
		return nil, false, err
	}
	if len(heights) == 0 {
		return nil, false, nil
	}
	value, err = hb.valueAtRecorded(accessor, identity, heights[0])
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// valueAt returns the identity's value as it was at the given height: the
// value recorded at the most recent height that does not exceed it. found is
// false if the identity had no recorded value yet at that height.
func (hb historyBucket) valueAt(accessor database.DataAccessor, identity []byte, height uint32) (value []byte, found bool, err error) {
	heights, err := hb.heights(accessor, identity)
	if err != nil {
		return nil, false, err
	}
	for _, recorded := range heights {
		if recorded <= height {
			value, err = hb.valueAtRecorded(accessor, identity, recorded)
			if err != nil {
				return nil, false, err
			}
			return value, true, nil
		}
	}
	return nil, false, nil
}

// valueAtRecorded reads the value record of a height the history sequence
// lists. A missing record means the two tables went out of sync, which only
// a corrupted database can produce.
func (hb historyBucket) valueAtRecorded(accessor database.DataAccessor, identity []byte, height uint32) ([]byte, error) {
	value, err := accessor.Get(hb.valueKeyAt(identity, height))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, errors.Wrapf(ErrCorruptedState,
				"history of %x lists height %d but the value record is missing",
				hb.historyKey(identity), height)
		}
		return nil, err
	}
	return value, nil
}

// recordChange records the identity having the given value as of the given
// height. Re-recording at the head height overwrites the value record and
// leaves the sequence alone; recording below the head is a programming error
// since blocks are applied in height order.
//
// Reads go through the underlying snapshot, so recording the same identity
// at two different heights within one batch is not supported; one batch
// corresponds to one block and therefore one height.
func (hb historyBucket) recordChange(rw database.DataWriter, identity []byte, height uint32, value []byte) error {
	heights, err := hb.heights(rw, identity)
	if err != nil {
		return err
	}
	if len(heights) == 0 || heights[0] < height {
		updated := make([]uint32, 0, len(heights)+1)
		updated = append(updated, height)
		updated = append(updated, heights...)
		err = rw.Put(hb.historyKey(identity), encodeHeights(updated))
		if err != nil {
			return err
		}
	} else if heights[0] > height {
		return errors.Errorf(
			"cannot record a change at height %d below the current head %d",
			height, heights[0])
	}
	return rw.Put(hb.valueKeyAt(identity, height), value)
}

// rollbackTo drops all recorded heights strictly greater than the given
// height, deleting their value records. The identity becomes absent if no
// recorded height remains.
func (hb historyBucket) rollbackTo(rw database.DataWriter, identity []byte, height uint32) error {
	heights, err := hb.heights(rw, identity)
	if err != nil {
		return err
	}
	remaining := heights
	for len(remaining) > 0 && remaining[0] > height {
		err = rw.Delete(hb.valueKeyAt(identity, remaining[0]))
		if err != nil {
			return err
		}
		remaining = remaining[1:]
	}
	if len(remaining) == len(heights) {
		return nil
	}
	if len(remaining) == 0 {
		return rw.Delete(hb.historyKey(identity))
	}
	return rw.Put(hb.historyKey(identity), encodeHeights(remaining))
}
