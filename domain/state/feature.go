package state

import (
	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/serialization"
)

// Feature votes are versioned so that rolling back a voting period restores
// the tally; approval and activation heights are plain records maintained
// by the consensus layer.

func featureVotesIdentity(featureID uint16) []byte {
	return serialization.AppendUint16(nil, featureID)
}

// PutFeatureVotes records the vote tally of the feature as of the given
// height.
func PutFeatureVotes(rw database.DataWriter, featureID uint16, height uint32, votes uint32) error {
	return featureVotesBucket.recordChange(rw, featureVotesIdentity(featureID),
		height, serialization.AppendUint32(nil, votes))
}

// FeatureVotes returns the feature's current vote tally. A feature nobody
// voted for has a zero tally.
func FeatureVotes(accessor database.DataAccessor, featureID uint16) (uint32, error) {
	votesBytes, found, err := featureVotesBucket.currentValue(accessor, featureVotesIdentity(featureID))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return decodeUint32Record(votesBytes, "feature votes")
}

// PutApprovedFeature records the height at which the feature got approved.
func PutApprovedFeature(rw database.DataWriter, featureID uint16, height uint32) error {
	return rw.Put(approvedFeatureKey(featureID), serialization.AppendUint32(nil, height))
}

// ApprovedFeatureHeight returns the height at which the feature got
// approved, or ErrNotFound if it wasn't.
func ApprovedFeatureHeight(accessor database.DataAccessor, featureID uint16) (uint32, error) {
	heightBytes, err := accessor.Get(approvedFeatureKey(featureID))
	if err != nil {
		return 0, err
	}
	return decodeUint32Record(heightBytes, "feature approval height")
}

// PutActivatedFeature records the height at which the feature activates.
func PutActivatedFeature(rw database.DataWriter, featureID uint16, height uint32) error {
	return rw.Put(activatedFeatureKey(featureID), serialization.AppendUint32(nil, height))
}

// ActivatedFeatureHeight returns the height at which the feature activates,
// or ErrNotFound if it wasn't activated.
func ActivatedFeatureHeight(accessor database.DataAccessor, featureID uint16) (uint32, error) {
	heightBytes, err := accessor.Get(activatedFeatureKey(featureID))
	if err != nil {
		return 0, err
	}
	return decodeUint32Record(heightBytes, "feature activation height")
}

// DeleteApprovedFeature removes the feature's approval record. Used when a
// rollback crosses the approval height.
func DeleteApprovedFeature(rw database.DataWriter, featureID uint16) error {
	return rw.Delete(approvedFeatureKey(featureID))
}

// DeleteActivatedFeature removes the feature's activation record. Used when
// a rollback crosses the approval height.
func DeleteActivatedFeature(rw database.DataWriter, featureID uint16) error {
	return rw.Delete(activatedFeatureKey(featureID))
}
