package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// Per-height bookkeeping of which identities changed in each block. The
// block applier writes these once per block, right next to the changes
// themselves; RollbackToHeight consumes them to find every history that
// needs trimming. Without them rolling back would require scanning whole
// tables.

// PutChangedAddresses records which accounts had their WAVES balance, lease
// balance, or script changed by the block at the given height.
func PutChangedAddresses(rw database.DataWriter, height uint32, addrs []AddressID) error {
	encoded := make([]byte, 0, len(addrs)*AddressIDLength)
	for _, addr := range addrs {
		encoded = append(encoded, addr[:]...)
	}
	return rw.Put(changedAddressesKey(height), encoded)
}

// ChangedAddressesAt returns the accounts recorded by PutChangedAddresses
// for the given height.
func ChangedAddressesAt(accessor database.DataAccessor, height uint32) ([]AddressID, error) {
	encoded, err := accessor.Get(changedAddressesKey(height))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	count, err := serialization.CountFixedSize(encoded, AddressIDLength)
	if err != nil {
		return nil, err
	}
	addrs := make([]AddressID, count)
	for i := 0; i < count; i++ {
		copy(addrs[i][:], encoded[i*AddressIDLength:])
	}
	return addrs, nil
}

// PutChangedAssets records which assets had their info, volume, script, or
// sponsorship changed by the block at the given height.
func PutChangedAssets(rw database.DataWriter, height uint32, assetIDs []ids.Digest) error {
	encoded := make([]byte, 0, len(assetIDs)*ids.DigestLength)
	for _, assetID := range assetIDs {
		encoded = append(encoded, assetID[:]...)
	}
	return rw.Put(changedAssetsKey(height), encoded)
}

// ChangedAssetsAt returns the assets recorded by PutChangedAssets for the
// given height.
func ChangedAssetsAt(accessor database.DataAccessor, height uint32) ([]ids.Digest, error) {
	encoded, err := accessor.Get(changedAssetsKey(height))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeDigestSequence(encoded)
}

// PutChangedAssetBalances records which (account, asset) balances were
// changed by the block at the given height.
func PutChangedAssetBalances(rw database.DataWriter, height uint32, addrs []AddressID, assetIDs []ids.Digest) error {
	if len(addrs) != len(assetIDs) {
		return errors.Errorf("got %d addresses and %d assets, want matched pairs",
			len(addrs), len(assetIDs))
	}
	pairSize := AddressIDLength + ids.DigestLength
	encoded := make([]byte, 0, len(addrs)*pairSize)
	for i := range addrs {
		encoded = append(encoded, addrs[i][:]...)
		encoded = append(encoded, assetIDs[i][:]...)
	}
	return rw.Put(changedAssetBalancesKey(height), encoded)
}

// PutChangedLeases records which leases were created or cancelled by the
// block at the given height.
func PutChangedLeases(rw database.DataWriter, height uint32, leaseIDs []ids.Digest) error {
	encoded := make([]byte, 0, len(leaseIDs)*ids.DigestLength)
	for _, leaseID := range leaseIDs {
		encoded = append(encoded, leaseID[:]...)
	}
	return rw.Put(changedLeasesKey(height), encoded)
}

// PutChangedDataKeys records which of the account's data entries were
// changed by the block at the given height.
func PutChangedDataKeys(rw database.DataWriter, height uint32, addr AddressID, keys []string) error {
	var encoded []byte
	var err error
	for _, key := range keys {
		encoded, err = serialization.AppendString(encoded, key)
		if err != nil {
			return err
		}
	}
	return rw.Put(changedDataKeysKey(height, addr), encoded)
}

// PutBlockTransactions records the ids of the transactions the block at the
// given height carries.
func PutBlockTransactions(rw database.DataWriter, height uint32, txIDs []ids.Digest) error {
	rawIDs := make([][]byte, len(txIDs))
	for i := range txIDs {
		rawIDs[i] = txIDs[i][:]
	}
	encoded, err := serialization.AppendIDs(nil, rawIDs)
	if err != nil {
		return err
	}
	return rw.Put(blockTransactionsKey(height), encoded)
}

// BlockTransactionsAt returns the ids of the transactions of the block at
// the given height.
func BlockTransactionsAt(accessor database.DataAccessor, height uint32) ([]ids.Digest, error) {
	encoded, err := accessor.Get(blockTransactionsKey(height))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	rawIDs, err := serialization.ReadIDs(encoded)
	if err != nil {
		return nil, err
	}
	txIDs := make([]ids.Digest, len(rawIDs))
	for i, rawID := range rawIDs {
		if len(rawID) != ids.DigestLength {
			return nil, errors.Wrapf(ErrCorruptedState,
				"block transaction id of %d bytes at height %d", len(rawID), height)
		}
		copy(txIDs[i][:], rawID)
	}
	return txIDs, nil
}

func decodeDigestSequence(encoded []byte) ([]ids.Digest, error) {
	count, err := serialization.CountFixedSize(encoded, ids.DigestLength)
	if err != nil {
		return nil, err
	}
	digests := make([]ids.Digest, count)
	for i := 0; i < count; i++ {
		copy(digests[i][:], encoded[i*ids.DigestLength:])
	}
	return digests, nil
}

// RollbackToHeight undoes every block above the target height: all histories
// are trimmed back, per-block records are deleted, and the tip moves to the
// target. It must run inside a single Update so the whole rollback lands
// atomically.
func RollbackToHeight(rw database.DataWriter, targetHeight uint32) error {
	currentHeight, err := Height(rw)
	if err != nil {
		return err
	}
	if targetHeight > currentHeight {
		return errors.Errorf("cannot rollback to height %d above the current height %d",
			targetHeight, currentHeight)
	}
	log.Infof("Rolling back from height %d to height %d", currentHeight, targetHeight)
	for height := currentHeight; height > targetHeight; height-- {
		err = rollbackHeight(rw, height)
		if err != nil {
			return err
		}
	}
	return PutHeight(rw, targetHeight)
}

func rollbackHeight(rw database.DataWriter, height uint32) error {
	previous := height - 1

	err := rollbackAddressesAt(rw, height, previous)
	if err != nil {
		return err
	}
	err = rollbackAssetsAt(rw, height, previous)
	if err != nil {
		return err
	}
	err = rollbackAssetBalancesAt(rw, height, previous)
	if err != nil {
		return err
	}
	err = rollbackLeasesAt(rw, height, previous)
	if err != nil {
		return err
	}
	err = rollbackDataEntriesAt(rw, height, previous)
	if err != nil {
		return err
	}
	err = rollbackFeaturesAt(rw, height, previous)
	if err != nil {
		return err
	}
	err = rollbackTransactionsAt(rw, height)
	if err != nil {
		return err
	}
	return rollbackBlockRecordsAt(rw, height)
}

func rollbackAddressesAt(rw database.DataWriter, height, previous uint32) error {
	addrs, err := ChangedAddressesAt(rw, height)
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		err = wavesBalanceBucket.rollbackTo(rw, addr[:], previous)
		if err != nil {
			return err
		}
		err = accountScriptBucket.rollbackTo(rw, addr[:], previous)
		if err != nil {
			return err
		}
	}
	return rw.Delete(changedAddressesKey(height))
}

func rollbackAssetsAt(rw database.DataWriter, height, previous uint32) error {
	assetIDs, err := ChangedAssetsAt(rw, height)
	if err != nil {
		return err
	}
	for _, assetID := range assetIDs {
		for _, bucket := range []historyBucket{
			assetInfoBucket, assetVolumeBucket, assetScriptBucket, sponsorshipBucket,
		} {
			err = bucket.rollbackTo(rw, assetID[:], previous)
			if err != nil {
				return err
			}
		}
		// An asset whose whole info history got trimmed away was
		// issued in the rolled-back block, so its static record
		// goes too.
		remaining, err := remainingHeights(rw, assetInfoBucket, assetID[:], previous)
		if err != nil {
			return err
		}
		if remaining == 0 {
			err = deleteAssetStaticInfo(rw, assetID)
			if err != nil {
				return err
			}
		}
	}
	return rw.Delete(changedAssetsKey(height))
}

// remainingHeights counts the heights of identity's history that survive a
// rollback to the given height. It reads through the snapshot, so it must
// be computed from the pre-batch history.
func remainingHeights(accessor database.DataAccessor, bucket historyBucket, identity []byte, height uint32) (int, error) {
	heights, err := bucket.heights(accessor, identity)
	if err != nil {
		return 0, err
	}
	remaining := 0
	for _, recorded := range heights {
		if recorded <= height {
			remaining++
		}
	}
	return remaining, nil
}

func rollbackAssetBalancesAt(rw database.DataWriter, height, previous uint32) error {
	encoded, err := rw.Get(changedAssetBalancesKey(height))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil
		}
		return err
	}
	pairSize := AddressIDLength + ids.DigestLength
	count, err := serialization.CountFixedSize(encoded, pairSize)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		identity := encoded[i*pairSize : (i+1)*pairSize]
		err = assetBalanceBucket.rollbackTo(rw, identity, previous)
		if err != nil {
			return err
		}
	}
	return rw.Delete(changedAssetBalancesKey(height))
}

func rollbackLeasesAt(rw database.DataWriter, height, previous uint32) error {
	encoded, err := rw.Get(changedLeasesKey(height))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil
		}
		return err
	}
	leaseIDs, err := decodeDigestSequence(encoded)
	if err != nil {
		return err
	}
	for _, leaseID := range leaseIDs {
		err = leaseInfoBucket.rollbackTo(rw, leaseID[:], previous)
		if err != nil {
			return err
		}
	}
	return rw.Delete(changedLeasesKey(height))
}

func rollbackDataEntriesAt(rw database.DataWriter, height, previous uint32) error {
	cursor, err := rw.Cursor(changedDataKeysHeightPrefix(height))
	if err != nil {
		return err
	}
	defer func() {
		closeErr := cursor.Close()
		if closeErr != nil {
			log.Errorf("Failed to close the changed-data-keys cursor: %s", closeErr)
		}
	}()

	for cursor.Next() {
		rawKey, err := cursor.Key()
		if err != nil {
			return err
		}
		fullKey := make([]byte, len(rawKey))
		copy(fullKey, rawKey)
		addr, err := parseChangedDataKeysKey(fullKey)
		if err != nil {
			return err
		}
		encodedKeys, err := cursor.Value()
		if err != nil {
			return err
		}
		rest := encodedKeys
		for len(rest) > 0 {
			var entryKey string
			entryKey, rest, err = serialization.ReadString(rest)
			if err != nil {
				return err
			}
			identity, err := dataEntryIdentity(addr, entryKey)
			if err != nil {
				return err
			}
			err = dataEntryBucket.rollbackTo(rw, identity, previous)
			if err != nil {
				return err
			}
		}
		err = rw.Delete(fullKey)
		if err != nil {
			return err
		}
	}
	return nil
}

func rollbackFeaturesAt(rw database.DataWriter, height, previous uint32) error {
	// The feature id space is tiny, so trimming votes by scanning the
	// whole history table is cheaper than bookkeeping it per block.
	cursor, err := rw.Cursor(tagPrefix(tagFeatureVotesHistory))
	if err != nil {
		return err
	}
	defer func() {
		closeErr := cursor.Close()
		if closeErr != nil {
			log.Errorf("Failed to close the feature-votes cursor: %s", closeErr)
		}
	}()
	for cursor.Next() {
		rawKey, err := cursor.Key()
		if err != nil {
			return err
		}
		featureID, err := parseFeatureVotesHistoryKey(rawKey)
		if err != nil {
			return err
		}
		err = featureVotesBucket.rollbackTo(rw, featureVotesIdentity(featureID), previous)
		if err != nil {
			return err
		}
	}

	// Approval and activation records whose height falls inside the
	// rolled-back block are dropped.
	for _, tag := range []byte{tagApprovedFeature, tagActivatedFeature} {
		err = deleteFeatureRecordsAt(rw, tag, height)
		if err != nil {
			return err
		}
	}
	return nil
}

func deleteFeatureRecordsAt(rw database.DataWriter, tag byte, height uint32) error {
	cursor, err := rw.Cursor(tagPrefix(tag))
	if err != nil {
		return err
	}
	defer func() {
		closeErr := cursor.Close()
		if closeErr != nil {
			log.Errorf("Failed to close the feature-records cursor: %s", closeErr)
		}
	}()
	for cursor.Next() {
		value, err := cursor.Value()
		if err != nil {
			return err
		}
		recordedHeight, err := decodeUint32Record(value, "feature record height")
		if err != nil {
			return err
		}
		if recordedHeight != height {
			continue
		}
		rawKey, err := cursor.Key()
		if err != nil {
			return err
		}
		fullKey := make([]byte, len(rawKey))
		copy(fullKey, rawKey)
		err = rw.Delete(fullKey)
		if err != nil {
			return err
		}
	}
	return nil
}

func rollbackTransactionsAt(rw database.DataWriter, height uint32) error {
	txIDs, err := BlockTransactionsAt(rw, height)
	if err != nil {
		return err
	}
	for _, txID := range txIDs {
		err = deleteTransaction(rw, txID)
		if err != nil {
			return err
		}
		// A rolled-back invocation can no longer be in progress.
		err = DeleteContinuationState(rw, txID)
		if err != nil {
			return err
		}
	}
	return rw.Delete(blockTransactionsKey(height))
}

func rollbackBlockRecordsAt(rw database.DataWriter, height uint32) error {
	meta, err := BlockMetaByHeight(rw, height)
	if err != nil {
		if database.IsNotFoundError(err) {
			return errors.Wrapf(ErrCorruptedState,
				"no block meta at height %d within the current chain", height)
		}
		return err
	}
	err = deleteBlockMeta(rw, meta)
	if err != nil {
		return err
	}
	return rw.Delete(scoreKey(height))
}
