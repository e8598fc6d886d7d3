package state

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// Every record's key begins with a one-byte tag identifying its logical
// table. Tags are fixed-width, so no tag can be a byte-prefix of another,
// which is what makes per-table prefix scans sound. The numbering is
// append-only: new tags get fresh values, retired values are never reused.
// Changing the byte layout of an existing tag breaks every database written
// so far.
const (
	tagSchemaVersion       byte = 0x00 // () -> u32 schema version
	tagHeight              byte = 0x01 // () -> u32 tip height
	tagScore               byte = 0x02 // u32 height -> big-int score bytes
	tagBlockMetaAt         byte = 0x03 // u32 height -> block meta
	tagHeightOfBlock       byte = 0x04 // 64-byte block signature -> u32 height
	tagWavesBalanceHistory byte = 0x05 // address id -> height seq
	tagWavesBalanceAt      byte = 0x06 // address id ++ u32 height -> balance profile
	tagAssetBalanceHistory byte = 0x07 // address id ++ asset id -> height seq
	tagAssetBalanceAt      byte = 0x08 // address id ++ asset id ++ u32 height -> u64
	tagAssetStaticInfo     byte = 0x09 // asset id -> static info, written once
	tagAssetInfoHistory    byte = 0x0a // asset id -> height seq
	tagAssetInfoAt         byte = 0x0b // asset id ++ u32 height -> name/description
	tagAssetVolumeHistory  byte = 0x0c // asset id -> height seq
	tagAssetVolumeAt       byte = 0x0d // asset id ++ u32 height -> volume info
	tagAccountScriptHist   byte = 0x0e // address id -> height seq
	tagAccountScriptAt     byte = 0x0f // address id ++ u32 height -> account script info
	tagAssetScriptHistory  byte = 0x10 // asset id -> height seq
	tagAssetScriptAt       byte = 0x11 // asset id ++ u32 height -> asset script info
	tagDataEntryHistory    byte = 0x12 // address id ++ u16-len key -> height seq
	tagDataEntryAt         byte = 0x13 // address id ++ u16-len key ++ u32 height -> data entry
	tagLeaseInfoHistory    byte = 0x14 // lease id -> height seq
	tagLeaseInfoAt         byte = 0x15 // lease id ++ u32 height -> lease info
	tagSponsorshipHistory  byte = 0x16 // asset id -> height seq
	tagSponsorshipAt       byte = 0x17 // asset id ++ u32 height -> min sponsored fee
	tagFeatureVotesHistory byte = 0x18 // u16 feature id -> height seq
	tagFeatureVotesAt      byte = 0x19 // u16 feature id ++ u32 height -> u32 votes
	tagApprovedFeature     byte = 0x1a // u16 feature id -> u32 approval height
	tagActivatedFeature    byte = 0x1b // u16 feature id -> u32 activation height
	tagTransactionInfo     byte = 0x1c // tx id -> transaction data
	tagContinuationState   byte = 0x1d // invocation tx id -> continuation state
	tagChangedAddresses    byte = 0x1e // u32 height -> 8-byte address id seq
	tagChangedAssets       byte = 0x1f // u32 height -> 32-byte asset id seq
	tagChangedLeases       byte = 0x20 // u32 height -> 32-byte lease id seq
	tagChangedDataKeys     byte = 0x21 // u32 height ++ address id -> u16-len key seq
	tagBlockTransactions   byte = 0x22 // u32 height -> id seq (tx ids)
	tagChangedAssetBalance byte = 0x23 // u32 height -> (address id ++ asset id) seq
)

// allTags lists every tag in use, in declaration order. It exists so tests
// can assert the table stays collision-free and append-only.
var allTags = []byte{
	tagSchemaVersion, tagHeight, tagScore, tagBlockMetaAt, tagHeightOfBlock,
	tagWavesBalanceHistory, tagWavesBalanceAt,
	tagAssetBalanceHistory, tagAssetBalanceAt,
	tagAssetStaticInfo,
	tagAssetInfoHistory, tagAssetInfoAt,
	tagAssetVolumeHistory, tagAssetVolumeAt,
	tagAccountScriptHist, tagAccountScriptAt,
	tagAssetScriptHistory, tagAssetScriptAt,
	tagDataEntryHistory, tagDataEntryAt,
	tagLeaseInfoHistory, tagLeaseInfoAt,
	tagSponsorshipHistory, tagSponsorshipAt,
	tagFeatureVotesHistory, tagFeatureVotesAt,
	tagApprovedFeature, tagActivatedFeature,
	tagTransactionInfo, tagContinuationState,
	tagChangedAddresses, tagChangedAssets, tagChangedLeases,
	tagChangedDataKeys, tagBlockTransactions, tagChangedAssetBalance,
}

// makeKey builds a full database key out of a tag and suffix parts,
// concatenated in the given order.
func makeKey(tag byte, suffixParts ...[]byte) []byte {
	size := 1
	for _, part := range suffixParts {
		size += len(part)
	}
	key := make([]byte, 0, size)
	key = append(key, tag)
	for _, part := range suffixParts {
		key = append(key, part...)
	}
	return key
}

// tagPrefix returns the prefix shared by all keys of the given tag, for use
// with cursors.
func tagPrefix(tag byte) []byte {
	return []byte{tag}
}

// mustTrimTag strips the tag byte off a full key after asserting it carries
// the expected tag. Feeding a key to another tag's parser is a programming
// error, not a runtime condition, so a mismatch panics.
func mustTrimTag(tag byte, key []byte) []byte {
	if len(key) == 0 || key[0] != tag {
		panic(fmt.Sprintf("key %x parsed with the wrong tag 0x%02x", key, tag))
	}
	return key[1:]
}

func heightSuffix(height uint32) []byte {
	return serialization.AppendUint32(nil, height)
}

func schemaVersionKey() []byte {
	return makeKey(tagSchemaVersion)
}

func heightKey() []byte {
	return makeKey(tagHeight)
}

func scoreKey(height uint32) []byte {
	return makeKey(tagScore, heightSuffix(height))
}

func blockMetaKey(height uint32) []byte {
	return makeKey(tagBlockMetaAt, heightSuffix(height))
}

func heightOfBlockKey(blockID ids.Signature) []byte {
	return makeKey(tagHeightOfBlock, blockID[:])
}

func assetStaticInfoKey(assetID ids.Digest) []byte {
	return makeKey(tagAssetStaticInfo, assetID[:])
}

func approvedFeatureKey(featureID uint16) []byte {
	return makeKey(tagApprovedFeature, serialization.AppendUint16(nil, featureID))
}

func activatedFeatureKey(featureID uint16) []byte {
	return makeKey(tagActivatedFeature, serialization.AppendUint16(nil, featureID))
}

func transactionInfoKey(txID ids.Digest) []byte {
	return makeKey(tagTransactionInfo, txID[:])
}

func continuationStateKey(invocationTxID ids.Digest) []byte {
	return makeKey(tagContinuationState, invocationTxID[:])
}

func changedAddressesKey(height uint32) []byte {
	return makeKey(tagChangedAddresses, heightSuffix(height))
}

func changedAssetsKey(height uint32) []byte {
	return makeKey(tagChangedAssets, heightSuffix(height))
}

func changedLeasesKey(height uint32) []byte {
	return makeKey(tagChangedLeases, heightSuffix(height))
}

func changedDataKeysKey(height uint32, addr AddressID) []byte {
	return makeKey(tagChangedDataKeys, heightSuffix(height), addr[:])
}

func changedDataKeysHeightPrefix(height uint32) []byte {
	return makeKey(tagChangedDataKeys, heightSuffix(height))
}

func blockTransactionsKey(height uint32) []byte {
	return makeKey(tagBlockTransactions, heightSuffix(height))
}

func changedAssetBalancesKey(height uint32) []byte {
	return makeKey(tagChangedAssetBalance, heightSuffix(height))
}

// parseChangedDataKeysKey recovers the address id from a changed-data-keys
// key produced for the given height.
func parseChangedDataKeysKey(key []byte) (AddressID, error) {
	suffix := mustTrimTag(tagChangedDataKeys, key)
	if len(suffix) != 4+AddressIDLength {
		return AddressID{}, errors.Wrapf(serialization.ErrMalformedData,
			"invalid changed-data-keys key length %d", len(key))
	}
	var addr AddressID
	copy(addr[:], suffix[4:])
	return addr, nil
}

// parseFeatureVotesHistoryKey recovers the feature id from a feature-votes
// history key.
func parseFeatureVotesHistoryKey(key []byte) (uint16, error) {
	suffix := mustTrimTag(tagFeatureVotesHistory, key)
	featureID, rest, err := serialization.ReadUint16(suffix)
	if err != nil {
		return 0, err
	}
	if len(rest) != 0 {
		return 0, errors.Wrapf(serialization.ErrMalformedData,
			"invalid feature-votes history key length %d", len(key))
	}
	return featureID, nil
}
