package state

import (
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
	"github.com/qurulab/Waves/util/serialization"
)

// BlockMeta is everything the state keeps per accepted block. It is written
// once when the block is accepted, never mutated, and removed only when the
// block's height is rolled back.
//
// The header is an opaque sub-entity serialized by its own codec; it is
// stored behind a length prefix so this layer can extract it without
// decoding it.
type BlockMeta struct {
	Header     []byte
	Signature  ids.Signature
	HeaderHash *ids.Digest // nil for blocks below the protobuf era
	Height     uint32
	Size       uint32
	TxCount    uint32
	TotalFee   uint64
	Reward     *uint64     // nil before the reward feature activated
	VRF        *ids.Digest // nil for pre-VRF generation schemes
}

func serializeBlockMeta(meta *BlockMeta) ([]byte, error) {
	buf := make([]byte, 0, 4+len(meta.Header)+ids.SignatureLength+64)
	buf = serialization.AppendUint32(buf, uint32(len(meta.Header)))
	buf = append(buf, meta.Header...)
	buf = append(buf, meta.Signature[:]...)
	buf = serialization.AppendBool(buf, meta.HeaderHash != nil)
	if meta.HeaderHash != nil {
		buf = append(buf, meta.HeaderHash[:]...)
	}
	buf = serialization.AppendUint32(buf, meta.Height)
	buf = serialization.AppendUint32(buf, meta.Size)
	buf = serialization.AppendUint32(buf, meta.TxCount)
	buf = serialization.AppendUint64(buf, meta.TotalFee)
	buf = serialization.AppendBool(buf, meta.Reward != nil)
	if meta.Reward != nil {
		buf = serialization.AppendUint64(buf, *meta.Reward)
	}
	buf = serialization.AppendBool(buf, meta.VRF != nil)
	if meta.VRF != nil {
		buf = append(buf, meta.VRF[:]...)
	}
	return buf, nil
}

func deserializeBlockMeta(metaBytes []byte) (*BlockMeta, error) {
	meta := &BlockMeta{}
	headerSize, rest, err := serialization.ReadUint32(metaBytes)
	if err != nil {
		return nil, blockMetaError(err)
	}
	if uint32(len(rest)) < headerSize {
		return nil, blockMetaError(errors.Wrapf(serialization.ErrMalformedData,
			"header of %d bytes, %d available", headerSize, len(rest)))
	}
	meta.Header = make([]byte, headerSize)
	copy(meta.Header, rest[:headerSize])
	rest = rest[headerSize:]

	if len(rest) < ids.SignatureLength {
		return nil, blockMetaError(errors.Wrap(serialization.ErrMalformedData,
			"truncated block signature"))
	}
	copy(meta.Signature[:], rest[:ids.SignatureLength])
	rest = rest[ids.SignatureLength:]

	hasHeaderHash, rest, err := serialization.ReadBool(rest)
	if err != nil {
		return nil, blockMetaError(err)
	}
	if hasHeaderHash {
		if len(rest) < ids.DigestLength {
			return nil, blockMetaError(errors.Wrap(serialization.ErrMalformedData,
				"truncated header hash"))
		}
		var headerHash ids.Digest
		copy(headerHash[:], rest[:ids.DigestLength])
		meta.HeaderHash = &headerHash
		rest = rest[ids.DigestLength:]
	}

	meta.Height, rest, err = serialization.ReadUint32(rest)
	if err != nil {
		return nil, blockMetaError(err)
	}
	meta.Size, rest, err = serialization.ReadUint32(rest)
	if err != nil {
		return nil, blockMetaError(err)
	}
	meta.TxCount, rest, err = serialization.ReadUint32(rest)
	if err != nil {
		return nil, blockMetaError(err)
	}
	meta.TotalFee, rest, err = serialization.ReadUint64(rest)
	if err != nil {
		return nil, blockMetaError(err)
	}

	hasReward, rest, err := serialization.ReadBool(rest)
	if err != nil {
		return nil, blockMetaError(err)
	}
	if hasReward {
		var reward uint64
		reward, rest, err = serialization.ReadUint64(rest)
		if err != nil {
			return nil, blockMetaError(err)
		}
		meta.Reward = &reward
	}

	hasVRF, rest, err := serialization.ReadBool(rest)
	if err != nil {
		return nil, blockMetaError(err)
	}
	if hasVRF {
		if len(rest) < ids.DigestLength {
			return nil, blockMetaError(errors.Wrap(serialization.ErrMalformedData,
				"truncated VRF output"))
		}
		var vrf ids.Digest
		copy(vrf[:], rest[:ids.DigestLength])
		meta.VRF = &vrf
		rest = rest[ids.DigestLength:]
	}

	if len(rest) != 0 {
		return nil, blockMetaError(errors.Wrapf(serialization.ErrMalformedData,
			"%d trailing bytes", len(rest)))
	}
	return meta, nil
}

func blockMetaError(err error) error {
	return errors.Wrap(err, "failed to decode block meta")
}

// PutBlockMeta stores the meta of a newly accepted block and indexes its
// height under the block's signature.
func PutBlockMeta(rw database.DataWriter, meta *BlockMeta) error {
	metaBytes, err := serializeBlockMeta(meta)
	if err != nil {
		return err
	}
	err = rw.Put(blockMetaKey(meta.Height), metaBytes)
	if err != nil {
		return err
	}
	return rw.Put(heightOfBlockKey(meta.Signature),
		serialization.AppendUint32(nil, meta.Height))
}

// BlockMetaByHeight returns the meta of the block at the given height. It
// returns ErrNotFound if no block was accepted at that height.
func BlockMetaByHeight(accessor database.DataAccessor, height uint32) (*BlockMeta, error) {
	metaBytes, err := accessor.Get(blockMetaKey(height))
	if err != nil {
		return nil, err
	}
	return deserializeBlockMeta(metaBytes)
}

// HeightByBlockID returns the height of the block with the given signature.
// It returns ErrNotFound if the block is unknown.
func HeightByBlockID(accessor database.DataAccessor, blockID ids.Signature) (uint32, error) {
	heightBytes, err := accessor.Get(heightOfBlockKey(blockID))
	if err != nil {
		return 0, err
	}
	return decodeUint32Record(heightBytes, "block height")
}

func deleteBlockMeta(rw database.DataWriter, meta *BlockMeta) error {
	err := rw.Delete(blockMetaKey(meta.Height))
	if err != nil {
		return err
	}
	return rw.Delete(heightOfBlockKey(meta.Signature))
}
