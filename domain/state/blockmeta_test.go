package state

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/qurulab/Waves/infrastructure/db/database"
)

func TestBlockMeta(t *testing.T) {
	stateDB, teardownFunc := prepareStateForTest(t, "TestBlockMeta")
	defer teardownFunc()

	reward := uint64(600000000)
	headerHash := testDigest(0xaa)
	vrf := testDigest(0xbb)
	metas := []*BlockMeta{
		{
			// Pre-protobuf block: no header hash, no reward, no VRF.
			Header:    []byte("legacy header bytes"),
			Signature: testSignature(0x01),
			Height:    1,
			Size:      225,
			TxCount:   0,
			TotalFee:  0,
		},
		{
			Header:     []byte("protobuf header bytes"),
			Signature:  testSignature(0x02),
			HeaderHash: &headerHash,
			Height:     2,
			Size:       1024,
			TxCount:    3,
			TotalFee:   300000,
			Reward:     &reward,
			VRF:        &vrf,
		},
	}

	err := stateDB.Update(func(rw database.DataWriter) error {
		for _, meta := range metas {
			err := PutBlockMeta(rw, meta)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TestBlockMeta: Update unexpectedly failed: %s", err)
	}

	err = stateDB.View(func(accessor database.DataAccessor) error {
		for _, meta := range metas {
			gotMeta, err := BlockMetaByHeight(accessor, meta.Height)
			if err != nil {
				return err
			}
			if !reflect.DeepEqual(gotMeta, meta) {
				t.Fatalf("TestBlockMeta: block meta at height %d changed "+
					"across storage. Want: %s, got: %s", meta.Height,
					spew.Sdump(meta), spew.Sdump(gotMeta))
			}
			gotHeight, err := HeightByBlockID(accessor, meta.Signature)
			if err != nil {
				return err
			}
			if gotHeight != meta.Height {
				t.Fatalf("TestBlockMeta: HeightByBlockID returned %d, "+
					"expected %d", gotHeight, meta.Height)
			}
		}
		_, err := BlockMetaByHeight(accessor, 3)
		if !database.IsNotFoundError(err) {
			t.Fatalf("TestBlockMeta: a height with no block should "+
				"return ErrNotFound, got: %v", err)
		}
		_, err = HeightByBlockID(accessor, testSignature(0x7f))
		if !database.IsNotFoundError(err) {
			t.Fatalf("TestBlockMeta: an unknown block id should "+
				"return ErrNotFound, got: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TestBlockMeta: View unexpectedly failed: %s", err)
	}
}

func TestBlockMetaDecodeErrors(t *testing.T) {
	reward := uint64(1)
	vrf := testDigest(0x01)
	meta := &BlockMeta{
		Header:    []byte("header"),
		Signature: testSignature(0x03),
		Height:    10,
		Reward:    &reward,
		VRF:       &vrf,
	}
	metaBytes, err := serializeBlockMeta(meta)
	if err != nil {
		t.Fatalf("TestBlockMetaDecodeErrors: serializeBlockMeta unexpectedly "+
			"failed: %s", err)
	}

	gotMeta, err := deserializeBlockMeta(metaBytes)
	if err != nil {
		t.Fatalf("TestBlockMetaDecodeErrors: deserializeBlockMeta unexpectedly "+
			"failed: %s", err)
	}
	if !reflect.DeepEqual(gotMeta, meta) {
		t.Fatalf("TestBlockMetaDecodeErrors: block meta changed across "+
			"serialization. Want: %s, got: %s", spew.Sdump(meta), spew.Sdump(gotMeta))
	}

	// Every strict prefix of a valid encoding must be rejected as
	// malformed, never mis-decoded.
	for size := 0; size < len(metaBytes); size++ {
		_, err := deserializeBlockMeta(metaBytes[:size])
		if !IsMalformedDataError(err) {
			t.Fatalf("TestBlockMetaDecodeErrors: a %d-byte prefix "+
				"should be malformed, got: %v", size, err)
		}
	}

	// So must an encoding with junk appended.
	_, err = deserializeBlockMeta(append(append([]byte{}, metaBytes...), 0xff))
	if !IsMalformedDataError(err) {
		t.Fatalf("TestBlockMetaDecodeErrors: trailing bytes should be "+
			"malformed, got: %v", err)
	}
}
