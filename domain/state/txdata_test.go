package state

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/qurulab/Waves/infrastructure/db/database"
	"github.com/qurulab/Waves/util/ids"
)

func TestTransactionData(t *testing.T) {
	stateDB, teardownFunc := prepareStateForTest(t, "TestTransactionData")
	defer teardownFunc()

	// Legacy bytes start with the transaction type, which is never zero.
	legacyTxID := testDigest(0x41)
	legacyData := &TransactionData{
		Succeeded:   true,
		LegacyBytes: []byte{0x04, 0x01, 0x02, 0x03},
	}
	modernTxID := testDigest(0x42)
	modernData := &TransactionData{
		Succeeded:   true,
		ModernBytes: []byte("protobuf transaction payload"),
	}
	failedTxID := testDigest(0x43)
	failedData := &TransactionData{
		Succeeded:   false,
		ModernBytes: []byte("failed invocation payload"),
	}

	err := stateDB.Update(func(rw database.DataWriter) error {
		for _, stored := range []struct {
			txID ids.Digest
			data *TransactionData
		}{
			{legacyTxID, legacyData},
			{modernTxID, modernData},
			{failedTxID, failedData},
		} {
			err := PutTransaction(rw, stored.txID, stored.data)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TestTransactionData: Update unexpectedly failed: %s", err)
	}

	err = stateDB.View(func(accessor database.DataAccessor) error {
		gotData, err := TransactionByID(accessor, legacyTxID)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(gotData, legacyData) {
			t.Fatalf("TestTransactionData: legacy data changed across "+
				"storage. Want: %s, got: %s", spew.Sdump(legacyData), spew.Sdump(gotData))
		}
		gotData, err = TransactionByID(accessor, modernTxID)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(gotData, modernData) {
			t.Fatalf("TestTransactionData: modern data changed across "+
				"storage. Want: %s, got: %s", spew.Sdump(modernData), spew.Sdump(gotData))
		}
		gotData, err = TransactionByID(accessor, failedTxID)
		if err != nil {
			return err
		}
		if gotData.Succeeded {
			t.Fatalf("TestTransactionData: the failed transaction read " +
				"back as succeeded")
		}
		_, err = TransactionByID(accessor, testDigest(0x44))
		if !database.IsNotFoundError(err) {
			t.Fatalf("TestTransactionData: an unknown transaction id "+
				"should return ErrNotFound, got: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TestTransactionData: View unexpectedly failed: %s", err)
	}
}

func TestTransactionDataSerializeErrors(t *testing.T) {
	tests := []struct {
		name string
		data *TransactionData
	}{
		{"no wire form", &TransactionData{Succeeded: true}},
		{"both wire forms", &TransactionData{
			Succeeded:   true,
			LegacyBytes: []byte{0x04},
			ModernBytes: []byte{0x01},
		}},
		{"failed legacy", &TransactionData{
			Succeeded:   false,
			LegacyBytes: []byte{0x04},
		}},
		{"legacy starting with the modern marker", &TransactionData{
			Succeeded:   true,
			LegacyBytes: []byte{0x00, 0x01},
		}},
		{"empty legacy", &TransactionData{
			Succeeded:   true,
			LegacyBytes: []byte{},
		}},
	}
	for _, test := range tests {
		_, err := serializeTransactionData(test.data)
		if err == nil {
			t.Fatalf("TestTransactionDataSerializeErrors: serializing %s "+
				"unexpectedly succeeded", test.name)
		}
	}
}

func TestTransactionDataDecodeErrors(t *testing.T) {
	_, err := deserializeTransactionData(nil)
	if !IsMalformedDataError(err) {
		t.Fatalf("TestTransactionDataDecodeErrors: an empty buffer should "+
			"be malformed, got: %v", err)
	}

	_, err = deserializeTransactionData([]byte{modernTxMarker})
	if !IsMalformedDataError(err) {
		t.Fatalf("TestTransactionDataDecodeErrors: truncated flags should "+
			"be malformed, got: %v", err)
	}

	// Flag bits this build does not know about must be rejected, not
	// silently dropped.
	_, err = deserializeTransactionData([]byte{modernTxMarker, 0x02, 0x00, 0x00, 0x00, 0x00})
	if !IsMalformedDataError(err) {
		t.Fatalf("TestTransactionDataDecodeErrors: unknown flag bits "+
			"should be malformed, got: %v", err)
	}

	// Payload shorter than its declared size.
	_, err = deserializeTransactionData([]byte{modernTxMarker, 0x00, 0x00, 0x00, 0x00, 0x05, 0xaa})
	if !IsMalformedDataError(err) {
		t.Fatalf("TestTransactionDataDecodeErrors: a short payload should "+
			"be malformed, got: %v", err)
	}
}

func TestTransactionDataLegacyCompatibility(t *testing.T) {
	// Raw legacy bytes written before the structured form existed must
	// decode as a succeeded legacy transaction.
	rawLegacy := []byte{0x0b, 0x52, 0x61, 0x77}
	gotData, err := deserializeTransactionData(rawLegacy)
	if err != nil {
		t.Fatalf("TestTransactionDataLegacyCompatibility: deserializeTransactionData "+
			"unexpectedly failed: %s", err)
	}
	expected := &TransactionData{Succeeded: true, LegacyBytes: rawLegacy}
	if !reflect.DeepEqual(gotData, expected) {
		t.Fatalf("TestTransactionDataLegacyCompatibility: got %s, expected %s",
			spew.Sdump(gotData), spew.Sdump(expected))
	}
}
