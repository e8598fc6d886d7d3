package state

import (
	"bytes"
	"testing"
)

func TestTagsAreUnique(t *testing.T) {
	seen := make(map[byte]bool)
	for _, tag := range allTags {
		if seen[tag] {
			t.Fatalf("TestTagsAreUnique: tag 0x%02x is declared twice", tag)
		}
		seen[tag] = true
	}
}

func TestTagsAreSequential(t *testing.T) {
	// The numbering is append-only starting from zero. A gap means a tag
	// value was retired and is at risk of being reused.
	for i, tag := range allTags {
		if tag != byte(i) {
			t.Fatalf("TestTagsAreSequential: tag at position %d "+
				"has value 0x%02x, expected 0x%02x", i, tag, byte(i))
		}
	}
}

func TestMakeKey(t *testing.T) {
	key := makeKey(tagScore, []byte{0x01, 0x02}, []byte{0x03})
	expected := []byte{tagScore, 0x01, 0x02, 0x03}
	if !bytes.Equal(key, expected) {
		t.Fatalf("TestMakeKey: got key %x, expected %x", key, expected)
	}
	if !bytes.Equal(makeKey(tagHeight), []byte{tagHeight}) {
		t.Fatalf("TestMakeKey: a key without suffix parts should be the bare tag")
	}
}

func TestMustTrimTag(t *testing.T) {
	key := makeKey(tagScore, []byte{0x01, 0x02})
	suffix := mustTrimTag(tagScore, key)
	if !bytes.Equal(suffix, []byte{0x01, 0x02}) {
		t.Fatalf("TestMustTrimTag: got suffix %x, expected 0102", suffix)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("TestMustTrimTag: trimming with the wrong tag " +
				"unexpectedly did not panic")
		}
	}()
	mustTrimTag(tagHeight, key)
}

func TestParseChangedDataKeysKey(t *testing.T) {
	addr := testAddressID(0x42)
	key := changedDataKeysKey(7, addr)
	parsed, err := parseChangedDataKeysKey(key)
	if err != nil {
		t.Fatalf("TestParseChangedDataKeysKey: parseChangedDataKeysKey "+
			"unexpectedly failed: %s", err)
	}
	if parsed != addr {
		t.Fatalf("TestParseChangedDataKeysKey: got address %x, expected %x",
			parsed, addr)
	}

	_, err = parseChangedDataKeysKey(key[:len(key)-1])
	if !IsMalformedDataError(err) {
		t.Fatalf("TestParseChangedDataKeysKey: a truncated key should "+
			"be malformed, got: %v", err)
	}
}

func TestParseFeatureVotesHistoryKey(t *testing.T) {
	key := featureVotesBucket.historyKey(featureVotesIdentity(15))
	featureID, err := parseFeatureVotesHistoryKey(key)
	if err != nil {
		t.Fatalf("TestParseFeatureVotesHistoryKey: parseFeatureVotesHistoryKey "+
			"unexpectedly failed: %s", err)
	}
	if featureID != 15 {
		t.Fatalf("TestParseFeatureVotesHistoryKey: got feature id %d, expected 15",
			featureID)
	}
}
