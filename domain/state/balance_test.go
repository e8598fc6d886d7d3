package state

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/qurulab/Waves/infrastructure/db/database"
)

func TestWavesBalance(t *testing.T) {
	stateDB, teardownFunc := prepareStateForTest(t, "TestWavesBalance")
	defer teardownFunc()

	addr := testAddressID(0x01)

	err := stateDB.View(func(accessor database.DataAccessor) error {
		profile, err := WavesBalance(accessor, addr)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(profile, &BalanceProfile{}) {
			t.Fatalf("TestWavesBalance: an account that never held WAVES "+
				"should have a zero profile, got: %s", spew.Sdump(profile))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TestWavesBalance: View unexpectedly failed: %s", err)
	}

	profileAt5 := &BalanceProfile{Balance: 100, LeaseIn: 30, LeaseOut: -7}
	profileAt9 := &BalanceProfile{Balance: 250, LeaseIn: 0, LeaseOut: 0}
	err = stateDB.Update(func(rw database.DataWriter) error {
		return PutWavesBalance(rw, addr, 5, profileAt5)
	})
	if err != nil {
		t.Fatalf("TestWavesBalance: Update unexpectedly failed: %s", err)
	}
	err = stateDB.Update(func(rw database.DataWriter) error {
		return PutWavesBalance(rw, addr, 9, profileAt9)
	})
	if err != nil {
		t.Fatalf("TestWavesBalance: Update unexpectedly failed: %s", err)
	}

	err = stateDB.View(func(accessor database.DataAccessor) error {
		profile, err := WavesBalance(accessor, addr)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(profile, profileAt9) {
			t.Fatalf("TestWavesBalance: got current profile %s, expected %s",
				spew.Sdump(profile), spew.Sdump(profileAt9))
		}
		profile, err = WavesBalanceAt(accessor, addr, 7)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(profile, profileAt5) {
			t.Fatalf("TestWavesBalance: got profile at height 7 %s, "+
				"expected %s", spew.Sdump(profile), spew.Sdump(profileAt5))
		}
		profile, err = WavesBalanceAt(accessor, addr, 4)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(profile, &BalanceProfile{}) {
			t.Fatalf("TestWavesBalance: the profile before the first "+
				"record should be zero, got: %s", spew.Sdump(profile))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TestWavesBalance: View unexpectedly failed: %s", err)
	}
}

func TestAssetBalance(t *testing.T) {
	stateDB, teardownFunc := prepareStateForTest(t, "TestAssetBalance")
	defer teardownFunc()

	addr := testAddressID(0x02)
	assetID := testDigest(0x03)
	otherAssetID := testDigest(0x04)

	err := stateDB.Update(func(rw database.DataWriter) error {
		return PutAssetBalance(rw, addr, assetID, 3, 1000)
	})
	if err != nil {
		t.Fatalf("TestAssetBalance: Update unexpectedly failed: %s", err)
	}
	err = stateDB.Update(func(rw database.DataWriter) error {
		return PutAssetBalance(rw, addr, assetID, 8, 1500)
	})
	if err != nil {
		t.Fatalf("TestAssetBalance: Update unexpectedly failed: %s", err)
	}

	err = stateDB.View(func(accessor database.DataAccessor) error {
		balance, err := AssetBalance(accessor, addr, assetID)
		if err != nil {
			return err
		}
		if balance != 1500 {
			t.Fatalf("TestAssetBalance: got balance %d, expected 1500", balance)
		}
		balance, err = AssetBalanceAt(accessor, addr, assetID, 5)
		if err != nil {
			return err
		}
		if balance != 1000 {
			t.Fatalf("TestAssetBalance: got balance %d at height 5, "+
				"expected 1000", balance)
		}
		// A different asset of the same account is a separate identity.
		balance, err = AssetBalance(accessor, addr, otherAssetID)
		if err != nil {
			return err
		}
		if balance != 0 {
			t.Fatalf("TestAssetBalance: an asset the account never held "+
				"should have balance 0, got %d", balance)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TestAssetBalance: View unexpectedly failed: %s", err)
	}
}

func TestBalanceProfileDecodeErrors(t *testing.T) {
	profile := &BalanceProfile{Balance: 1, LeaseIn: -2, LeaseOut: 3}
	profileBytes := serializeBalanceProfile(profile)
	if len(profileBytes) != 24 {
		t.Fatalf("TestBalanceProfileDecodeErrors: got encoding of %d bytes, "+
			"expected 24", len(profileBytes))
	}
	gotProfile, err := deserializeBalanceProfile(profileBytes)
	if err != nil {
		t.Fatalf("TestBalanceProfileDecodeErrors: deserializeBalanceProfile "+
			"unexpectedly failed: %s", err)
	}
	if !reflect.DeepEqual(gotProfile, profile) {
		t.Fatalf("TestBalanceProfileDecodeErrors: profile changed across "+
			"serialization. Want: %s, got: %s", spew.Sdump(profile), spew.Sdump(gotProfile))
	}

	_, err = deserializeBalanceProfile(profileBytes[:23])
	if !IsMalformedDataError(err) {
		t.Fatalf("TestBalanceProfileDecodeErrors: a truncated profile "+
			"should be malformed, got: %v", err)
	}
	_, err = deserializeBalanceProfile(append(append([]byte{}, profileBytes...), 0x00))
	if !IsMalformedDataError(err) {
		t.Fatalf("TestBalanceProfileDecodeErrors: an oversized profile "+
			"should be malformed, got: %v", err)
	}
}
