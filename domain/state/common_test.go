package state

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/qurulab/Waves/util/ids"
)

// prepareStateForTest prepares a state database for testing
// and returns a teardown function that must be deferred.
func prepareStateForTest(t *testing.T, testName string) (stateDB *DB, teardownFunc func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly "+
			"failed: %s", testName, err)
	}
	stateDB, err = Open(path)
	if err != nil {
		t.Fatalf("%s: Open unexpectedly "+
			"failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = stateDB.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly "+
				"failed: %s", testName, err)
		}
		err = os.RemoveAll(path)
		if err != nil {
			t.Fatalf("%s: RemoveAll unexpectedly "+
				"failed: %s", testName, err)
		}
	}
	return stateDB, teardownFunc
}

// testAddressID builds a deterministic address id out of the given seed.
func testAddressID(seed byte) AddressID {
	var addr AddressID
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

// testDigest builds a deterministic digest out of the given seed.
func testDigest(seed byte) ids.Digest {
	var digest ids.Digest
	for i := range digest {
		digest[i] = seed
	}
	return digest
}

// testSignature builds a deterministic signature out of the given seed.
func testSignature(seed byte) ids.Signature {
	var signature ids.Signature
	for i := range signature {
		signature[i] = seed
	}
	return signature
}
