package ldb

import (
	"io/ioutil"
	"os"
	"testing"
)

// prepareDatabaseForTest prepares a database for testing
// and returns a teardown function that must be deferred.
func prepareDatabaseForTest(t *testing.T, testName string) (ldb *LevelDB, teardownFunc func()) {
	// Create a temp db to run tests against
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly "+
			"failed: %s", testName, err)
	}
	ldb, err = NewLevelDB(path)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly "+
			"failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = ldb.Close()
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
	return ldb, teardownFunc
}
