package ldb

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/qurulab/Waves/infrastructure/db/database"
)

func validateCurrentCursorKeyAndValue(t *testing.T, testName string, cursor database.Cursor,
	expectedKey []byte, expectedValue []byte) {

	cursorKey, err := cursor.Key()
	if err != nil {
		t.Fatalf("%s: Key "+
			"unexpectedly failed: %s", testName, err)
	}
	if !bytes.Equal(cursorKey, expectedKey) {
		t.Fatalf("%s: Key "+
			"returned wrong key. Want: %s, got: %s",
			testName, string(expectedKey), string(cursorKey))
	}
	cursorValue, err := cursor.Value()
	if err != nil {
		t.Fatalf("%s: Value "+
			"unexpectedly failed for key %s: %s",
			testName, string(cursorKey), err)
	}
	if !bytes.Equal(cursorValue, expectedValue) {
		t.Fatalf("%s: Value "+
			"returned wrong value for key %s. Want: %s, got: %s",
			testName, string(cursorKey), string(expectedValue), string(cursorValue))
	}
}

func recoverFromClosedCursorPanic(t *testing.T, testName string) {
	panicErr := recover()
	if panicErr == nil {
		t.Fatalf("%s: cursor unexpectedly "+
			"didn't panic after being closed", testName)
	}
	expectedPanicErr := "closed cursor"
	if !strings.Contains(fmt.Sprintf("%v", panicErr), expectedPanicErr) {
		t.Fatalf("%s: cursor panicked "+
			"with wrong message. Want: %v, got: %s",
			testName, expectedPanicErr, panicErr)
	}
}

// TestCursorSanity validates typical cursor usage, including
// opening a cursor over some existing data, seeking back
// and forth over that data, and getting some keys/values out
// of the cursor.
func TestCursorSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorSanity")
	defer teardownFunc()

	// Write some data to the database
	prefix := []byte{0x01}
	for i := 0; i < 10; i++ {
		key := append([]byte{}, prefix...)
		key = append(key, []byte(fmt.Sprintf("key%d", i))...)
		value := fmt.Sprintf("value%d", i)
		err := ldb.Put(key, []byte(value))
		if err != nil {
			t.Fatalf("TestCursorSanity: Put "+
				"unexpectedly failed: %s", err)
		}
	}

	// Open a new cursor
	cursor, err := ldb.Cursor(prefix)
	if err != nil {
		t.Fatalf("TestCursorSanity: Cursor "+
			"unexpectedly failed: %s", err)
	}
	defer func() {
		err := cursor.Close()
		if err != nil {
			t.Fatalf("TestCursorSanity: Close "+
				"unexpectedly failed: %s", err)
		}
	}()

	// Seek to first key and make sure its key and value are correct
	hasNext := cursor.Next()
	if !hasNext {
		t.Fatalf("TestCursorSanity: Next " +
			"unexpectedly returned non-existence")
	}
	expectedKey := append([]byte{}, prefix...)
	expectedKey = append(expectedKey, []byte("key0")...)
	expectedValue := []byte("value0")
	validateCurrentCursorKeyAndValue(t, "TestCursorSanity", cursor, expectedKey, expectedValue)

	// Seek to a non-existent key
	err = cursor.Seek([]byte{0x01, 'z'})
	if err == nil {
		t.Fatalf("TestCursorSanity: Seek " +
			"unexpectedly succeeded")
	}
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestCursorSanity: Seek "+
			"returned wrong error: %s", err)
	}

	// Seek to the last key
	lastKey := append([]byte{}, prefix...)
	lastKey = append(lastKey, []byte("key9")...)
	err = cursor.Seek(lastKey)
	if err != nil {
		t.Fatalf("TestCursorSanity: Seek "+
			"unexpectedly failed: %s", err)
	}
	validateCurrentCursorKeyAndValue(t, "TestCursorSanity", cursor, lastKey, []byte("value9"))
}

func TestCursorCloseErrors(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorCloseErrors")
	defer teardownFunc()

	// Open a new cursor
	cursor, err := ldb.Cursor([]byte{0x01})
	if err != nil {
		t.Fatalf("TestCursorCloseErrors: Cursor "+
			"unexpectedly failed: %s", err)
	}

	// Close the cursor
	err = cursor.Close()
	if err != nil {
		t.Fatalf("TestCursorCloseErrors: Close "+
			"unexpectedly failed: %s", err)
	}

	tests := []struct {
		name     string
		function func() error
	}{
		{
			name: "Seek",
			function: func() error {
				return cursor.Seek([]byte{})
			},
		},
		{
			name: "Key",
			function: func() error {
				_, err := cursor.Key()
				return err
			},
		},
		{
			name: "Value",
			function: func() error {
				_, err := cursor.Value()
				return err
			},
		},
		{
			name: "Close",
			function: func() error {
				return cursor.Close()
			},
		},
	}

	for _, test := range tests {
		expectedErrContainsString := "closed cursor"

		// Make sure that the test function returns a "closed cursor" error
		err = test.function()
		if err == nil {
			t.Fatalf("TestCursorCloseErrors: %s "+
				"unexpectedly succeeded", test.name)
		}
		if !strings.Contains(err.Error(), expectedErrContainsString) {
			t.Fatalf("TestCursorCloseErrors: %s "+
				"returned wrong error. Want: %s, got: %s",
				test.name, expectedErrContainsString, err)
		}
	}

	// Make sure that Next panics on a closed cursor
	func() {
		defer recoverFromClosedCursorPanic(t, "TestCursorCloseErrors")
		cursor.Next()
	}()
}

func TestCursorPrefixIsolation(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorPrefixIsolation")
	defer teardownFunc()

	// Write keys under two different prefixes
	prefixA := []byte{0x0a}
	prefixB := []byte{0x0b}
	for i := byte(0); i < 5; i++ {
		err := ldb.Put(append([]byte{}, prefixA[0], i), []byte{i})
		if err != nil {
			t.Fatalf("TestCursorPrefixIsolation: Put "+
				"unexpectedly failed: %s", err)
		}
		err = ldb.Put(append([]byte{}, prefixB[0], i), []byte{i})
		if err != nil {
			t.Fatalf("TestCursorPrefixIsolation: Put "+
				"unexpectedly failed: %s", err)
		}
	}

	// Iterate over prefix A and make sure only A-prefixed keys
	// come out, in ascending order
	cursor, err := ldb.Cursor(prefixA)
	if err != nil {
		t.Fatalf("TestCursorPrefixIsolation: Cursor "+
			"unexpectedly failed: %s", err)
	}
	defer func() {
		err := cursor.Close()
		if err != nil {
			t.Fatalf("TestCursorPrefixIsolation: Close "+
				"unexpectedly failed: %s", err)
		}
	}()

	previousKey := []byte(nil)
	count := 0
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("TestCursorPrefixIsolation: Key "+
				"unexpectedly failed: %s", err)
		}
		if !bytes.HasPrefix(key, prefixA) {
			t.Fatalf("TestCursorPrefixIsolation: cursor "+
				"returned key %x outside of prefix %x", key, prefixA)
		}
		if previousKey != nil && bytes.Compare(previousKey, key) >= 0 {
			t.Fatalf("TestCursorPrefixIsolation: cursor "+
				"returned keys out of order: %x before %x", previousKey, key)
		}
		previousKey = append([]byte{}, key...)
		count++
	}
	if count != 5 {
		t.Fatalf("TestCursorPrefixIsolation: cursor returned "+
			"wrong amount of keys. Want: %d, got: %d", 5, count)
	}
}
