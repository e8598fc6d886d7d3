package logger

import "testing"

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input      string
		expected   Level
		expectedOk bool
	}{
		{"trace", LevelTrace, true},
		{"TRC", LevelTrace, true},
		{"debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"Warn", LevelWarn, true},
		{"wrn", LevelWarn, true},
		{"error", LevelError, true},
		{"critical", LevelCritical, true},
		{"CRT", LevelCritical, true},
		{"off", LevelOff, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if ok != test.expectedOk {
			t.Fatalf("TestLevelFromString: unexpected ok for %q: want %t, got %t",
				test.input, test.expectedOk, ok)
		}
		if level != test.expected {
			t.Fatalf("TestLevelFromString: unexpected level for %q: want %s, got %s",
				test.input, test.expected, level)
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelTrace, "TRC"},
		{LevelDebug, "DBG"},
		{LevelInfo, "INF"},
		{LevelWarn, "WRN"},
		{LevelError, "ERR"},
		{LevelCritical, "CRT"},
		{LevelOff, "OFF"},
		{Level(255), "OFF"},
	}

	for _, test := range tests {
		if s := test.level.String(); s != test.expected {
			t.Fatalf("TestLevelString: unexpected tag for level %d: want %s, got %s",
				uint32(test.level), test.expected, s)
		}
	}
}
