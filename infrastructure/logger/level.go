package logger

import "strings"

// Level is a verbosity threshold. A subsystem logger drops every entry whose
// level is below its own, and a backend writer drops every entry below the
// writer's level, so the two act as a chained filter.
type Level uint32

// Levels, from the most verbose to fully silent. The ordering is load-bearing
// for the threshold comparisons.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// Each level is rendered in log entries as a three-letter tag. levelTags is
// indexed by the Level constants.
var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

var levelsByName = map[string]Level{
	"trace":    LevelTrace,
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"warn":     LevelWarn,
	"error":    LevelError,
	"critical": LevelCritical,
	"off":      LevelOff,
}

// LevelFromString parses a level from its name or its three-letter tag,
// case-insensitively. Unrecognized input returns LevelInfo and ok=false so a
// caller can fall back to the default verbosity.
func LevelFromString(s string) (l Level, ok bool) {
	name := strings.ToLower(s)
	if level, ok := levelsByName[name]; ok {
		return level, true
	}
	for i, tag := range levelTags {
		if name == strings.ToLower(tag) {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

// String returns the level's three-letter tag.
func (l Level) String() string {
	if int(l) >= len(levelTags) {
		return "OFF"
	}
	return levelTags[l]
}
