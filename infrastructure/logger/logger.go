package logger

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Logger writes log entries for a single subsystem.
type Logger struct {
	lvl Level // atomic
	tag string
	b   *Backend
}

// Trace formats message using the default formats for its operands and writes
// to log with LevelTrace.
func (l *Logger) Trace(args ...interface{}) { l.print(LevelTrace, args...) }

// Tracef formats message according to format specifier and writes to
// log with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) { l.printf(LevelTrace, format, args...) }

// Debug formats message using the default formats for its operands and writes
// to log with LevelDebug.
func (l *Logger) Debug(args ...interface{}) { l.print(LevelDebug, args...) }

// Debugf formats message according to format specifier and writes to
// log with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) { l.printf(LevelDebug, format, args...) }

// Info formats message using the default formats for its operands and writes
// to log with LevelInfo.
func (l *Logger) Info(args ...interface{}) { l.print(LevelInfo, args...) }

// Infof formats message according to format specifier and writes to
// log with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) { l.printf(LevelInfo, format, args...) }

// Warn formats message using the default formats for its operands and writes
// to log with LevelWarn.
func (l *Logger) Warn(args ...interface{}) { l.print(LevelWarn, args...) }

// Warnf formats message according to format specifier and writes to
// log with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) { l.printf(LevelWarn, format, args...) }

// Error formats message using the default formats for its operands and writes
// to log with LevelError.
func (l *Logger) Error(args ...interface{}) { l.print(LevelError, args...) }

// Errorf formats message according to format specifier and writes to
// log with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) { l.printf(LevelError, format, args...) }

// Critical formats message using the default formats for its operands and
// writes to log with LevelCritical.
func (l *Logger) Critical(args ...interface{}) { l.print(LevelCritical, args...) }

// Criticalf formats message according to format specifier and writes to
// log with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.printf(LevelCritical, format, args...)
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32((*uint32)(&l.lvl)))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32((*uint32)(&l.lvl), uint32(level))
}

func (l *Logger) print(level Level, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.b.write(level, l.formatEntry(level, fmt.Sprint(args...)))
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.b.write(level, l.formatEntry(level, fmt.Sprintf(format, args...)))
}

func (l *Logger) formatEntry(level Level, message string) []byte {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return []byte(fmt.Sprintf("%s [%s] %s: %s\n", timestamp, level, l.tag, message))
}

var (
	backend = NewBackend()

	subsystemsMtx sync.Mutex
	subsystems    = make(map[string]*Logger)
)

// RegisterSubSystem returns a logger for the given subsystem tag, creating it
// on the package-level backend if it wasn't registered before. Calling it
// twice with the same tag returns the same logger.
func RegisterSubSystem(subsystemTag string) *Logger {
	subsystemsMtx.Lock()
	defer subsystemsMtx.Unlock()
	if log, ok := subsystems[subsystemTag]; ok {
		return log
	}
	log := backend.Logger(subsystemTag)
	subsystems[subsystemTag] = log
	return log
}

// InitLog attaches log file and error log file to the package-level backend.
func InitLog(logFile, errLogFile string) error {
	if logFile != "" {
		err := backend.AddLogFile(logFile, LevelTrace)
		if err != nil {
			return fmt.Errorf("error adding log file %s as log rotator: %s", logFile, err)
		}
	}
	if errLogFile != "" {
		err := backend.AddLogFile(errLogFile, LevelWarn)
		if err != nil {
			return fmt.Errorf("error adding log file %s as log rotator: %s", errLogFile, err)
		}
	}
	return nil
}

// SetLogLevels sets the logging level of all registered subsystems to the
// given level.
func SetLogLevels(level Level) {
	subsystemsMtx.Lock()
	defer subsystemsMtx.Unlock()
	for _, log := range subsystems {
		log.SetLevel(level)
	}
}
