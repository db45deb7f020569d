package log

import (
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// First line of runtime.Stack is "goroutine 123 [running]:".
	stackHeadSize   = 32
	goroutinePrefix = len("goroutine ")
	unknownID       = "unknown"
)

var (
	Logger    zerolog.Logger
	stackPool = sync.Pool{New: func() any { return new([stackHeadSize]byte) }}
)

// goroutineID reads the current goroutine id from the head of its stack trace.
// Concurrent fetches log from separate goroutines; the id ties their lines together.
func goroutineID() string {
	buf, ok := stackPool.Get().(*[stackHeadSize]byte)
	if !ok {
		return unknownID
	}
	defer stackPool.Put(buf)

	n := runtime.Stack(buf[:], false)
	end := goroutinePrefix
	for end < n && buf[end] >= '0' && buf[end] <= '9' {
		end++
	}
	if end == goroutinePrefix {
		return unknownID
	}
	return string(buf[goroutinePrefix:end])
}

var goroutineHook = zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("goid", goroutineID())
})

func init() {
	// Console writer for local runs; production switches to JSON via SetJSONOutput.
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	Logger = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger().
		Hook(goroutineHook)

	log.Logger = Logger
}

// Info logs an info message.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Error logs an error message.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Fatal logs a fatal message and exits.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// With returns a sub-logger tagged with the given component name.
func With(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// SetDebugMode switches the logger to debug level.
func SetDebugMode() {
	Logger = Logger.Level(zerolog.DebugLevel)
	log.Logger = Logger
}

// SetJSONOutput replaces the console writer with structured JSON written to w,
// keeping the current level.
func SetJSONOutput(w io.Writer) {
	level := Logger.GetLevel()
	Logger = zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger().
		Hook(goroutineHook)
	log.Logger = Logger
}
