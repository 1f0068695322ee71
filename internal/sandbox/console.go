package sandbox

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Level tags one captured console call.
type Level string

const (
	LevelLog   Level = "LOG"
	LevelError Level = "ERROR"
	LevelWarn  Level = "WARN"
)

// LogEntry is one intercepted console call.
type LogEntry struct {
	Level   Level
	Message string
}

// ConsoleLog is the append-only output log accumulated during
// evaluation and rendering. Every entry is mirrored to the host's
// diagnostic channel.
type ConsoleLog struct {
	mu      sync.Mutex
	entries []LogEntry
	sink    io.Writer
}

// NewConsoleLog creates a log mirroring to sink. A nil sink disables
// mirroring.
func NewConsoleLog(sink io.Writer) *ConsoleLog {
	return &ConsoleLog{sink: sink}
}

// Append records one console call.
func (l *ConsoleLog) Append(level Level, message string) {
	l.mu.Lock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: message})
	l.mu.Unlock()
	if l.sink != nil {
		fmt.Fprintf(l.sink, "[sandbox:%s] %s\n", level, message)
	}
}

// Entries returns a copy of the accumulated log.
func (l *ConsoleLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the log; called on reset and at the start of each run.
func (l *ConsoleLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// consoleObject builds the intercepted console binding for vm.
func (l *ConsoleLog) consoleObject(vm *goja.Runtime) *goja.Object {
	obj := vm.NewObject()
	capture := func(level Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = formatArg(arg)
			}
			l.Append(level, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	_ = obj.Set("log", capture(LevelLog))
	_ = obj.Set("error", capture(LevelError))
	_ = obj.Set("warn", capture(LevelWarn))
	_ = obj.Set("info", capture(LevelLog))
	return obj
}

func formatArg(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	return v.String()
}
