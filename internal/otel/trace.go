package otel

import (
	"fmt"
	"os"
	"sync/atomic"
)

// TraceEnvVar turns on per-message tracing when non-empty.
const TraceEnvVar = "MYSEARCH_TRACE"

var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv(TraceEnvVar) != "")
}

// TraceEnabled reports whether MYSEARCH_TRACE was set at startup.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled is a test hook.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}

// TraceMsg records the type of a message entering the UI loop. No-op unless
// tracing is enabled.
func (l *Logger) TraceMsg(comp string, msg any) {
	if l == nil || !TraceEnabled() {
		return
	}
	l.Emit(Event{Level: LevelDebug, Kind: KindMsgReceived, Comp: comp, Msg: fmt.Sprintf("%T", msg)})
}
