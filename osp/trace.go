package osp

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

/* trace.go : level-gated trace logging, in the same style as the wider
 * receiver library's Trace()/Tracet()/TraceOpen()/TraceLevel() machinery. */

var (
	traceMu    sync.Mutex
	traceOut   io.Writer = os.Stderr
	traceLevel int       = 0
	traceStart           = time.Now()
)

// SetTraceOutput redirects trace output. Passing nil disables tracing.
func SetTraceOutput(w io.Writer) {
	traceMu.Lock()
	defer traceMu.Unlock()
	if w == nil {
		traceOut = io.Discard
		return
	}
	traceOut = w
}

// SetTraceLevel sets the minimum level that will be emitted. 0 disables
// tracing entirely.
func SetTraceLevel(level int) {
	traceMu.Lock()
	defer traceMu.Unlock()
	traceLevel = level
}

// Tracef writes a trace line if level is within the configured trace level.
func Tracef(level int, format string, args ...interface{}) {
	traceMu.Lock()
	defer traceMu.Unlock()
	if level > traceLevel || traceOut == nil {
		return
	}
	elapsed := time.Since(traceStart).Seconds()
	fmt.Fprintf(traceOut, "%d %9.3f: ", level, elapsed)
	fmt.Fprintf(traceOut, format, args...)
	fmt.Fprintln(traceOut)
}
