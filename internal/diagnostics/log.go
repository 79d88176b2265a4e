package diagnostics

import (
	"fmt"
	"io"
	"time"
)

// Logger prints phase timings to an underlying writer when enabled,
// gated by the CLI's -v/--verbose flag rather than a build tag or
// environment variable — matching how the rest of the toolchain treats
// verbosity as a run-time choice, not a compile-time one.
type Logger struct {
	w       io.Writer
	enabled bool
}

// NewLogger returns a Logger that only writes when enabled is true.
func NewLogger(w io.Writer, enabled bool) *Logger {
	return &Logger{w: w, enabled: enabled}
}

// Phase logs how long a named pipeline stage (the CLI reports parse,
// include, resolve and eval) took, if verbose logging is enabled.
func (l *Logger) Phase(name string, d time.Duration) {
	if l == nil || !l.enabled {
		return
	}
	fmt.Fprintf(l.w, "tangram: %-8s %s\n", name, d.Round(time.Microsecond))
}

// Printf logs a free-form verbose message.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || !l.enabled {
		return
	}
	fmt.Fprintf(l.w, "tangram: "+format+"\n", args...)
}
