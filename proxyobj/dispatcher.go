package proxyobj

// Dispatcher is the narrow slice of proxystate.State that ObjectCore
// and Endpoint need: scheduling a flush and emitting a trace line. It
// is defined here, not in proxystate, so that proxyobj never imports
// proxystate — proxystate imports proxyobj (for Endpoint/Client), and
// Go forbids the reverse. State implements this interface; ObjectCore
// only ever sees it through Dispatcher.
type Dispatcher interface {
	// AddFlushable registers endpoint to be flushed before the next
	// blocking wait in the dispatch loop. Idempotent per tick.
	AddFlushable(endpoint *Endpoint)

	// TraceEnabled reports whether per-message wire tracing (spec.md
	// §6) is turned on, so callers can skip building a log line when
	// it would be discarded.
	TraceEnabled() bool

	// Trace emits one already-formatted per-message trace line.
	Trace(line string)

	// Warnf logs a recoverable protocol-level problem (spec.md §7's
	// "locally recovered" class).
	Warnf(format string, args ...any)
}
