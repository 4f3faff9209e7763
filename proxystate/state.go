// Package proxystate holds the process-wide state that ties together
// every Endpoint this proxy instance owns: the upstream connection,
// the set of downstream clients, the active version Baseline, and the
// registry filter these clients see the world through.
package proxystate

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gogpu/wlproxy/internal/errlog"
	"github.com/gogpu/wlproxy/proxyobj"
)

// State is the single value passed to every constructor in this
// process — explicit configuration rather than a package-level
// global, so initialization is ordinary Go code at startup and
// teardown simply drops the value (spec.md §9's "explicit State"
// redesign note).
type State struct {
	Upstream *proxyobj.Endpoint

	clients map[uint64]*proxyobj.Client

	Baseline Baseline
	Mapper   *Mapper

	flushQueue []*proxyobj.Endpoint
	flushSet   map[uint64]bool

	destroyed bool

	log   zerolog.Logger
	trace bool
}

// New creates a fresh, empty State. Callers attach the upstream
// Endpoint once the compositor dial succeeds, and add clients as they
// connect.
func New(baseline Baseline, mapper *Mapper, log zerolog.Logger, traceWire bool) *State {
	return &State{
		clients:  make(map[uint64]*proxyobj.Client),
		Baseline: baseline,
		Mapper:   mapper,
		flushSet: make(map[uint64]bool),
		log:      log,
		trace:    traceWire,
	}
}

// AddClient registers a newly accepted downstream connection.
func (s *State) AddClient(c *proxyobj.Client) {
	s.clients[c.Endpoint.ID] = c
}

// RemoveClient drops a downstream connection's bookkeeping once its
// Endpoint has been closed. Any objects it still owned are the
// caller's responsibility to have already released.
func (s *State) RemoveClient(c *proxyobj.Client) {
	delete(s.clients, c.Endpoint.ID)
	delete(s.flushSet, c.Endpoint.ID)
}

// Clients returns the current set of downstream clients, for the
// dispatch loop to enumerate its epoll set.
func (s *State) Clients() []*proxyobj.Client {
	out := make([]*proxyobj.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

// AddFlushable implements proxyobj.Dispatcher: it registers endpoint
// to be flushed before the dispatch loop's next blocking wait,
// deduplicating within a tick by Endpoint.ID.
func (s *State) AddFlushable(endpoint *proxyobj.Endpoint) {
	if s.flushSet[endpoint.ID] {
		return
	}
	s.flushSet[endpoint.ID] = true
	s.flushQueue = append(s.flushQueue, endpoint)
}

// DrainFlushable hands the dispatch loop the endpoints queued this
// tick and resets the queue for the next one.
func (s *State) DrainFlushable() []*proxyobj.Endpoint {
	out := s.flushQueue
	s.flushQueue = nil
	s.flushSet = make(map[uint64]bool)
	return out
}

// TraceEnabled implements proxyobj.Dispatcher.
func (s *State) TraceEnabled() bool { return s.trace }

// Trace implements proxyobj.Dispatcher, emitting one pre-formatted
// per-message line at debug level.
func (s *State) Trace(line string) {
	s.log.Debug().Msg(line)
}

// Warnf implements proxyobj.Dispatcher, logging a recoverable
// protocol-level condition (spec.md §7's "locally recovered" class).
func (s *State) Warnf(format string, args ...any) {
	s.log.Warn().Msg(fmt.Sprintf(format, args...))
}

// Destroy marks the process-wide state as torn down. Idempotent.
func (s *State) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	if s.Upstream != nil {
		_ = s.Upstream.Close()
	}
	for _, c := range s.clients {
		_ = c.Endpoint.Close()
	}
}

// Destroyed reports whether Destroy has already run.
func (s *State) Destroyed() bool {
	return s.destroyed
}

// Fatal wraps errlog's fatal-error envelope around err and logs it,
// for the small number of call sites (the dispatch loop's upstream
// hangup, upstream wire error, and upstream event dispatch failure)
// where the proxy cannot continue at all.
func (s *State) Fatal(err error) error {
	wrapped := errlog.Wrap(err)
	s.log.Error().Err(wrapped).Msg("fatal")
	return wrapped
}

var _ proxyobj.Dispatcher = (*State)(nil)
