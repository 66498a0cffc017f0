// Package stats holds the process-wide connection and message counters.
package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	ConnectionsEstablished uint64
	ConnectionsClosed      uint64
	MessagesReceived       uint64
	EchoFailures           uint64
}

// String renders the snapshot on a single line, mostly for logs and test failures
func (s Snapshot) String() string {
	return fmt.Sprintf("established=%d closed=%d received=%d failed=%d",
		s.ConnectionsEstablished, s.ConnectionsClosed, s.MessagesReceived, s.EchoFailures)
}

// Aggregator counts connections and messages across every session.
//
// Increments are lock-free with respect to each other. The read lock only
// keeps them from racing Finalize, after which the counters are frozen.
type Aggregator struct {
	mu     sync.RWMutex
	sealed bool
	final  Snapshot

	established atomic.Uint64
	closed      atomic.Uint64
	received    atomic.Uint64
	failures    atomic.Uint64
}

// New returns an aggregator with all counters at zero
func New() *Aggregator {
	return &Aggregator{}
}

// add increments c unless the aggregator is sealed and returns the new value
func (a *Aggregator) add(c *atomic.Uint64) (uint64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.sealed {
		return c.Load(), false
	}
	return c.Add(1), true
}

// RecordConnectionEstablished counts a completed handshake and returns the running total.
func (a *Aggregator) RecordConnectionEstablished() uint64 {
	n, _ := a.add(&a.established)
	return n
}

// RecordConnectionClosed counts a session reaching its terminal state.
func (a *Aggregator) RecordConnectionClosed() {
	a.add(&a.closed)
}

// RecordMessageReceived counts an inbound data message.
func (a *Aggregator) RecordMessageReceived() {
	a.add(&a.received)
}

// RecordEchoFailure counts an echo whose write returned an error.
func (a *Aggregator) RecordEchoFailure() {
	a.add(&a.failures)
}

// Snapshot returns the current counter values. Before Finalize the values
// are read one at a time, so a snapshot taken under load may mix two
// instants; it never shows closed above established because closes are only
// recorded for sessions whose establishment was recorded first.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.sealed {
		return a.final
	}
	return a.load()
}

func (a *Aggregator) load() Snapshot {
	// closed before established, failures before received, so the
	// invariants hold for the copy as well
	closed := a.closed.Load()
	failures := a.failures.Load()
	return Snapshot{
		ConnectionsClosed:      closed,
		ConnectionsEstablished: a.established.Load(),
		EchoFailures:           failures,
		MessagesReceived:       a.received.Load(),
	}
}

// Finalize seals the aggregator and returns the final values. Increments
// after the first call are dropped; later calls return the same snapshot.
func (a *Aggregator) Finalize() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.sealed {
		a.final = a.load()
		a.sealed = true
	}
	return a.final
}

// Finalized reports whether Finalize has been called
func (a *Aggregator) Finalized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sealed
}
