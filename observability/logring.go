// Package observability implements the HORUS shared observability log
// ring (spec §4.7): a fixed-size circular buffer of message.LogRecord
// values that writers never block on and that any number of readers
// (dashboards) attach to read-only, plus the Prometheus metrics
// registration the scheduler uses to expose tick/deadline-miss
// counters.
package observability

import (
	"github.com/horus-robotics/horus-sub003/message"
	"github.com/horus-robotics/horus-sub003/transport"
)

// LogRing is a fixed-capacity shared circular buffer of LogRecord
// values. Readers are non-destructive and independent — exactly the
// broadcast semantics transport.Hub already implements — so a LogRing
// is a thin specialization of Hub[message.LogRecord] rather than a new
// algorithm: every attached reader observes every record, at its own
// pace, and a reader that falls behind sees ring.Lagged instead of
// silently missing entries.
type LogRing struct {
	hub     *transport.Hub[message.LogRecord]
	discard bool
}

// New creates a LogRing with the given capacity (rounded up to a
// power of two), backed by its own private registry under topic name.
func New(name string, capacity int) (*LogRing, error) {
	hub, err := transport.NewHub[message.LogRecord](transport.NewRegistry(), name, capacity)
	if err != nil {
		return nil, err
	}
	return &LogRing{hub: hub}, nil
}

// NewDiscard creates a LogRing that drops every record it is given,
// for nodes that register without wanting observability (spec §9's
// "null-sink record"). A discard ring has no readers.
func NewDiscard() *LogRing {
	l, err := New("discard", 2)
	if err != nil {
		// capacity 2 against a fresh private registry cannot fail.
		panic(err)
	}
	l.discard = true
	return l
}

// Write appends rec. A LogRing never blocks and never reports
// back-pressure to the caller: Hub.Send always succeeds, overwriting
// the oldest record if every reader is still behind.
func (l *LogRing) Write(rec *message.LogRecord) {
	if l.discard {
		return
	}
	l.hub.Send(rec)
}

// Reader is a read-only attachment to a LogRing, holding its own
// cursor; any number of readers may attach to the same ring.
type Reader struct {
	sub *transport.HubSubscriber[message.LogRecord]
}

// Attach returns a new Reader positioned at the ring's current tail
// (it observes only records written after Attach returns). Attaching
// to a discard ring returns a Reader that always observes ErrEmpty.
func (l *LogRing) Attach() (*Reader, error) {
	if l.discard {
		return &Reader{}, nil
	}
	sub, err := l.hub.Subscribe()
	if err != nil {
		return nil, err
	}
	return &Reader{sub: sub}, nil
}

// Read returns the next unread record, transport.ErrEmpty if nothing
// new has been written, or a transport.Lagged if the writer has
// overwritten records this reader had not yet reached.
func (r *Reader) Read() (message.LogRecord, error) {
	if r.sub == nil {
		return message.LogRecord{}, transport.ErrEmpty
	}
	return r.sub.Recv()
}

// Close releases the reader's cursor slot.
func (r *Reader) Close() {
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
}
