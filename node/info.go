package node

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"

	"github.com/horus-robotics/horus-sub003/message"
	"github.com/horus-robotics/horus-sub003/observability"
)

// Info is the observation/control record ("ctx") handed to a node's
// Init/Tick/Shutdown by reference, for the duration of the call only —
// it must not be retained past the call that received it. It is always
// a valid, non-nil pointer: a node that registers without a log ring
// still gets one backed by a discard sink (see NewDiscard).
//
// Counters are atomix fields rather than plain integers because Info is
// written by the scheduler's single tick goroutine but may be read
// concurrently by a metrics-scrape or dashboard goroutine.
type Info struct {
	Name string
	ID   uint32

	Ticks          atomix.Uint64
	LastDurationNs atomix.Int64
	MinDurationNs  atomix.Int64
	MaxDurationNs  atomix.Int64
	meanDurationNs atomix.Int64

	DeadlineMisses atomix.Uint64
	Faults         atomix.Uint64
	Canceled       atomix.Bool

	// ExpectedDeadline is set by the scheduler before each Tick call:
	// the wall-clock time by which the node should have returned.
	ExpectedDeadline time.Time

	log *observability.LogRing

	topicMu sync.Mutex
	sent    map[string]uint64
	recv    map[string]uint64
}

// New creates an Info backed by the given log ring.
func New(name string, id uint32, log *observability.LogRing) *Info {
	return &Info{
		Name: name,
		ID:   id,
		log:  log,
		sent: make(map[string]uint64),
		recv: make(map[string]uint64),
	}
}

// NewDiscard creates an Info whose log ring discards every record
// (spec §9's "null-sink record"), for nodes registered without logging.
func NewDiscard(name string, id uint32) *Info {
	return New(name, id, observability.NewDiscard())
}

// RecordTick updates the rolling duration statistics after one Tick
// call. Called only by the scheduler's tick loop (single writer).
func (i *Info) RecordTick(d time.Duration) {
	ns := d.Nanoseconds()
	n := i.Ticks.AddAcqRel(1)

	i.LastDurationNs.StoreRelease(ns)
	if n == 1 {
		i.MinDurationNs.StoreRelease(ns)
		i.MaxDurationNs.StoreRelease(ns)
		i.meanDurationNs.StoreRelease(ns)
		return
	}
	if min := i.MinDurationNs.LoadRelaxed(); ns < min {
		i.MinDurationNs.StoreRelease(ns)
	}
	if max := i.MaxDurationNs.LoadRelaxed(); ns > max {
		i.MaxDurationNs.StoreRelease(ns)
	}
	mean := i.meanDurationNs.LoadRelaxed()
	mean += (ns - mean) / int64(n)
	i.meanDurationNs.StoreRelease(mean)
}

// MeanDuration returns the rolling mean tick duration.
func (i *Info) MeanDuration() time.Duration {
	return time.Duration(i.meanDurationNs.LoadAcquire())
}

// RecordSend increments the send counter for topic. Call from node
// code right after a successful Hub.Send/LinkProducer.Send.
func (i *Info) RecordSend(topic string) {
	i.topicMu.Lock()
	i.sent[topic]++
	i.topicMu.Unlock()
}

// RecordRecv increments the receive counter for topic.
func (i *Info) RecordRecv(topic string) {
	i.topicMu.Lock()
	i.recv[topic]++
	i.topicMu.Unlock()
}

// TopicCounters returns a snapshot of the send/recv counters by topic.
func (i *Info) TopicCounters() (sent, recv map[string]uint64) {
	i.topicMu.Lock()
	defer i.topicMu.Unlock()
	sent = make(map[string]uint64, len(i.sent))
	for k, v := range i.sent {
		sent[k] = v
	}
	recv = make(map[string]uint64, len(i.recv))
	for k, v := range i.recv {
		recv[k] = v
	}
	return sent, recv
}

// Canceling reports whether the owning scheduler has asked every node
// to wind down. A Tick should return promptly once this is true.
func (i *Info) Canceling() bool { return i.Canceled.LoadAcquire() }

const (
	levelDebug uint8 = iota
	levelInfo
	levelWarn
	levelError
)

func (i *Info) log_(level uint8, msg string) {
	rec := message.NewLogRecord(uint64(time.Now().UnixNano()), level, i.ID, msg)
	i.log.Write(&rec)
}

// Debug writes a debug-level record to the node's log ring.
func (i *Info) Debug(msg string) { i.log_(levelDebug, msg) }

// LogInfo writes an info-level record to the node's log ring.
func (i *Info) LogInfo(msg string) { i.log_(levelInfo, msg) }

// Warn writes a warn-level record to the node's log ring.
func (i *Info) Warn(msg string) { i.log_(levelWarn, msg) }

// Error writes an error-level record to the node's log ring.
func (i *Info) Error(msg string) { i.log_(levelError, msg) }

// LogRing exposes the underlying ring for dashboards/readers.
func (i *Info) LogRing() *observability.LogRing { return i.log }
