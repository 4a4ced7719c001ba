package transport

import (
	"context"
	"errors"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/horus-robotics/horus-sub003/ring"
)

// defaultCursorCapacity is the default size of a Hub's subscriber
// cursor table (spec §4.3).
const defaultCursorCapacity = 16

// Hub is the broadcast (multi-producer, multi-subscriber) engine from
// spec §4.3. Every subscriber reads every published message exactly
// once, at its own pace, via an independent cursor; a slow subscriber
// falls behind and eventually observes Lagged rather than blocking a
// publisher.
//
// Hub is built directly on ring.Buffer's slot primitives
// (ClaimProducerSlot, WriteSlot, ReadSlotSequence, ReadSlotPayload,
// LoadProducerPos) instead of keeping its own slot array: the only
// thing a Hub adds on top of Buffer is a table of independent
// subscriber cursors, since Buffer itself tracks only one producer
// cursor and one logical consumer cursor.
type Hub[T any] struct {
	buf *ring.Buffer[T]

	name string
	reg  *Registry

	cursorMu  []atomix.Bool
	cursorPos []atomix.Uint64
}

// HubSubscriber is one subscriber's private read cursor into a Hub.
type HubSubscriber[T any] struct {
	hub   *Hub[T]
	index int
}

// HubOption configures NewHub.
type HubOption func(*hubOptions)

type hubOptions struct {
	cursorCapacity int
}

// WithCursorCapacity sets the maximum number of concurrent subscribers
// a Hub will admit. Default defaultCursorCapacity.
func WithCursorCapacity(n int) HubOption {
	return func(o *hubOptions) { o.cursorCapacity = n }
}

// NewHub creates or opens the named Hub[T] region in reg.
func NewHub[T any](reg *Registry, name string, capacity int, opts ...HubOption) (*Hub[T], error) {
	o := hubOptions{cursorCapacity: defaultCursorCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	buf := ring.New[T](capacity)
	layout := Layout{
		MessageSize: uint32(unsafe.Sizeof(zero)),
		Capacity:    uint32(buf.Cap()),
		Mode:        ModeHub,
	}

	e, err := reg.lookupOrCreate(name, layout, func() any {
		return &Hub[T]{
			buf:       buf,
			name:      name,
			reg:       reg,
			cursorMu:  make([]atomix.Bool, o.cursorCapacity),
			cursorPos: make([]atomix.Uint64, o.cursorCapacity),
		}
	})
	if err != nil {
		return nil, err
	}
	h, ok := e.handle.(*Hub[T])
	if !ok {
		return nil, ErrLayoutMismatch
	}
	return h, nil
}

// Send publishes value to every current and future subscriber. Send
// never blocks: if the ring is full it overwrites the oldest slot, and
// subscribers still reading that slot observe Lagged on their next Recv.
// Claim-then-publish: ClaimProducerSlot's FAA lets multiple producers
// call Send concurrently, matching Buffer's own multi-producer claim
// discipline; WriteSlot then publishes by advancing the slot's
// sequence number.
func (h *Hub[T]) Send(value *T) {
	pos := h.buf.ClaimProducerSlot()
	h.buf.WriteSlot(pos, value)
}

// Subscribe allocates a cursor starting at the current publish
// position (a new subscriber only observes messages sent after it
// subscribes) and returns a HubSubscriber. Returns
// ErrSubscriberLimitReached when the cursor table is full.
func (h *Hub[T]) Subscribe() (*HubSubscriber[T], error) {
	start := h.buf.LoadProducerPos()
	for i := range h.cursorMu {
		if h.cursorMu[i].CompareAndSwapAcqRel(false, true) {
			h.cursorPos[i].StoreRelease(start)
			return &HubSubscriber[T]{hub: h, index: i}, nil
		}
	}
	return nil, ErrSubscriberLimitReached
}

// RecvWait blocks until this subscriber has a message to observe, ctx
// is canceled, or the publisher has lagged past its cursor. It spins
// with exponential backoff between polls (the same idiom Link uses),
// rather than waking on a fixed-interval timer.
func (s *HubSubscriber[T]) RecvWait(ctx context.Context) (T, error) {
	sw := spin.Wait{}
	for {
		value, err := s.Recv()
		if !errors.Is(err, ErrEmpty) {
			return value, err
		}
		select {
		case <-ctx.Done():
			return value, ctx.Err()
		default:
		}
		sw.Once()
	}
}

// Unsubscribe frees s's cursor slot so a future Subscribe call can
// reuse it.
func (s *HubSubscriber[T]) Unsubscribe() {
	s.hub.cursorMu[s.index].StoreRelease(false)
}

// Recv returns the next message this subscriber has not yet observed.
// Returns ErrEmpty when the publisher has sent nothing new, or Lagged
// when the publisher overwrote slots before this subscriber reached
// them.
func (s *HubSubscriber[T]) Recv() (T, error) {
	h := s.hub
	cursor := h.cursorPos[s.index].LoadAcquire()
	seq := h.buf.ReadSlotSequence(cursor)

	var value T
	switch {
	case seq == cursor+1:
		value = h.buf.ReadSlotPayload(cursor)
		h.cursorPos[s.index].StoreRelease(cursor + 1)
		return value, nil
	case seq > cursor+1:
		// Resync to the true oldest position still resident in the
		// ring (producer position minus capacity), not to seq-1 — the
		// cursor's own slot was not necessarily the oldest surviving
		// message once the cursor has fallen behind by more than one
		// lap, and resyncing to the wrong position both misreports the
		// drop count and skips live, never-overwritten data.
		var oldest uint64
		if producerPos, capacity := h.buf.LoadProducerPos(), uint64(h.buf.Cap()); producerPos > capacity {
			oldest = producerPos - capacity
		}
		lag := ring.Lagged{N: int(oldest - cursor)}
		h.cursorPos[s.index].StoreRelease(oldest)
		return value, lag
	default:
		return value, ErrEmpty
	}
}
