package transport

import (
	"context"
	"errors"
	"sync"
	"unsafe"

	"code.hybscloud.com/spin"

	"github.com/horus-robotics/horus-sub003/ring"
)

// linkCore is the shared state behind one Link[T]'s producer and
// consumer handles: the ring buffer itself plus the single-producer /
// single-consumer role locks spec §4.2 requires.
type linkCore[T any] struct {
	buf  *ring.Buffer[T]
	name string
	reg  *Registry

	mu           sync.Mutex
	producerHeld bool
	consumerHeld bool
}

// LinkProducer is the exclusive producer handle for a Link[T].
type LinkProducer[T any] struct {
	core     *linkCore[T]
	overflow OverflowPolicy
}

// LinkConsumer is the exclusive consumer handle for a Link[T].
type LinkConsumer[T any] struct {
	core   *linkCore[T]
	cursor uint64
}

// OverflowPolicy selects what a Link producer does when the ring is
// full, per spec §4.2.
type OverflowPolicy uint8

const (
	// OverwriteOldest clobbers the oldest unread slot (default).
	OverwriteOldest OverflowPolicy = iota
	// DropNewest rejects the new message with ErrCapacityFull, leaving
	// the ring's contents untouched.
	DropNewest
)

// NewLink creates or opens the named Link[T] region in reg and returns
// its producer and consumer handles. Exactly one producer and one
// consumer may be attached at a time; a second call fails with
// ErrRoleTaken until both handles from the first call are Closed.
//
// capacity is rounded up to a power of two, matching ring.Buffer's
// contract.
func NewLink[T any](reg *Registry, name string, capacity int, overflow OverflowPolicy) (*LinkProducer[T], *LinkConsumer[T], error) {
	var zero T
	layout := Layout{
		MessageSize: uint32(unsafe.Sizeof(zero)),
		Capacity:    uint32(ring.RoundToPow2(capacity)),
		Mode:        ModeLink,
	}

	e, err := reg.lookupOrCreate(name, layout, func() any {
		return &linkCore[T]{buf: ring.New[T](capacity), name: name, reg: reg}
	})
	if err != nil {
		return nil, nil, err
	}
	core, ok := e.handle.(*linkCore[T])
	if !ok {
		return nil, nil, ErrLayoutMismatch
	}

	core.mu.Lock()
	defer core.mu.Unlock()
	if core.producerHeld || core.consumerHeld {
		return nil, nil, ErrRoleTaken
	}
	core.producerHeld = true
	core.consumerHeld = true

	return &LinkProducer[T]{core: core, overflow: overflow}, &LinkConsumer[T]{core: core}, nil
}

// Send publishes value. With OverwriteOldest it always succeeds; with
// DropNewest it returns ErrCapacityFull when the ring has no free slot.
func (p *LinkProducer[T]) Send(value *T) error {
	if p.overflow == DropNewest {
		if err := p.core.buf.TryPush(value); err != nil {
			return ErrCapacityFull
		}
		return nil
	}
	p.core.buf.Push(value)
	return nil
}

// Close releases the producer role. A future NewLink call for this
// topic succeeds once the consumer role has been released as well.
func (p *LinkProducer[T]) Close() error {
	p.core.mu.Lock()
	p.core.producerHeld = false
	p.core.mu.Unlock()
	p.core.reg.detach(p.core.name)
	return nil
}

// Recv returns the next unread message. It returns ErrEmpty when the
// producer has published nothing new, or a Lagged error when the
// producer has overwritten messages the consumer had not yet read.
func (c *LinkConsumer[T]) Recv() (T, error) {
	value, next, err := c.core.buf.TryPopAt(c.cursor)
	c.cursor = next
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, ring.ErrEmpty):
		return value, ErrEmpty
	default:
		lagged, _ := ring.IsLagged(err)
		return value, lagged
	}
}

// RecvWait blocks until a message is available, ctx is canceled, or the
// producer has lagged past this consumer's cursor. It spins with
// exponential backoff between polls rather than sleeping on a fixed
// interval, so a node waiting on its input topic sees a new message
// within microseconds instead of a whole scheduler tick period.
func (c *LinkConsumer[T]) RecvWait(ctx context.Context) (T, error) {
	sw := spin.Wait{}
	for {
		value, err := c.Recv()
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

// Close releases the consumer role.
func (c *LinkConsumer[T]) Close() error {
	c.core.mu.Lock()
	c.core.consumerHeld = false
	c.core.mu.Unlock()
	c.core.reg.detach(c.core.name)
	return nil
}
