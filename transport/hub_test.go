package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/horus-robotics/horus-sub003/transport"
)

func TestHubBroadcastsToAllSubscribers(t *testing.T) {
	reg := transport.NewRegistry()
	hub, err := transport.NewHub[int](reg, "test/hub/broadcast", 8)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}

	sub1, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	sub2, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	v := 42
	hub.Send(&v)

	for _, sub := range []*transport.HubSubscriber[int]{sub1, sub2} {
		got, err := sub.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got != 42 {
			t.Fatalf("Recv() = %d, want 42", got)
		}
	}
}

func TestHubLateSubscriberMissesPastMessages(t *testing.T) {
	reg := transport.NewRegistry()
	hub, err := transport.NewHub[int](reg, "test/hub/late", 8)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}

	v := 1
	hub.Send(&v)

	sub, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := sub.Recv(); !errors.Is(err, transport.ErrEmpty) {
		t.Fatalf("Recv() for late subscriber = %v, want ErrEmpty", err)
	}

	v = 2
	hub.Send(&v)
	got, err := sub.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got != 2 {
		t.Fatalf("Recv() = %d, want 2", got)
	}
}

// TestHubSlowSubscriberObservesLagged is the spec's S3 scenario:
// capacity 4, a subscriber at cursor 0, 10 sends (values 0..9). The
// true oldest surviving value is 10-4=6, so the subscriber must
// observe Lagged(6) and then recover every live value in order
// (6,7,8,9) — not just the newest one, and not an overcounted drop
// that silently skips 6 and 7.
func TestHubSlowSubscriberObservesLagged(t *testing.T) {
	reg := transport.NewRegistry()
	hub, err := transport.NewHub[int](reg, "test/hub/lagged", 4)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}

	sub, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	for i := 0; i < 10; i++ {
		v := i
		hub.Send(&v)
	}

	_, err = sub.Recv()
	var lagged transport.Lagged
	if !errors.As(err, &lagged) {
		t.Fatalf("Recv() = %v, want Lagged", err)
	}
	if lagged.N != 6 {
		t.Fatalf("Lagged.N = %d, want 6", lagged.N)
	}

	for i, want := range []int{6, 7, 8, 9} {
		got, err := sub.Recv()
		if err != nil {
			t.Fatalf("Recv(%d) after recovering from lag: %v", i, err)
		}
		if got != want {
			t.Fatalf("Recv(%d) after lag = %d, want %d", i, got, want)
		}
	}
}

func TestHubSubscriberLimitReached(t *testing.T) {
	reg := transport.NewRegistry()
	hub, err := transport.NewHub[int](reg, "test/hub/limit", 4, transport.WithCursorCapacity(2))
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}

	if _, err := hub.Subscribe(); err != nil {
		t.Fatalf("Subscribe 1: %v", err)
	}
	if _, err := hub.Subscribe(); err != nil {
		t.Fatalf("Subscribe 2: %v", err)
	}
	if _, err := hub.Subscribe(); !errors.Is(err, transport.ErrSubscriberLimitReached) {
		t.Fatalf("Subscribe 3 = %v, want ErrSubscriberLimitReached", err)
	}
}

func TestHubSubscriberRecvWaitUnblocksOnSend(t *testing.T) {
	reg := transport.NewRegistry()
	hub, err := transport.NewHub[int](reg, "test/hub/recvwait", 8)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	sub, err := hub.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(10 * time.Millisecond)
		v := 7
		hub.Send(&v)
	}()

	got, err := sub.RecvWait(ctx)
	if err != nil {
		t.Fatalf("RecvWait: %v", err)
	}
	if got != 7 {
		t.Fatalf("RecvWait() = %d, want 7", got)
	}
	<-done
}
