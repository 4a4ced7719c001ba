package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/horus-robotics/horus-sub003/transport"
)

func TestLinkSendRecvFIFO(t *testing.T) {
	reg := transport.NewRegistry()
	prod, cons, err := transport.NewLink[int](reg, "test/link/fifo", 8, transport.OverwriteOldest)
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	defer prod.Close()
	defer cons.Close()

	for i := 0; i < 5; i++ {
		v := i
		if err := prod.Send(&v); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		got, err := cons.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got != i {
			t.Fatalf("Recv() = %d, want %d", got, i)
		}
	}
	if _, err := cons.Recv(); !errors.Is(err, transport.ErrEmpty) {
		t.Fatalf("Recv() on empty link = %v, want ErrEmpty", err)
	}
}

func TestLinkSecondProducerRejected(t *testing.T) {
	reg := transport.NewRegistry()
	prod, cons, err := transport.NewLink[int](reg, "test/link/role", 4, transport.OverwriteOldest)
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	defer prod.Close()
	defer cons.Close()

	if _, _, err := transport.NewLink[int](reg, "test/link/role", 4, transport.OverwriteOldest); !errors.Is(err, transport.ErrRoleTaken) {
		t.Fatalf("second NewLink = %v, want ErrRoleTaken", err)
	}
}

func TestLinkDropNewestRejectsWhenFull(t *testing.T) {
	reg := transport.NewRegistry()
	prod, cons, err := transport.NewLink[int](reg, "test/link/dropnewest", 2, transport.DropNewest)
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	defer prod.Close()
	defer cons.Close()

	for i := 0; i < 2; i++ {
		v := i
		if err := prod.Send(&v); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}
	v := 99
	if err := prod.Send(&v); !errors.Is(err, transport.ErrCapacityFull) {
		t.Fatalf("Send() on full DropNewest link = %v, want ErrCapacityFull", err)
	}
}

func TestLinkLayoutMismatchAcrossTypes(t *testing.T) {
	reg := transport.NewRegistry()
	prod, cons, err := transport.NewLink[int64](reg, "test/link/layout", 4, transport.OverwriteOldest)
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	defer prod.Close()
	defer cons.Close()

	if _, _, err := transport.NewLink[int32](reg, "test/link/layout", 4, transport.OverwriteOldest); !errors.Is(err, transport.ErrLayoutMismatch) {
		t.Fatalf("NewLink with mismatched T = %v, want ErrLayoutMismatch", err)
	}
}

func TestLinkRecvWaitUnblocksOnSend(t *testing.T) {
	reg := transport.NewRegistry()
	prod, cons, err := transport.NewLink[int](reg, "test/link/recvwait", 4, transport.OverwriteOldest)
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	defer prod.Close()
	defer cons.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		v := 42
		time.Sleep(10 * time.Millisecond)
		prod.Send(&v)
	}()

	got, err := cons.RecvWait(ctx)
	if err != nil {
		t.Fatalf("RecvWait: %v", err)
	}
	if got != 42 {
		t.Fatalf("RecvWait() = %d, want 42", got)
	}
	<-done
}

func TestLinkRecvWaitRespectsContextCancellation(t *testing.T) {
	reg := transport.NewRegistry()
	prod, cons, err := transport.NewLink[int](reg, "test/link/recvwait-cancel", 4, transport.OverwriteOldest)
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	defer prod.Close()
	defer cons.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := cons.RecvWait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RecvWait() = %v, want context.DeadlineExceeded", err)
	}
}
