package observability_test

import (
	"errors"
	"testing"

	"github.com/horus-robotics/horus-sub003/message"
	"github.com/horus-robotics/horus-sub003/observability"
	"github.com/horus-robotics/horus-sub003/transport"
)

func TestLogRingReaderObservesWrites(t *testing.T) {
	ring, err := observability.New("test/logring/basic", 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reader, err := ring.Attach()
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer reader.Close()

	rec := message.NewLogRecord(1, 0, 7, "hello")
	ring.Write(&rec)

	got, err := reader.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.String() != "hello" {
		t.Fatalf("Read().String() = %q, want %q", got.String(), "hello")
	}
}

func TestLogRingEmptyReadsErrEmpty(t *testing.T) {
	ring, err := observability.New("test/logring/empty", 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reader, err := ring.Attach()
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Read(); !errors.Is(err, transport.ErrEmpty) {
		t.Fatalf("Read() on empty ring = %v, want ErrEmpty", err)
	}
}

func TestDiscardRingDropsEverything(t *testing.T) {
	ring := observability.NewDiscard()
	reader, err := ring.Attach()
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer reader.Close()

	rec := message.NewLogRecord(1, 0, 1, "dropped")
	ring.Write(&rec)

	if _, err := reader.Read(); !errors.Is(err, transport.ErrEmpty) {
		t.Fatalf("Read() on discard ring = %v, want ErrEmpty", err)
	}
}
