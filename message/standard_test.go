package message_test

import (
	"testing"

	"github.com/horus-robotics/horus-sub003/message"
)

func TestNewLogRecordTruncatesToFit(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	rec := message.NewLogRecord(1, 2, 3, string(long))
	if int(rec.Len) != len(rec.Bytes) {
		t.Fatalf("Len = %d, want %d", rec.Len, len(rec.Bytes))
	}
	if len(rec.String()) != len(rec.Bytes) {
		t.Fatalf("String() len = %d, want %d", len(rec.String()), len(rec.Bytes))
	}
}

func TestNewLogRecordRoundTripsShortMessage(t *testing.T) {
	rec := message.NewLogRecord(42, 1, 7, "tick deadline missed")
	if rec.String() != "tick deadline missed" {
		t.Fatalf("String() = %q, want %q", rec.String(), "tick deadline missed")
	}
	if rec.NodeID != 7 || rec.Level != 1 || rec.WallNanos != 42 {
		t.Fatalf("fields not preserved: %+v", rec)
	}
}

// requireFixed compiles only when T satisfies message.Fixed.
func requireFixed[T message.Fixed]() {}

func TestFixedConstraintAcceptsStandardTypes(t *testing.T) {
	requireFixed[message.Vector3]()
	requireFixed[message.Twist]()
	requireFixed[message.Pose]()
	requireFixed[message.JointState]()
	requireFixed[message.LogRecord]()
}
