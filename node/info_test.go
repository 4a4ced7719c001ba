package node_test

import (
	"testing"
	"time"

	"github.com/horus-robotics/horus-sub003/node"
)

func TestDiscardInfoNeverBlocksLogging(t *testing.T) {
	info := node.NewDiscard("worker", 1)
	info.LogInfo("started")
	info.Warn("slow tick")
	info.Error("boom")
	info.Debug("detail")
	// Discard ring drops everything; nothing to assert beyond "did not panic".
}

func TestTopicCountersTrackSendRecv(t *testing.T) {
	info := node.NewDiscard("worker", 1)
	info.RecordSend("cmd_vel")
	info.RecordSend("cmd_vel")
	info.RecordRecv("odom")

	sent, recv := info.TopicCounters()
	if sent["cmd_vel"] != 2 {
		t.Fatalf("sent[cmd_vel] = %d, want 2", sent["cmd_vel"])
	}
	if recv["odom"] != 1 {
		t.Fatalf("recv[odom] = %d, want 1", recv["odom"])
	}
}

func TestCancelingReflectsFlag(t *testing.T) {
	info := node.NewDiscard("worker", 1)
	if info.Canceling() {
		t.Fatalf("Canceling() = true before cancel set")
	}
	info.Canceled.StoreRelease(true)
	if !info.Canceling() {
		t.Fatalf("Canceling() = false after cancel set")
	}
}

func TestExpectedDeadlineIsSettable(t *testing.T) {
	info := node.NewDiscard("worker", 1)
	deadline := time.Now().Add(time.Millisecond)
	info.ExpectedDeadline = deadline
	if !info.ExpectedDeadline.Equal(deadline) {
		t.Fatalf("ExpectedDeadline not preserved")
	}
}
