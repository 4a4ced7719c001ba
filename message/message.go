// Package message defines the fixed-layout POD (plain old data) record
// types carried over the HORUS transport. Every type here uses arrays,
// never slices, and only primitive numeric fields, so that a value's
// in-memory layout is reproducible bit-for-bit across language
// front-ends (spec §3, §6).
package message

// Fixed is satisfied by every message type this package defines. It is
// the comparable constraint, usable only as a type-parameter constraint;
// any comparable type satisfies it, not just the records in this
// package. transport.Link[T]/transport.Hub[T] take T any and do not use
// Fixed, so it places no restriction on what they are instantiated with.
type Fixed interface {
	comparable
}

// Header is the sequence-number and timestamp pair embedded at the
// front of Vector3, Twist, Pose, and JointState. Quaternion and
// LogRecord do not carry one.
type Header struct {
	SeqNo      uint64
	StampNanos int64
}
