package message

// Vector3 is a 3-element vector, the building block for Twist and Pose.
type Vector3 struct {
	Header
	X, Y, Z float64
}

// Quaternion is a unit rotation in x,y,z,w order.
type Quaternion struct {
	X, Y, Z, W float64
}

// Twist is a linear/angular velocity pair, the most common control-loop
// message exchanged between a planner node and an actuator node.
type Twist struct {
	Header
	Linear  Vector3
	Angular Vector3
}

// Pose is a position and orientation in some named reference frame.
// The frame itself is out of scope for this message set (no string
// fields survive the fixed-layout constraint); callers that need a
// frame id carry it as a side channel or a NodeID convention.
type Pose struct {
	Header
	Position    Vector3
	Orientation Quaternion
}

// jointCount is the fixed number of joints a single JointState record
// can describe. A robot with more joints publishes multiple records.
const jointCount = 8

// jointNameLen is the fixed width of one joint name, including any
// necessary NUL padding.
const jointNameLen = 32

// JointState reports position, velocity, and effort for up to
// jointCount joints. Names, Position, Velocity, and Effort are parallel
// arrays: Names[i] names the joint described by Position[i],
// Velocity[i], and Effort[i].
type JointState struct {
	Header
	Names    [jointCount][jointNameLen]byte
	Position [jointCount]float64
	Velocity [jointCount]float64
	Effort   [jointCount]float64
}

// logRecordPayloadLen is the fixed width of a LogRecord's message
// bytes, matching the 240-byte truncation limit from spec §4.7/§6.
const logRecordPayloadLen = 240

// LogRecord is one entry in the shared observability log ring: a
// timestamp, severity level, originating node id, and a truncated
// UTF-8 message body.
type LogRecord struct {
	WallNanos uint64
	Level     uint8
	NodeID    uint32
	Len       uint16
	Bytes     [logRecordPayloadLen]byte
}

// NewLogRecord builds a LogRecord from a node id, level, and message,
// truncating msg to fit Bytes and recording the truncated length in Len.
func NewLogRecord(wallNanos uint64, level uint8, nodeID uint32, msg string) LogRecord {
	var rec LogRecord
	rec.WallNanos = wallNanos
	rec.Level = level
	rec.NodeID = nodeID
	n := copy(rec.Bytes[:], msg)
	rec.Len = uint16(n)
	return rec
}

// String returns the message text, decoded back from Bytes/Len.
func (r LogRecord) String() string {
	return string(r.Bytes[:r.Len])
}
