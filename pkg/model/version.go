package model

import "time"

// SnapshotVersion is the server-assigned version a document state was last
// known at. The zero value means the version is unknown.
type SnapshotVersion struct {
	Seconds int64
	Nanos   int32
}

// VersionFromTime converts a wall-clock time to a snapshot version.
func VersionFromTime(t time.Time) SnapshotVersion {
	return SnapshotVersion{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Compare orders versions chronologically.
func (v SnapshotVersion) Compare(other SnapshotVersion) int {
	switch {
	case v.Seconds < other.Seconds:
		return -1
	case v.Seconds > other.Seconds:
		return 1
	case v.Nanos < other.Nanos:
		return -1
	case v.Nanos > other.Nanos:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the version is unknown.
func (v SnapshotVersion) IsZero() bool {
	return v.Seconds == 0 && v.Nanos == 0
}

// Time returns the version as a wall-clock time.
func (v SnapshotVersion) Time() time.Time {
	return time.Unix(v.Seconds, int64(v.Nanos)).UTC()
}
