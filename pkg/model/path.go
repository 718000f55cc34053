package model

import (
	"fmt"
	"strings"
)

// ResourcePath identifies a location in the hierarchical document namespace
// as an ordered sequence of segments, alternating collection and document
// IDs (e.g. "rooms/abc/messages/m1"). A ResourcePath is immutable; all
// derivation methods return a new value.
type ResourcePath struct {
	segments []string
}

// NewResourcePath builds a path from the given segments.
func NewResourcePath(segments ...string) ResourcePath {
	copied := make([]string, len(segments))
	copy(copied, segments)
	return ResourcePath{segments: copied}
}

// ParsePath parses a slash-separated path string such as "rooms/abc".
// Empty segments are rejected; an empty string yields the empty path.
func ParsePath(s string) (ResourcePath, error) {
	if s == "" {
		return ResourcePath{}, nil
	}
	segments := strings.Split(s, "/")
	for _, seg := range segments {
		if seg == "" {
			return ResourcePath{}, fmt.Errorf("path %q contains an empty segment", s)
		}
	}
	return ResourcePath{segments: segments}, nil
}

// Length returns the number of segments.
func (p ResourcePath) Length() int {
	return len(p.segments)
}

// IsEmpty reports whether the path has no segments.
func (p ResourcePath) IsEmpty() bool {
	return len(p.segments) == 0
}

// Segment returns the i-th segment.
func (p ResourcePath) Segment(i int) string {
	return p.segments[i]
}

// LastSegment returns the final segment. Panics on the empty path.
func (p ResourcePath) LastSegment() string {
	return p.segments[len(p.segments)-1]
}

// Segments returns a copy of the underlying segments.
func (p ResourcePath) Segments() []string {
	copied := make([]string, len(p.segments))
	copy(copied, p.segments)
	return copied
}

// Append returns a new path with the given segments added at the end.
func (p ResourcePath) Append(segments ...string) ResourcePath {
	combined := make([]string, 0, len(p.segments)+len(segments))
	combined = append(combined, p.segments...)
	combined = append(combined, segments...)
	return ResourcePath{segments: combined}
}

// PopLast returns the path without its final segment. Panics on the empty
// path.
func (p ResourcePath) PopLast() ResourcePath {
	if len(p.segments) == 0 {
		panic("model: PopLast on empty path")
	}
	return NewResourcePath(p.segments[:len(p.segments)-1]...)
}

// IsPrefixOf reports whether every segment of p matches the corresponding
// segment of other. The empty path is a prefix of every path.
func (p ResourcePath) IsPrefixOf(other ResourcePath) bool {
	if len(p.segments) > len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if seg != other.segments[i] {
			return false
		}
	}
	return true
}

// Compare orders paths segment-wise, shorter paths first on a tie. This is
// the same total order the encoded key form sorts under byte-wise.
func (p ResourcePath) Compare(other ResourcePath) int {
	n := len(p.segments)
	if len(other.segments) < n {
		n = len(other.segments)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(p.segments[i], other.segments[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.segments) < len(other.segments):
		return -1
	case len(p.segments) > len(other.segments):
		return 1
	default:
		return 0
	}
}

// Equal reports whether both paths have identical segments.
func (p ResourcePath) Equal(other ResourcePath) bool {
	return p.Compare(other) == 0
}

// String returns the slash-separated form.
func (p ResourcePath) String() string {
	return strings.Join(p.segments, "/")
}
