package model

import "fmt"

// DocumentKey is a ResourcePath of even length: it always names a document,
// never a collection. It is the cache's primary identity.
type DocumentKey struct {
	path ResourcePath
}

// NewDocumentKey validates that path has even, non-zero length and wraps it
// as a key.
func NewDocumentKey(path ResourcePath) (DocumentKey, error) {
	if path.Length() == 0 || path.Length()%2 != 0 {
		return DocumentKey{}, fmt.Errorf("document key %q must have a positive even number of segments", path)
	}
	return DocumentKey{path: path}, nil
}

// KeyFromSegments is a convenience constructor for literal keys.
func KeyFromSegments(segments ...string) (DocumentKey, error) {
	return NewDocumentKey(NewResourcePath(segments...))
}

// ParseKey parses a slash-separated key string such as "rooms/abc".
func ParseKey(s string) (DocumentKey, error) {
	path, err := ParsePath(s)
	if err != nil {
		return DocumentKey{}, err
	}
	return NewDocumentKey(path)
}

// Path returns the underlying resource path.
func (k DocumentKey) Path() ResourcePath {
	return k.path
}

// CollectionPath returns the path of the collection containing the document.
func (k DocumentKey) CollectionPath() ResourcePath {
	return k.path.PopLast()
}

// DocumentID returns the final path segment.
func (k DocumentKey) DocumentID() string {
	return k.path.LastSegment()
}

// Compare orders keys by their path order, which matches the byte order of
// their encoded form.
func (k DocumentKey) Compare(other DocumentKey) int {
	return k.path.Compare(other.path)
}

// Equal reports whether both keys name the same document.
func (k DocumentKey) Equal(other DocumentKey) bool {
	return k.path.Equal(other.path)
}

// String returns the slash-separated form.
func (k DocumentKey) String() string {
	return k.path.String()
}
