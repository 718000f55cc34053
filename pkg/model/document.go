package model

// MaybeDocument is the latest known state of a document at a key: either a
// concrete document, a tombstone recording known absence, or an unknown
// state pending resolution. Exactly one variant exists per key at a time;
// the set of implementations is closed.
type MaybeDocument interface {
	Key() DocumentKey
	Version() SnapshotVersion

	maybeDocument()
}

// Document is a document that is known to exist, with its field data held
// as an opaque encoded blob owned by the surrounding serialization layer.
type Document struct {
	key                   DocumentKey
	version               SnapshotVersion
	fields                []byte
	hasCommittedMutations bool
}

// NewDocument builds an existing-document state. The fields blob is stored
// as given and never interpreted by this layer.
func NewDocument(key DocumentKey, version SnapshotVersion, fields []byte) *Document {
	return &Document{key: key, version: version, fields: fields}
}

// NewCommittedDocument builds a document whose local mutations are known to
// have been committed by the server but whose post-commit state has not yet
// been observed.
func NewCommittedDocument(key DocumentKey, version SnapshotVersion, fields []byte) *Document {
	return &Document{key: key, version: version, fields: fields, hasCommittedMutations: true}
}

func (d *Document) Key() DocumentKey         { return d.key }
func (d *Document) Version() SnapshotVersion { return d.version }

// Fields returns the opaque encoded field data.
func (d *Document) Fields() []byte { return d.fields }

// HasCommittedMutations reports whether the document reflects writes the
// server has acknowledged but not yet echoed back.
func (d *Document) HasCommittedMutations() bool { return d.hasCommittedMutations }

func (d *Document) maybeDocument() {}

// NoDocument is a tombstone: the document is known not to exist as of the
// given version. Distinct from having no record at all.
type NoDocument struct {
	key     DocumentKey
	version SnapshotVersion
}

// NewNoDocument builds a tombstone state.
func NewNoDocument(key DocumentKey, version SnapshotVersion) *NoDocument {
	return &NoDocument{key: key, version: version}
}

func (d *NoDocument) Key() DocumentKey         { return d.key }
func (d *NoDocument) Version() SnapshotVersion { return d.version }
func (d *NoDocument) maybeDocument()           {}

// UnknownDocument records that a document's existence is unresolved, for
// example after a write was acknowledged without a readback.
type UnknownDocument struct {
	key     DocumentKey
	version SnapshotVersion
}

// NewUnknownDocument builds an unknown-existence state.
func NewUnknownDocument(key DocumentKey, version SnapshotVersion) *UnknownDocument {
	return &UnknownDocument{key: key, version: version}
}

func (d *UnknownDocument) Key() DocumentKey         { return d.key }
func (d *UnknownDocument) Version() SnapshotVersion { return d.version }
func (d *UnknownDocument) maybeDocument()           {}
