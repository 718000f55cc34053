package encoding

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/liliang-cn/docmirror/pkg/model"
)

// ErrCorrupt reports that a stored record could not be decoded. Records are
// only ever written by this codec, so a decode failure is an integrity
// defect, never a transient condition.
var ErrCorrupt = errors.New("corrupt document record")

const recordVersion = 1

// Variant tags stored in the record envelope.
const (
	tagDocument uint8 = iota + 1
	tagNoDocument
	tagUnknownDocument
)

// recordEnvelope is the on-disk form of a MaybeDocument. Integer keys keep
// the encoding compact and stable across field renames.
type recordEnvelope struct {
	Ver       uint8  `cbor:"1,keyasint"`
	Tag       uint8  `cbor:"2,keyasint"`
	Path      string `cbor:"3,keyasint"`
	Seconds   int64  `cbor:"4,keyasint"`
	Nanos     int32  `cbor:"5,keyasint"`
	Fields    []byte `cbor:"6,keyasint,omitempty"`
	Committed bool   `cbor:"7,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	// Deterministic encoding: identical document states produce identical
	// blobs.
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		panic(err)
	}
	encMode, decMode = em, dm
}

// EncodeMaybeDocument serializes any document state to its storage blob.
func EncodeMaybeDocument(doc model.MaybeDocument) ([]byte, error) {
	env := recordEnvelope{
		Ver:     recordVersion,
		Path:    EncodePath(doc.Key().Path()),
		Seconds: doc.Version().Seconds,
		Nanos:   doc.Version().Nanos,
	}
	switch d := doc.(type) {
	case *model.Document:
		env.Tag = tagDocument
		env.Fields = d.Fields()
		env.Committed = d.HasCommittedMutations()
	case *model.NoDocument:
		env.Tag = tagNoDocument
	case *model.UnknownDocument:
		env.Tag = tagUnknownDocument
	default:
		return nil, fmt.Errorf("unsupported document variant %T", doc)
	}
	return encMode.Marshal(env)
}

// DecodeMaybeDocument parses a storage blob back into a document state.
// Any malformed input fails with ErrCorrupt.
func DecodeMaybeDocument(b []byte) (model.MaybeDocument, error) {
	var env recordEnvelope
	if err := decMode.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.Ver != recordVersion {
		return nil, fmt.Errorf("%w: unsupported record version %d", ErrCorrupt, env.Ver)
	}
	path, err := DecodePath(env.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	key, err := model.NewDocumentKey(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	version := model.SnapshotVersion{Seconds: env.Seconds, Nanos: env.Nanos}

	switch env.Tag {
	case tagDocument:
		if env.Committed {
			return model.NewCommittedDocument(key, version, env.Fields), nil
		}
		return model.NewDocument(key, version, env.Fields), nil
	case tagNoDocument:
		return model.NewNoDocument(key, version), nil
	case tagUnknownDocument:
		return model.NewUnknownDocument(key, version), nil
	default:
		return nil, fmt.Errorf("%w: unknown variant tag %d", ErrCorrupt, env.Tag)
	}
}
