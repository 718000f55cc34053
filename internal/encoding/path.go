// Package encoding implements the storage codecs for the remote document
// cache: the order-preserving flat encoding of resource paths used as
// primary keys, and the binary envelope for document records.
package encoding

import (
	"fmt"
	"strings"

	"github.com/liliang-cn/docmirror/pkg/model"
)

// Path keys must sort byte-wise in the same order the paths sort
// segment-wise, and no key may be a byte prefix of another unless one path
// is a literal segment prefix of the other. Each segment is therefore
// escaped and closed with a terminator that sorts below every possible
// segment byte:
//
//	0x00          -> 0x01 0x10
//	0x01 (escape) -> 0x01 0x11
//	end of segment-> 0x01 0x01
const (
	escapeByte       = 0x01
	encodedSeparator = 0x01
	encodedNul       = 0x10
	encodedEscape    = 0x11
)

// EncodePath converts a resource path to its flat, sortable key form.
func EncodePath(p model.ResourcePath) string {
	var b strings.Builder
	for i := 0; i < p.Length(); i++ {
		seg := p.Segment(i)
		for j := 0; j < len(seg); j++ {
			switch c := seg[j]; c {
			case 0x00:
				b.WriteByte(escapeByte)
				b.WriteByte(encodedNul)
			case escapeByte:
				b.WriteByte(escapeByte)
				b.WriteByte(encodedEscape)
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte(escapeByte)
		b.WriteByte(encodedSeparator)
	}
	return b.String()
}

// DecodePath is the exact inverse of EncodePath. A key that was not
// produced by EncodePath fails with an error; per the cache's error
// contract that failure is fatal to the surrounding operation.
func DecodePath(key string) (model.ResourcePath, error) {
	var segments []string
	var seg []byte
	for i := 0; i < len(key); {
		c := key[i]
		if c != escapeByte {
			seg = append(seg, c)
			i++
			continue
		}
		if i+1 >= len(key) {
			return model.ResourcePath{}, fmt.Errorf("path key %q ends with a dangling escape", key)
		}
		switch key[i+1] {
		case encodedSeparator:
			segments = append(segments, string(seg))
			seg = seg[:0]
		case encodedNul:
			seg = append(seg, 0x00)
		case encodedEscape:
			seg = append(seg, escapeByte)
		default:
			return model.ResourcePath{}, fmt.Errorf("path key %q contains unknown escape sequence 0x01 0x%02x", key, key[i+1])
		}
		i += 2
	}
	if len(seg) != 0 {
		return model.ResourcePath{}, fmt.Errorf("path key %q is missing a segment terminator", key)
	}
	return model.NewResourcePath(segments...), nil
}

// PrefixSuccessor returns the smallest key strictly greater than every key
// having prefix as a byte prefix, so that the half-open range
// [prefix, successor) captures exactly the keys sharing the prefix. When
// the prefix consists entirely of 0xFF bytes no such key exists and ok is
// false, meaning the range scan has no upper bound.
func PrefixSuccessor(prefix string) (successor string, ok bool) {
	i := len(prefix) - 1
	for ; i >= 0; i-- {
		if prefix[i] != 0xFF {
			break
		}
	}
	if i < 0 {
		return "", false
	}
	b := []byte(prefix[:i+1])
	b[i]++
	return string(b), true
}
