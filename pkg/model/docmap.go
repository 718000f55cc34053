package model

import "sort"

// DocumentMap is an immutable mapping from DocumentKey to Document whose
// iteration order is the keys' total order. It is built once, after all
// filtering has completed; it never exposes partially-built state.
type DocumentMap struct {
	keys []DocumentKey
	docs map[string]*Document
}

// BuildDocumentMap constructs a DocumentMap from the given documents. When
// the same key appears more than once the last document wins.
func BuildDocumentMap(docs ...*Document) *DocumentMap {
	m := &DocumentMap{docs: make(map[string]*Document, len(docs))}
	for _, doc := range docs {
		id := doc.Key().String()
		if _, seen := m.docs[id]; !seen {
			m.keys = append(m.keys, doc.Key())
		}
		m.docs[id] = doc
	}
	sort.Slice(m.keys, func(i, j int) bool {
		return m.keys[i].Compare(m.keys[j]) < 0
	})
	return m
}

// Len returns the number of entries.
func (m *DocumentMap) Len() int {
	return len(m.keys)
}

// Get returns the document stored under key, if any.
func (m *DocumentMap) Get(key DocumentKey) (*Document, bool) {
	doc, ok := m.docs[key.String()]
	return doc, ok
}

// Keys returns the keys in sorted order.
func (m *DocumentMap) Keys() []DocumentKey {
	copied := make([]DocumentKey, len(m.keys))
	copy(copied, m.keys)
	return copied
}

// Documents returns the documents in key order.
func (m *DocumentMap) Documents() []*Document {
	docs := make([]*Document, 0, len(m.keys))
	for _, key := range m.keys {
		docs = append(docs, m.docs[key.String()])
	}
	return docs
}
