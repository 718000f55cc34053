package model

// Filter is an in-process predicate over a document's state. It never sees
// the storage encoding.
type Filter func(*Document) bool

// Query selects documents directly inside one collection, optionally
// narrowed by predicate filters. Query values are immutable; Where returns
// an extended copy.
type Query struct {
	path    ResourcePath
	filters []Filter
}

// NewQuery builds a query over the collection at path.
func NewQuery(path ResourcePath) Query {
	return Query{path: path}
}

// Path returns the collection path being queried.
func (q Query) Path() ResourcePath {
	return q.path
}

// Where returns a copy of the query with an additional filter.
func (q Query) Where(f Filter) Query {
	filters := make([]Filter, 0, len(q.filters)+1)
	filters = append(filters, q.filters...)
	filters = append(filters, f)
	return Query{path: q.path, filters: filters}
}

// Matches reports whether doc is an immediate child of the queried
// collection and satisfies every filter.
func (q Query) Matches(doc *Document) bool {
	docPath := doc.Key().Path()
	if docPath.Length() != q.path.Length()+1 {
		return false
	}
	if !q.path.IsPrefixOf(docPath) {
		return false
	}
	for _, f := range q.filters {
		if !f(doc) {
			return false
		}
	}
	return true
}
