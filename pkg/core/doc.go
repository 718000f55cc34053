// Package core implements the remote document cache: a durable, local
// mirror of server-authoritative document states stored in SQLite.
//
// Documents are keyed by an order-preserving flat encoding of their
// hierarchical resource path, which lets a single contiguous range scan
// answer "all documents directly under collection C". Batched point lookups
// are chunked below SQLite's host parameter ceiling while still returning
// one globally key-sorted result.
//
// The store performs no retries, holds no state beyond the database handle,
// and spawns no concurrent work; atomicity across operations comes from the
// caller's transaction scope (see RunInTransaction).
package core
