// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package docstore is a small schemaless document collection stored in
// a directory.
//
// A collection holds JSON-like records ([Record], a map of field name
// to value) and supports four operations: [Store.Insert], [Store.Find],
// [Store.Update] (whole-record replacement), and [Store.Remove]. Finds
// take a [Filter] of top-level field equalities; a filter value also
// matches an array field that contains it, so {"tags": "go"} finds
// every record tagged "go".
//
// Records are persisted in one SQLite database per collection
// (<directory>/<collection>.db) through lib/sqlitepool. Each row holds
// the record's deterministic CBOR encoding (lib/codec) plus copies of
// the "key" and "type" fields in indexed columns. The "key" column is
// unique: inserting a second record with the same key fails with
// [ErrDuplicateKey].
//
// The store holds a lib/dirlock lock on its directory while open, so
// snapshot tooling cannot copy the directory mid-write.
//
// # Errors
//
//   - [ErrNotRecord]: the document does not encode to a key/value map.
//     The caller passed the wrong thing; the store logs and rejects it.
//   - [ErrStorage]: SQLite or filesystem failure. Wrapped with the
//     operation name and the underlying error.
//   - [ErrNoMatch]: Update found nothing to replace.
//   - [ErrDuplicateKey]: a write would give two records the same key.
package docstore
