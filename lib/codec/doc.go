// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Inkstand's standard CBOR encoding configuration.
//
// Inkstand uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: CLI --json output, article export
//     files, and JSONC article definitions.
//   - CBOR for on-disk state: document bodies in the article store and
//     snapshot manifests.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which the document
// store relies on to compare filter values against stored fields
// ([Equal]) without caring whether a number arrived as int or uint64.
//
// Timestamps encode as RFC 3339 text with nanoseconds, so records
// decoded into a generic map keep sub-second ordering and decode back
// into time.Time losslessly.
//
// # Struct Tag Rules
//
//   - `cbor` tag: the type is only ever serialized as CBOR (snapshot
//     manifests).
//   - `json` tag: the type is serialized as both JSON and CBOR (article
//     records). fxamacker/cbor v2 reads `json` tags as fallback when
//     `cbor` tags are absent.
//
// Never use both tags on the same field.
package codec
