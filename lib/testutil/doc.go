// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Inkstand packages.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need
// distinguishable titles or file names.
//
// [WriteTree] and [ReadTree] build and capture small directory trees
// as path-to-content maps, so snapshot tests can compare a restored
// directory against the original in one assertion.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Inkstand-internal dependencies.
package testutil
