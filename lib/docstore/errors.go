// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage wraps every failure of the underlying database.
	ErrStorage = errors.New("document store failure")

	// ErrNotRecord is returned when a document is not a key/value
	// record (nil, a scalar, a slice).
	ErrNotRecord = errors.New("document is not a key/value record")

	// ErrNoMatch is returned by Update when no record matches.
	ErrNoMatch = errors.New("no document matches filter")

	// ErrDuplicateKey is returned when a write would store a second
	// record with an existing key.
	ErrDuplicateKey = errors.New("duplicate document key")
)

func storageError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, operation, err)
}
