// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import "errors"

var (
	// ErrInvalidArgument is returned for malformed requests: an empty
	// key, or an edit that tries to rewrite the creation date.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when the article does not exist.
	ErrNotFound = errors.New("article not found")

	// ErrKeySpaceExhausted is returned when key generation gives up
	// after the configured number of collisions.
	ErrKeySpaceExhausted = errors.New("no free article key found")
)
