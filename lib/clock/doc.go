// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Code that stamps records (article creation and edit dates, snapshot
// manifests) accepts a Clock instead of calling time.Now directly. In
// production, Real() provides the standard library behavior. In tests,
// Fake() provides a deterministic clock that moves only when told to.
//
// # Wiring Pattern
//
//	service, err := article.NewService(article.Config{
//	    Store: store,
//	    Clock: clock.Real(),
//	})
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.SetStep(time.Second) // every Now() call moves time forward
package clock
