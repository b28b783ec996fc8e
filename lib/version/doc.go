// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which inkstand build is running, for
// "inkstand version" and the writer stamp in snapshot manifests.
//
// Release builds stamp [Version], [GitCommit], [GitDirty], and
// [BuildTime] with -ldflags -X. Builds without the stamps fall back to
// the VCS information the go command records in the binary.
//
//	go build -ldflags "-X github.com/inkstand/inkstand/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/inkstand
package version
