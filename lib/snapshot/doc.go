// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot backs up and restores the article storage directory
// as a whole.
//
// [Manager.Backup] copies every file of the storage directory into a
// target directory and writes a [Manifest] ([ManifestName]) recording
// each file's size and BLAKE3 digest. [Manager.Restore] verifies that
// manifest when present, then copies the files back over the live
// directory. [Manager.Archive] and [Manager.Unarchive] do the same
// through a single tar file, optionally compressed with lz4 or zstd
// and optionally encrypted with an age passphrase.
//
// Snapshots are whole-directory and non-incremental. Restore is not
// transactional: a failure partway leaves the files copied so far in
// place. Every operation takes the storage directory's lock
// (lib/dirlock) first, so none of them can run while a store has the
// directory open; they fail with dirlock.ErrLocked instead.
package snapshot
