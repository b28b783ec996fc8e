// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package dirlock takes advisory exclusive locks on directories.
//
// The article store holds the lock on its storage directory while it
// is open, and snapshot operations take the same lock before copying
// the directory. Copying a SQLite database while another process is
// writing it produces an unusable copy, so the two must never overlap.
//
// The lock is a flock(2) on a [FileName] file inside the directory.
// flock locks are released by the kernel when the process exits, so a
// crashed process never leaves a stale lock behind. The lock file
// itself stays in place and is skipped by snapshot copies.
package dirlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FileName is the name of the lock file created inside a locked
// directory.
const FileName = ".inkstand.lock"

// ErrLocked is returned by Acquire when another holder (in this or
// another process) already has the directory locked.
var ErrLocked = errors.New("directory is locked by another user of the store")

// Lock is a held directory lock. Release it exactly once.
type Lock struct {
	file *os.File
	path string
}

// Acquire creates directory if needed and takes an exclusive,
// non-blocking lock on it. Returns an error wrapping ErrLocked if the
// directory is already locked.
func Acquire(directory string) (*Lock, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", directory, err)
	}

	path := filepath.Join(directory, FileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", directory, ErrLocked)
		}
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}

	return &Lock{file: file, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock and closes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return fmt.Errorf("unlocking %s: %w", l.path, unlockErr)
	}
	return closeErr
}
