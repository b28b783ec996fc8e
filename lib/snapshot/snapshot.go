// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkstand/inkstand/lib/clock"
	"github.com/inkstand/inkstand/lib/dirlock"
)

// ErrCorrupt is returned by Restore when the snapshot's files do not
// match its manifest.
var ErrCorrupt = errors.New("snapshot does not match its manifest")

// Config holds the parameters of a Manager.
type Config struct {
	// StoreDirectory is the live storage directory. Required.
	StoreDirectory string

	// Clock stamps manifests. Nil uses the real clock.
	Clock clock.Clock

	// Logger receives snapshot messages. Nil discards them.
	Logger *slog.Logger
}

// Manager runs snapshot operations against one storage directory.
type Manager struct {
	directory string
	clock     clock.Clock
	logger    *slog.Logger
}

// New returns a Manager for cfg.StoreDirectory.
func New(cfg Config) (*Manager, error) {
	if cfg.StoreDirectory == "" {
		return nil, errors.New("snapshot: StoreDirectory is required")
	}
	directory, err := filepath.Abs(cfg.StoreDirectory)
	if err != nil {
		return nil, fmt.Errorf("snapshot: resolving %s: %w", cfg.StoreDirectory, err)
	}

	manager := &Manager{
		directory: directory,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
	if manager.clock == nil {
		manager.clock = clock.Real()
	}
	if manager.logger == nil {
		manager.logger = slog.New(slog.DiscardHandler)
	}
	return manager, nil
}

// StoreDirectory returns the absolute path of the live directory.
func (m *Manager) StoreDirectory() string {
	return m.directory
}

// Backup creates target (and any missing parents), copies the whole
// storage directory into it, writes the manifest, and returns target.
// Existing files in target with the same names are overwritten.
func (m *Manager) Backup(ctx context.Context, target string) (string, error) {
	if target == "" {
		return "", errors.New("backup: target directory is required")
	}
	if err := m.requireStore(); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := m.rejectInside(target); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	lock, err := dirlock.Acquire(m.directory)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	defer lock.Release()

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("backup: creating %s: %w", target, err)
	}

	files, err := copyTree(ctx, m.directory, target)
	if err != nil {
		m.logger.Error("backup failed", "target", target, "error", err)
		return "", fmt.Errorf("backup to %s: %w", target, err)
	}
	manifest := newManifest(m.clock.Now(), files)
	if err := writeManifest(target, manifest); err != nil {
		return "", fmt.Errorf("backup to %s: %w", target, err)
	}

	m.logger.Info("backup written",
		"source", m.directory,
		"target", target,
		"files", len(files),
		"bytes", totalSize(files),
	)
	return target, nil
}

// Restore copies the snapshot in source over the live storage
// directory. When source has a manifest, every listed file is verified
// first and a missing or changed one fails with ErrCorrupt before
// anything is written; only listed files are copied, and other files
// in source are skipped with a warning. Without a manifest every file
// in source is copied.
// Files in the live directory that the snapshot lacks are left alone,
// except SQLite log files of databases the snapshot replaces.
func (m *Manager) Restore(ctx context.Context, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("restore: %s is not a directory", source)
	}

	// names is nil for a snapshot without a manifest: everything in
	// source is restored.
	var names []string
	manifest, report, err := verify(source)
	switch {
	case errors.Is(err, ErrNoManifest):
		m.logger.Warn("restoring snapshot without manifest, contents not verified", "source", source)
	case err != nil:
		return fmt.Errorf("restore: %w", err)
	case !report.Intact():
		m.logger.Error("snapshot failed verification",
			"source", source,
			"missing", report.Missing,
			"mismatched", report.Mismatched,
		)
		return fmt.Errorf("restore from %s: %w: %s", source, ErrCorrupt, report)
	default:
		if len(report.Extra) > 0 {
			m.logger.Warn("snapshot directory holds files outside its manifest, not restored",
				"source", source,
				"extra", report.Extra,
			)
		}
		names = manifest.Paths()
	}

	lock, err := dirlock.Acquire(m.directory)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	defer lock.Release()

	if names == nil {
		if names, err = listFiles(source); err != nil {
			return fmt.Errorf("restore from %s: %w", source, err)
		}
	}
	if err := removeStaleSidecars(names, m.directory); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	files, err := copyFiles(ctx, source, m.directory, names)
	if err != nil {
		m.logger.Error("restore failed, storage directory may be partially restored",
			"source", source,
			"error", err,
		)
		return fmt.Errorf("restore from %s: %w", source, err)
	}

	m.logger.Info("snapshot restored",
		"source", source,
		"target", m.directory,
		"files", len(files),
		"bytes", totalSize(files),
	)
	return nil
}

func (m *Manager) requireStore() error {
	info, err := os.Stat(m.directory)
	if err != nil {
		return fmt.Errorf("storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage directory %s is not a directory", m.directory)
	}
	return nil
}

// rejectInside refuses targets inside the storage directory, which
// would make a copy recurse into itself.
func (m *Manager) rejectInside(target string) error {
	absolute, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	relative, err := filepath.Rel(m.directory, absolute)
	if err != nil {
		return nil
	}
	if relative == "." || (relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator))) {
		return fmt.Errorf("target %s is inside the storage directory", target)
	}
	return nil
}

func totalSize(files map[string]FileEntry) int64 {
	var total int64
	for _, entry := range files {
		total += entry.Size
	}
	return total
}
