// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkstand/inkstand/lib/dirlock"
)

// sqliteSidecars are the suffixes SQLite appends to a database path
// for its write-ahead log and shared-memory index.
var sqliteSidecars = []string{"-wal", "-shm"}

// skipped reports whether a relative path is bookkeeping that never
// belongs to the data set: the lock file and the manifest.
func skipped(name string) bool {
	return name == dirlock.FileName || name == ManifestName
}

// walkFiles calls visit for every regular file under root except the
// lock file and manifest, with its slash-separated relative name and
// full path. Symlinks and other special files are ignored.
func walkFiles(root string, visit func(name, path string) error) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(relative)
		if skipped(name) {
			return nil
		}
		return visit(name, path)
	})
}

// copyTree copies every data file under source into target, creating
// directories as needed and overwriting existing files. The context is
// checked between files. It returns the manifest entries of the copied
// files, computed while copying.
func copyTree(ctx context.Context, source, target string) (map[string]FileEntry, error) {
	files := make(map[string]FileEntry)
	err := walkFiles(source, func(name, path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := copyFile(path, filepath.Join(target, filepath.FromSlash(name)))
		if err != nil {
			return err
		}
		files[name] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// copyFiles copies the named data files from source into target. The
// context is checked between files.
func copyFiles(ctx context.Context, source, target string, names []string) (map[string]FileEntry, error) {
	files := make(map[string]FileEntry, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.FromSlash(name)
		entry, err := copyFile(filepath.Join(source, path), filepath.Join(target, path))
		if err != nil {
			return nil, err
		}
		files[name] = entry
	}
	return files, nil
}

// copyFile copies source to target, preserving the permission bits,
// and returns the size and digest of what was written.
func copyFile(source, target string) (FileEntry, error) {
	in, err := os.Open(source)
	if err != nil {
		return FileEntry{}, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return FileEntry{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return FileEntry{}, err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return FileEntry{}, err
	}

	hasher := newHasher()
	size, err := io.Copy(io.MultiWriter(out, hasher), in)
	if err != nil {
		out.Close()
		return FileEntry{}, fmt.Errorf("copying %s: %w", source, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return FileEntry{}, fmt.Errorf("syncing %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return FileEntry{}, err
	}

	entry := FileEntry{Size: size}
	hasher.Sum(entry.Digest[:0])
	return entry, nil
}

// listFiles returns the data file names under root in walk order,
// which is lexical.
func listFiles(root string) ([]string, error) {
	var names []string
	err := walkFiles(root, func(name, _ string) error {
		names = append(names, name)
		return nil
	})
	return names, err
}

// removeStaleSidecars deletes WAL and shared-memory files in target
// that belong to a database among names but are not themselves among
// names. SQLite would otherwise replay the old log over the restored
// database.
func removeStaleSidecars(names []string, target string) error {
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}
	for _, name := range names {
		if !strings.HasSuffix(name, ".db") {
			continue
		}
		for _, suffix := range sqliteSidecars {
			if present[name+suffix] {
				continue
			}
			path := filepath.Join(target, filepath.FromSlash(name+suffix))
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing stale %s: %w", path, err)
			}
		}
	}
	return nil
}
