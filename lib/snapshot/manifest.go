// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/zeebo/blake3"

	"github.com/inkstand/inkstand/lib/codec"
	"github.com/inkstand/inkstand/lib/version"
)

// ManifestName is the file Backup writes at the top of a snapshot
// directory. It is never copied into the live store.
const ManifestName = "MANIFEST.inkstand"

const manifestVersion = 1

// newManifest stamps files with the current time and release.
func newManifest(created time.Time, files map[string]FileEntry) *Manifest {
	return &Manifest{Version: manifestVersion, Created: created, Files: files, Writer: "inkstand " + version.Short()}
}

// ErrNoManifest is returned by Verify for a directory without a
// manifest.
var ErrNoManifest = errors.New("snapshot has no manifest")

// Digest is a 32-byte keyed BLAKE3 hash of a file's contents.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// fileDomainKey separates snapshot digests from any other BLAKE3 use
// of the same bytes. ASCII "inkstand.snapshot.file", zero-padded.
var fileDomainKey = [32]byte{
	'i', 'n', 'k', 's', 't', 'a', 'n', 'd', '.', 's', 'n', 'a', 'p', 's', 'h', 'o',
	't', '.', 'f', 'i', 'l', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func newHasher() *blake3.Hasher {
	hasher, err := blake3.NewKeyed(fileDomainKey[:])
	if err != nil {
		panic("snapshot: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

// FileEntry describes one file in a snapshot.
type FileEntry struct {
	Size   int64  `cbor:"size"`
	Digest Digest `cbor:"digest"`
}

// Manifest lists every file in a snapshot by slash-separated path
// relative to the snapshot root.
type Manifest struct {
	Version int                  `cbor:"version"`
	Created time.Time            `cbor:"created"`
	Files   map[string]FileEntry `cbor:"files"`

	// Writer is the inkstand release that wrote the snapshot.
	Writer string `cbor:"writer,omitempty"`
}

// Paths returns the manifest's file paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for path := range m.Files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// ReadManifest loads the manifest of the snapshot in directory.
// Returns an error wrapping ErrNoManifest when there is none.
func ReadManifest(directory string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(directory, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", directory, ErrNoManifest)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var manifest Manifest
	if err := codec.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", directory, err)
	}
	if manifest.Version != manifestVersion {
		return nil, fmt.Errorf("manifest %s: unsupported version %d", directory, manifest.Version)
	}
	return &manifest, nil
}

func writeManifest(directory string, manifest *Manifest) error {
	data, err := codec.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(directory, ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// digestFile hashes the file at path.
func digestFile(path string) (FileEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return FileEntry{}, err
	}
	defer file.Close()

	hasher := newHasher()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return FileEntry{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	var entry FileEntry
	entry.Size = size
	hasher.Sum(entry.Digest[:0])
	return entry, nil
}

// Report is the result of Verify. Paths are slash-separated and
// sorted.
type Report struct {
	// Missing files are in the manifest but not on disk.
	Missing []string

	// Mismatched files exist but differ in size or digest.
	Mismatched []string

	// Extra files are on disk but not in the manifest.
	Extra []string
}

// OK reports whether the snapshot matches its manifest exactly.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Mismatched) == 0 && len(r.Extra) == 0
}

// Intact reports whether every file the manifest lists is present and
// unchanged. Extra files do not affect it.
func (r Report) Intact() bool {
	return len(r.Missing) == 0 && len(r.Mismatched) == 0
}

func (r Report) String() string {
	if r.OK() {
		return "snapshot intact"
	}
	return fmt.Sprintf("%d missing, %d mismatched, %d extra", len(r.Missing), len(r.Mismatched), len(r.Extra))
}

// Verify checks every file in the snapshot at directory against its
// manifest.
func Verify(directory string) (Report, error) {
	_, report, err := verify(directory)
	return report, err
}

// verify is Verify that also returns the manifest it checked against.
func verify(directory string) (*Manifest, Report, error) {
	manifest, err := ReadManifest(directory)
	if err != nil {
		return nil, Report{}, err
	}

	var report Report
	onDisk := make(map[string]bool)
	err = walkFiles(directory, func(name, path string) error {
		onDisk[name] = true
		want, listed := manifest.Files[name]
		if !listed {
			report.Extra = append(report.Extra, name)
			return nil
		}
		got, err := digestFile(path)
		if err != nil {
			return err
		}
		if got != want {
			report.Mismatched = append(report.Mismatched, name)
		}
		return nil
	})
	if err != nil {
		return nil, Report{}, fmt.Errorf("verifying %s: %w", directory, err)
	}

	for _, name := range manifest.Paths() {
		if !onDisk[name] {
			report.Missing = append(report.Missing, name)
		}
	}
	slices.Sort(report.Extra)
	slices.Sort(report.Mismatched)
	return manifest, report, nil
}
