// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"github.com/inkstand/inkstand/lib/codec"
	"github.com/inkstand/inkstand/lib/dirlock"
)

// Archive file layout:
//
//	magic "INKSTAND" | version (1 byte) | compression (1 byte) | flags (1 byte)
//	payload: tar stream, compressed, then age-encrypted when flagEncrypted
//
// The header stays in clear text so Unarchive knows what to undo
// before it has a passphrase.
var archiveMagic = [8]byte{'I', 'N', 'K', 'S', 'T', 'A', 'N', 'D'}

const (
	archiveVersion = 1
	headerSize     = len(archiveMagic) + 3

	flagEncrypted = 1 << 0
)

var (
	// ErrNotArchive is returned by Unarchive and InspectArchive for
	// files without an archive header.
	ErrNotArchive = errors.New("not an inkstand archive")

	// ErrPassphraseRequired is returned by Unarchive for an encrypted
	// archive when no passphrase is given.
	ErrPassphraseRequired = errors.New("archive is encrypted; a passphrase is required")

	// ErrDecrypt is returned by Unarchive when the passphrase does not
	// open an encrypted archive.
	ErrDecrypt = errors.New("archive cannot be decrypted with this passphrase")
)

// ArchiveOptions configures Archive.
type ArchiveOptions struct {
	Compression Compression

	// Passphrase, when set, encrypts the archive with age's scrypt
	// recipient.
	Passphrase string

	// WorkFactor is the scrypt log2 work factor. Zero uses age's
	// default.
	WorkFactor int
}

// ArchiveInfo is the clear-text header of an archive.
type ArchiveInfo struct {
	Compression Compression
	Encrypted   bool
}

// Archive writes the storage directory and a manifest of it as a
// single tar file at path. The file is written under a temporary name
// and renamed into place once complete.
func (m *Manager) Archive(ctx context.Context, path string, options ArchiveOptions) (err error) {
	if err := m.requireStore(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := m.rejectInside(path); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	lock, err := dirlock.Acquire(m.directory)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer lock.Release()

	temporary := path + ".partial"
	file, err := os.OpenFile(temporary, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(temporary)
		}
	}()

	var flags byte
	if options.Passphrase != "" {
		flags |= flagEncrypted
	}
	header := append(archiveMagic[:], archiveVersion, byte(options.Compression), flags)
	if _, err := file.Write(header); err != nil {
		return fmt.Errorf("archive: writing header: %w", err)
	}

	var payload io.WriteCloser = nopWriteCloser{file}
	if options.Passphrase != "" {
		recipient, err := age.NewScryptRecipient(options.Passphrase)
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		if options.WorkFactor > 0 {
			recipient.SetWorkFactor(options.WorkFactor)
		}
		payload, err = age.Encrypt(file, recipient)
		if err != nil {
			return fmt.Errorf("archive: starting encryption: %w", err)
		}
	}
	compressed, err := compressWriter(payload, options.Compression)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	files, err := m.writeTar(ctx, compressed)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := compressed.Close(); err != nil {
		return fmt.Errorf("archive: finishing compression: %w", err)
	}
	if err := payload.Close(); err != nil {
		return fmt.Errorf("archive: finishing encryption: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	m.logger.Info("archive written",
		"path", path,
		"compression", options.Compression.String(),
		"encrypted", options.Passphrase != "",
		"files", len(files),
		"bytes", totalSize(files),
	)
	return nil
}

// writeTar streams every data file into w as a tar archive, followed
// by a manifest entry, and returns the manifest's file entries.
func (m *Manager) writeTar(ctx context.Context, w io.Writer) (map[string]FileEntry, error) {
	writer := tar.NewWriter(w)
	files := make(map[string]FileEntry)

	err := walkFiles(m.directory, func(name, path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := addFile(writer, name, path)
		if err != nil {
			return err
		}
		files[name] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	manifest := newManifest(m.clock.Now(), files)
	data, err := codec.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     ManifestName,
		Mode:     0o644,
		Size:     int64(len(data)),
		ModTime:  manifest.Created,
	}
	if err := writer.WriteHeader(header); err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	return files, writer.Close()
}

func addFile(writer *tar.Writer, name, path string) (FileEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return FileEntry{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return FileEntry{}, err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return FileEntry{}, err
	}
	header.Name = name
	if err := writer.WriteHeader(header); err != nil {
		return FileEntry{}, fmt.Errorf("adding %s: %w", name, err)
	}

	hasher := newHasher()
	size, err := io.Copy(io.MultiWriter(writer, hasher), file)
	if err != nil {
		return FileEntry{}, fmt.Errorf("adding %s: %w", name, err)
	}
	entry := FileEntry{Size: size}
	hasher.Sum(entry.Digest[:0])
	return entry, nil
}

// InspectArchive reads the clear-text header of the archive at path.
func InspectArchive(path string) (ArchiveInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return ArchiveInfo{}, err
	}
	defer file.Close()
	return readHeader(file)
}

func readHeader(r io.Reader) (ArchiveInfo, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ArchiveInfo{}, ErrNotArchive
		}
		return ArchiveInfo{}, err
	}
	if !bytes.Equal(header[:len(archiveMagic)], archiveMagic[:]) {
		return ArchiveInfo{}, ErrNotArchive
	}
	rest := header[len(archiveMagic):]
	if rest[0] != archiveVersion {
		return ArchiveInfo{}, fmt.Errorf("unsupported archive version %d", rest[0])
	}
	info := ArchiveInfo{
		Compression: Compression(rest[1]),
		Encrypted:   rest[2]&flagEncrypted != 0,
	}
	if info.Compression > CompressionZstd {
		return ArchiveInfo{}, fmt.Errorf("archive uses unknown compression %d", rest[1])
	}
	return info, nil
}

// Unarchive extracts the archive at path into a staging directory
// next to the storage directory, then restores from it exactly as
// Restore does, manifest verification included.
func (m *Manager) Unarchive(ctx context.Context, path, passphrase string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unarchive: %w", err)
	}
	defer file.Close()

	info, err := readHeader(file)
	if err != nil {
		return fmt.Errorf("unarchive %s: %w", path, err)
	}

	var payload io.Reader = file
	if info.Encrypted {
		if passphrase == "" {
			return fmt.Errorf("unarchive %s: %w", path, ErrPassphraseRequired)
		}
		identity, err := age.NewScryptIdentity(passphrase)
		if err != nil {
			return fmt.Errorf("unarchive: %w", err)
		}
		payload, err = age.Decrypt(file, identity)
		if err != nil {
			return fmt.Errorf("unarchive %s: %w: %w", path, ErrDecrypt, err)
		}
	}
	decompressed, err := decompressReader(payload, info.Compression)
	if err != nil {
		return fmt.Errorf("unarchive: %w", err)
	}
	defer decompressed.Close()

	parent := filepath.Dir(m.directory)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("unarchive: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".inkstand-unarchive-*")
	if err != nil {
		return fmt.Errorf("unarchive: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extractTar(ctx, decompressed, staging); err != nil {
		return fmt.Errorf("unarchive %s: %w", path, err)
	}
	return m.Restore(ctx, staging)
}

// extractTar writes the regular files of a tar stream under root.
// Entries whose names would land outside root are rejected.
func extractTar(ctx context.Context, r io.Reader, root string) error {
	reader := tar.NewReader(r)
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.FromSlash(header.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes the archive root", header.Name)
		}
		target := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, header.FileInfo().Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, reader); err != nil {
			out.Close()
			return fmt.Errorf("extracting %s: %w", header.Name, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
}
