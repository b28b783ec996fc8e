// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/snapshot"
)

// backupNameLayout names default backup directories by UTC time.
const backupNameLayout = "20060102T150405Z"

type backupParams struct {
	ConfigParams
	cli.JSONOutput
}

func backupCommand(e *env) *cli.Command {
	var params backupParams
	return &cli.Command{
		Name:    "backup",
		Summary: "Copy the whole store to a directory",
		Description: `Copy the storage directory into TARGET and write a manifest of
BLAKE3 digests next to the copied files. Without TARGET the backup goes
to a new timestamped directory under paths.backups.

The store must not be open in another inkstand process.`,
		Usage: "inkstand backup [TARGET]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("backup", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("usage: inkstand backup [TARGET]")
			}
			manager, cfg, err := e.snapshots(&params.ConfigParams, logger)
			if err != nil {
				return err
			}
			target := filepath.Join(cfg.Paths.Backups, e.clock.Now().UTC().Format(backupNameLayout))
			if len(args) == 1 {
				target = args[0]
			}

			written, err := manager.Backup(ctx, target)
			if err != nil {
				return classify(err)
			}
			if done, err := params.EmitJSON(e.out, map[string]string{"target": written}); done {
				return err
			}
			_, err = fmt.Fprintln(e.out, written)
			return err
		},
	}
}

func restoreCommand(e *env) *cli.Command {
	var params ConfigParams
	return &cli.Command{
		Name:    "restore",
		Summary: "Copy a backup directory over the store",
		Description: `Restore the store from a backup directory. When the backup has a
manifest every file is verified first, and a damaged backup is refused
before anything is written.

The store must not be open in another inkstand process.`,
		Usage: "inkstand restore SOURCE",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("restore", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: inkstand restore SOURCE")
			}
			manager, _, err := e.snapshots(&params, logger)
			if err != nil {
				return err
			}
			if err := manager.Restore(ctx, args[0]); err != nil {
				return classify(err)
			}
			_, err = fmt.Fprintf(e.out, "restored %s from %s\n", manager.StoreDirectory(), args[0])
			return err
		},
	}
}

// PassphraseParams reads an archive passphrase from a file.
type PassphraseParams struct {
	PassphraseFile string `json:"-" flag:"passphrase-file" desc:"file holding the archive passphrase (one line)"`
}

func (p *PassphraseParams) passphrase() (string, error) {
	if p.PassphraseFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(p.PassphraseFile)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	passphrase := strings.TrimRight(string(data), "\r\n")
	if passphrase == "" {
		return "", cli.Validation("passphrase file %s is empty", p.PassphraseFile)
	}
	return passphrase, nil
}

type archiveParams struct {
	ConfigParams
	PassphraseParams
	Compression string `json:"compression" flag:"compression,c" desc:"none, lz4, or zstd (default: backup.compression)"`
	WorkFactor  int    `json:"work_factor" flag:"work-factor" desc:"scrypt log2 work factor for encryption (default: age's)"`
}

func archiveCommand(e *env) *cli.Command {
	var params archiveParams
	return &cli.Command{
		Name:    "archive",
		Summary: "Write the whole store to one archive file",
		Description: `Write the storage directory and its manifest to FILE as a tar
stream, compressed with lz4 or zstd, and encrypted with age when a
passphrase is given. The file is written under a temporary name and
renamed into place when complete.`,
		Usage: "inkstand archive FILE [flags]",
		Examples: []cli.Example{
			{Description: "Compressed archive", Command: "inkstand archive store.inkstand"},
			{Description: "Encrypted archive", Command: "inkstand archive store.inkstand --passphrase-file ~/.inkstand-pass"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("archive", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: inkstand archive FILE [flags]")
			}
			manager, cfg, err := e.snapshots(&params.ConfigParams, logger)
			if err != nil {
				return err
			}
			name := params.Compression
			if name == "" {
				name = cfg.Backup.Compression
			}
			compression, err := snapshot.ParseCompression(name)
			if err != nil {
				return cli.Validation("%w", err)
			}
			passphrase, err := params.passphrase()
			if err != nil {
				return classify(err)
			}

			err = manager.Archive(ctx, args[0], snapshot.ArchiveOptions{
				Compression: compression,
				Passphrase:  passphrase,
				WorkFactor:  params.WorkFactor,
			})
			if err != nil {
				return classify(err)
			}
			state := "unencrypted"
			if passphrase != "" {
				state = "encrypted"
			}
			_, err = fmt.Fprintf(e.out, "%s (%s, %s)\n", args[0], compression, state)
			return err
		},
	}
}

type unarchiveParams struct {
	ConfigParams
	PassphraseParams
}

func unarchiveCommand(e *env) *cli.Command {
	var params unarchiveParams
	return &cli.Command{
		Name:    "unarchive",
		Summary: "Restore the store from an archive file",
		Description: `Decrypt and decompress an archive written by "inkstand archive",
verify it against its manifest, and restore it over the store.`,
		Usage: "inkstand unarchive FILE [--passphrase-file FILE]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("unarchive", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: inkstand unarchive FILE")
			}
			manager, _, err := e.snapshots(&params.ConfigParams, logger)
			if err != nil {
				return err
			}
			passphrase, err := params.passphrase()
			if err != nil {
				return classify(err)
			}
			if err := manager.Unarchive(ctx, args[0], passphrase); err != nil {
				return classify(err)
			}
			_, err = fmt.Fprintf(e.out, "restored %s from %s\n", manager.StoreDirectory(), args[0])
			return err
		},
	}
}

type verifyParams struct {
	cli.JSONOutput
}

// verifyOutput is the --json form of verify.
type verifyOutput struct {
	Path       string   `json:"path"`
	Archive    bool     `json:"archive"`
	OK         bool     `json:"ok"`
	Missing    []string `json:"missing,omitempty"`
	Mismatched []string `json:"mismatched,omitempty"`
	Extra      []string `json:"extra,omitempty"`

	Compression string `json:"compression,omitempty"`
	Encrypted   bool   `json:"encrypted,omitempty"`
}

func verifyCommand(e *env) *cli.Command {
	var params verifyParams
	return &cli.Command{
		Name:    "verify",
		Summary: "Check a backup against its manifest",
		Description: `For a backup directory, check every file against the manifest
written by "inkstand backup" and exit 1 if any is missing, changed, or
unexpected. For an archive file, print its header: compression and
whether it is encrypted.`,
		Usage: "inkstand verify PATH",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("verify", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: inkstand verify PATH")
			}
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return classify(err)
			}

			if !info.IsDir() {
				header, err := snapshot.InspectArchive(path)
				if err != nil {
					return classify(err)
				}
				output := verifyOutput{Path: path, Archive: true, OK: true, Compression: header.Compression.String(), Encrypted: header.Encrypted}
				if done, err := params.EmitJSON(e.out, output); done {
					return err
				}
				_, err = fmt.Fprintf(e.out, "%s: inkstand archive, %s, encrypted: %t\n", path, header.Compression, header.Encrypted)
				return err
			}

			report, err := snapshot.Verify(path)
			if err != nil {
				return classify(err)
			}
			output := verifyOutput{Path: path, OK: report.OK(), Missing: report.Missing, Mismatched: report.Mismatched, Extra: report.Extra}
			if done, err := params.EmitJSON(e.out, output); done {
				if err == nil && !report.OK() {
					err = &cli.ExitError{Code: 1}
				}
				return err
			}

			fmt.Fprintf(e.out, "%s: %s\n", path, report)
			for _, group := range []struct {
				label string
				paths []string
			}{
				{"missing", report.Missing},
				{"mismatched", report.Mismatched},
				{"extra", report.Extra},
			} {
				for _, name := range group.paths {
					fmt.Fprintf(e.out, "  %s: %s\n", group.label, name)
				}
			}
			if !report.OK() {
				logger.Warn("snapshot does not match its manifest", "path", path, "report", report.String())
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
