// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io/fs"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/article"
	"github.com/inkstand/inkstand/lib/dirlock"
	"github.com/inkstand/inkstand/lib/docstore"
	"github.com/inkstand/inkstand/lib/snapshot"
)

// classify maps library sentinels to CLI error categories. Errors that
// are already categorized, and exit codes, pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var toolError *cli.ToolError
	var exitError *cli.ExitError
	switch {
	case errors.As(err, &toolError), errors.As(err, &exitError):
		return err

	case errors.Is(err, article.ErrInvalidArgument),
		errors.Is(err, docstore.ErrNotRecord),
		errors.Is(err, snapshot.ErrNotArchive),
		errors.Is(err, snapshot.ErrPassphraseRequired),
		errors.Is(err, snapshot.ErrDecrypt),
		errors.Is(err, snapshot.ErrCorrupt):
		return &cli.ToolError{Category: cli.CategoryValidation, Err: err}

	case errors.Is(err, article.ErrNotFound),
		errors.Is(err, snapshot.ErrNoManifest),
		errors.Is(err, fs.ErrNotExist):
		return &cli.ToolError{Category: cli.CategoryNotFound, Err: err}

	case errors.Is(err, dirlock.ErrLocked):
		return &cli.ToolError{Category: cli.CategoryConflict, Err: err}

	default:
		return &cli.ToolError{Category: cli.CategoryInternal, Err: err}
	}
}
