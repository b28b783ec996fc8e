// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the inkstand CLI.
//
// The central type is [Command]: a named command with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function.
// [Command.Execute] handles flag parsing, subcommand routing, and help
// output with examples. Flag sets are usually built from tagged param
// structs by [FlagsFromParams].
//
// When a user types an unknown command or flag, the framework suggests
// the closest known name by Levenshtein distance (at most 3).
//
// Errors returned by commands may be categorized with [ToolError] so
// scripts consuming --json output can distinguish bad input from
// missing articles from storage failures. [ExitError] carries a
// non-zero exit status for commands that have already printed their
// result, such as "inkstand exists" on a missing key.
package cli
