// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Inkstand.
//
// Configuration is loaded from a single file named by either the
// INKSTAND_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no file discovery. When neither is given
// the CLI runs on [Default].
//
// The file may carry environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production defaults to warn-level
// logging.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${INKSTAND_ROOT}, and ${VAR:-default} patterns are expanded.
// No other environment variables override config values.
//
// This package depends on no other Inkstand packages.
package config
