// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/lib/article"
	"github.com/inkstand/inkstand/lib/config"
	"github.com/inkstand/inkstand/lib/docstore"
	"github.com/inkstand/inkstand/lib/snapshot"
)

// collection is the document collection articles live in.
const collection = "article"

// ConfigParams selects the configuration file. Every command that
// touches the store embeds it.
type ConfigParams struct {
	ConfigPath string `json:"-" flag:"config" desc:"path to inkstand.yaml (default: $INKSTAND_CONFIG, else built-in defaults)"`
}

// load reads --config, else INKSTAND_CONFIG, else the defaults, and
// validates the result.
func (p *ConfigParams) load() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case p.ConfigPath != "":
		cfg, err = config.LoadFile(p.ConfigPath)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
		cfg.Expand()
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// configure loads the config and applies its log level.
func (e *env) configure(params *ConfigParams) (*config.Config, error) {
	cfg, err := params.load()
	if err != nil {
		return nil, err
	}
	if e.level != nil {
		level, err := cfg.LogLevel()
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		e.level.Set(level)
	}
	return cfg, nil
}

// articleSession is an open store and the service over it.
type articleSession struct {
	config   *config.Config
	store    *docstore.Store
	articles *article.Service
}

// withArticles opens the store, runs fn, and closes the store. Errors
// from fn and from closing are both reported, categorized for the CLI.
func (e *env) withArticles(ctx context.Context, params *ConfigParams, logger *slog.Logger, fn func(*articleSession) error) error {
	cfg, err := e.configure(params)
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return cli.Internal("%w", err)
	}

	store, err := docstore.Open(docstore.Config{
		Directory:  cfg.Paths.Store,
		Collection: collection,
		Logger:     logger,
	})
	if err != nil {
		return classify(err)
	}

	service, err := article.NewService(article.Config{
		Store:      store,
		MaxHistory: cfg.MaxHistory(),
		Clock:      e.clock,
		Logger:     logger,
		Keys:       article.KeyOptions{MaxAttempts: cfg.Keys.MaxAttempts},
	})
	if err != nil {
		store.Close()
		return cli.Internal("%w", err)
	}

	runErr := fn(&articleSession{config: cfg, store: store, articles: service})
	if closeErr := store.Close(); closeErr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("closing store: %w", closeErr))
	}
	return classify(runErr)
}

// snapshots returns a snapshot manager for the configured store. The
// store is not opened: snapshot operations take the directory lock
// themselves.
func (e *env) snapshots(params *ConfigParams, logger *slog.Logger) (*snapshot.Manager, *config.Config, error) {
	cfg, err := e.configure(params)
	if err != nil {
		return nil, nil, err
	}
	manager, err := snapshot.New(snapshot.Config{
		StoreDirectory: cfg.Paths.Store,
		Clock:          e.clock,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, cli.Internal("%w", err)
	}
	return manager, cfg, nil
}
