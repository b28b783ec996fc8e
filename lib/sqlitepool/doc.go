// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the
// article store.
//
// It wraps zombiezen.com/go/sqlite with the pragmas a small embedded
// content store wants: WAL journal mode so readers never block the
// writer, FULL synchronous because the database is the only copy of
// the articles between backups, and a busy timeout so concurrent CLI
// invocations wait for the write lock instead of failing.
//
// Callers [Pool.Take] a connection, perform work, and [Pool.Put] it
// back. Connections are not safe for concurrent use.
//
// # Pragmas
//
//   - journal_mode=WAL
//   - synchronous=FULL: committed articles survive power loss.
//   - busy_timeout=5000
//   - cache_size=-2048: 2 MB page cache per connection. Article
//     collections are small; a large cache only costs memory.
//   - temp_store=MEMORY
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   filepath.Join(directory, "article.db"),
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
package sqlitepool
