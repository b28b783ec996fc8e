// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/inkstand/inkstand/lib/sqlitepool"
)

const articleSchema = `
	CREATE TABLE IF NOT EXISTS drafts (
		key   TEXT PRIMARY KEY,
		title TEXT NOT NULL
	);
`

func createSchema(conn *sqlite.Conn) error {
	return sqlitex.ExecuteScript(conn, articleSchema, nil)
}

func TestConnectionPragmas(t *testing.T) {
	pool := openPool(t, filepath.Join(t.TempDir(), "article.db"), nil)
	conn := take(t, pool)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "2"},
		{"busy_timeout", "5000"},
		{"temp_store", "2"},
	}
	for _, test := range tests {
		if got := queryText(t, conn, "PRAGMA "+test.pragma); got != test.want {
			t.Errorf("PRAGMA %s = %q, want %q", test.pragma, got, test.want)
		}
	}
}

func TestOnConnectRunsPerConnection(t *testing.T) {
	var mutex sync.Mutex
	calls := 0
	pool := openPool(t, filepath.Join(t.TempDir(), "article.db"), func(conn *sqlite.Conn) error {
		mutex.Lock()
		calls++
		mutex.Unlock()
		return createSchema(conn)
	})

	first := take(t, pool)
	second := take(t, pool)
	if first == second {
		t.Fatal("two Takes returned the same connection")
	}
	mutex.Lock()
	defer mutex.Unlock()
	if calls != 2 {
		t.Errorf("OnConnect ran %d times for two connections, want 2", calls)
	}
}

func TestCommittedWritesVisibleToOtherConnections(t *testing.T) {
	pool := openPool(t, filepath.Join(t.TempDir(), "article.db"), createSchema)

	writer := take(t, pool)
	reader := take(t, pool)

	err := sqlitex.Execute(writer, "INSERT INTO drafts (key, title) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{"k3x9ab", "Release notes"},
	})
	if err != nil {
		t.Fatalf("INSERT: %v", err)
	}

	if got := queryText(t, reader, "SELECT title FROM drafts WHERE key = 'k3x9ab'"); got != "Release notes" {
		t.Errorf("reader saw title %q", got)
	}
}

func TestOnConnectErrorSurfacesFromTake(t *testing.T) {
	schemaErr := errors.New("schema broken")
	pool := openPool(t, filepath.Join(t.TempDir(), "article.db"), func(*sqlite.Conn) error {
		return schemaErr
	})

	if _, err := pool.Take(context.Background()); err == nil {
		t.Fatal("expected Take to fail when OnConnect fails")
	}
}

func TestTakeHonorsCancellation(t *testing.T) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "article.db"),
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Take(ctx); err == nil {
		t.Fatal("Take on an exhausted pool with a cancelled context succeeded")
	}
}

func TestCloseCheckpointsWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.db")
	pool, err := sqlitepool.Open(sqlitepool.Config{Path: path, OnConnect: createSchema})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if pool.Path() != path {
		t.Errorf("Path() = %q, want %q", pool.Path(), path)
	}

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if err := sqlitex.Execute(conn, "INSERT INTO drafts (key, title) VALUES ('a1b2c3', 'x')", nil); err != nil {
		t.Fatalf("INSERT: %v", err)
	}
	pool.Put(conn)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if info, err := os.Stat(path + "-wal"); err == nil && info.Size() > 0 {
		t.Errorf("WAL still holds %d bytes after Close", info.Size())
	}
}

func TestEmptyPathRejected(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func openPool(t *testing.T, path string, onConnect func(*sqlite.Conn) error) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{Path: path, OnConnect: onConnect})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}

// take borrows a connection that is returned when the test ends,
// before the pool closes.
func take(t *testing.T, pool *sqlitepool.Pool) *sqlite.Conn {
	t.Helper()
	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	t.Cleanup(func() { pool.Put(conn) })
	return conn
}

func queryText(t *testing.T, conn *sqlite.Conn, query string) string {
	t.Helper()
	var result string
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			result = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return result
}
