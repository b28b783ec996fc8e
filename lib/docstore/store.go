// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/inkstand/inkstand/lib/codec"
	"github.com/inkstand/inkstand/lib/dirlock"
	"github.com/inkstand/inkstand/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	key  TEXT,
	type TEXT,
	body BLOB NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS documents_key ON documents(key) WHERE key IS NOT NULL;
CREATE INDEX IF NOT EXISTS documents_type ON documents(type);
`

var collectionPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Config holds the parameters for opening a collection.
type Config struct {
	// Directory is the storage directory. Created if missing. This is
	// the directory snapshot tooling backs up as a whole.
	Directory string

	// Collection names the database file inside Directory. Lowercase
	// letters, digits, '-' and '_'.
	Collection string

	// PoolSize is passed to sqlitepool. Zero uses its default.
	PoolSize int

	// Logger receives store messages. Nil discards them.
	Logger *slog.Logger
}

// Store is an open document collection. Safe for concurrent use.
type Store struct {
	pool       *sqlitepool.Pool
	lock       *dirlock.Lock
	logger     *slog.Logger
	directory  string
	collection string
}

// Open locks the storage directory, opens the collection database, and
// loads its schema. The caller must call Close.
func Open(cfg Config) (*Store, error) {
	if cfg.Directory == "" {
		return nil, fmt.Errorf("docstore: Directory is required")
	}
	if !collectionPattern.MatchString(cfg.Collection) {
		return nil, fmt.Errorf("docstore: invalid collection name %q", cfg.Collection)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("collection", cfg.Collection)

	lock, err := dirlock.Acquire(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("docstore: %w", err)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(cfg.Directory, cfg.Collection+".db"),
		PoolSize: cfg.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		lock.Release()
		return nil, storageError("open", err)
	}

	store := &Store{
		pool:       pool,
		lock:       lock,
		logger:     logger,
		directory:  cfg.Directory,
		collection: cfg.Collection,
	}

	// Autoload: prepare one connection now so a corrupt or unreadable
	// database fails at open rather than on the first operation.
	conn, err := pool.Take(context.Background())
	if err != nil {
		store.Close()
		return nil, storageError("load", err)
	}
	pool.Put(conn)

	logger.Info("document store opened", "directory", cfg.Directory)
	return store, nil
}

// Close closes the database and releases the directory lock.
func (s *Store) Close() error {
	poolErr := s.pool.Close()
	lockErr := s.lock.Release()
	if poolErr != nil {
		return storageError("close", poolErr)
	}
	if lockErr != nil {
		return storageError("close", lockErr)
	}
	return nil
}

// Directory returns the storage directory.
func (s *Store) Directory() string {
	return s.directory
}

// Insert stores document as a new record and returns the stored form.
func (s *Store) Insert(ctx context.Context, document any) (Record, error) {
	record, body, err := s.encode("insert", document)
	if err != nil {
		return nil, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, storageError("insert", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `INSERT INTO documents (key, type, body) VALUES (?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{indexedString(record, "key"), indexedString(record, "type"), body},
	})
	if err != nil {
		return nil, s.writeError("insert", record, err)
	}
	return record, nil
}

// Find returns every record matching filter, in insertion order.
func (s *Store) Find(ctx context.Context, filter Filter) ([]Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, storageError("find", err)
	}
	defer s.pool.Put(conn)

	var records []Record
	err = scan(conn, filter, func(_ int64, record Record) bool {
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, storageError("find", err)
	}
	return records, nil
}

// Update replaces the first record matching filter with document. The
// whole record is replaced; fields absent from document are dropped.
// Returns ErrNoMatch when nothing matches.
func (s *Store) Update(ctx context.Context, filter Filter, document any) (Record, error) {
	record, body, err := s.encode("update", document)
	if err != nil {
		return nil, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, storageError("update", err)
	}
	defer s.pool.Put(conn)

	if err := s.update(conn, filter, record, body); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Store) update(conn *sqlite.Conn, filter Filter, record Record, body []byte) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return storageError("update", err)
	}
	defer endTransaction(&err)

	target := int64(-1)
	err = scan(conn, filter, func(id int64, _ Record) bool {
		target = id
		return false
	})
	if err != nil {
		return storageError("update", err)
	}
	if target < 0 {
		return ErrNoMatch
	}

	err = sqlitex.Execute(conn, `UPDATE documents SET key = ?, type = ?, body = ? WHERE id = ?`, &sqlitex.ExecOptions{
		Args: []any{indexedString(record, "key"), indexedString(record, "type"), body, target},
	})
	if err != nil {
		return s.writeError("update", record, err)
	}
	return nil
}

// Remove deletes every record matching filter and returns how many
// were deleted.
func (s *Store) Remove(ctx context.Context, filter Filter) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, storageError("remove", err)
	}
	defer s.pool.Put(conn)

	return s.remove(conn, filter)
}

func (s *Store) remove(conn *sqlite.Conn, filter Filter) (removed int, err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return 0, storageError("remove", err)
	}
	defer endTransaction(&err)

	var ids []int64
	err = scan(conn, filter, func(id int64, _ Record) bool {
		ids = append(ids, id)
		return true
	})
	if err != nil {
		return 0, storageError("remove", err)
	}

	for _, id := range ids {
		err = sqlitex.Execute(conn, `DELETE FROM documents WHERE id = ?`, &sqlitex.ExecOptions{
			Args: []any{id},
		})
		if err != nil {
			return 0, storageError("remove", err)
		}
	}
	return len(ids), nil
}

// encode validates that document is a key/value record and returns its
// generic form and CBOR body.
func (s *Store) encode(operation string, document any) (Record, []byte, error) {
	if document == nil {
		s.logger.Error("rejected document", "operation", operation, "type", "nil")
		return nil, nil, fmt.Errorf("%s: %w: got nil", operation, ErrNotRecord)
	}

	body, err := codec.Marshal(document)
	if err != nil {
		s.logger.Error("rejected document", "operation", operation, "type", fmt.Sprintf("%T", document), "error", err)
		return nil, nil, fmt.Errorf("%s: %w: %T: %v", operation, ErrNotRecord, document, err)
	}

	var record Record
	if err := codec.Unmarshal(body, &record); err != nil || record == nil {
		s.logger.Error("rejected document", "operation", operation, "type", fmt.Sprintf("%T", document))
		return nil, nil, fmt.Errorf("%s: %w: got %T", operation, ErrNotRecord, document)
	}
	return record, body, nil
}

func (s *Store) writeError(operation string, record Record, err error) error {
	if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
		return fmt.Errorf("%s: %w: %q", operation, ErrDuplicateKey, record.String("key"))
	}
	return storageError(operation, err)
}

// scan visits records matching filter in insertion order until visit
// returns false. The key and type columns narrow the SQL query when
// the filter constrains them to a string; every other field is matched
// after decoding.
func scan(conn *sqlite.Conn, filter Filter, visit func(id int64, record Record) bool) error {
	var (
		where []string
		args  []any
	)
	for _, column := range []string{"key", "type"} {
		if value, ok := filter[column].(string); ok {
			where = append(where, column+" = ?")
			args = append(args, value)
		}
	}

	query := "SELECT id, body FROM documents"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	stopped := false
	return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if stopped {
				return nil
			}
			body := make([]byte, stmt.ColumnLen(1))
			stmt.ColumnBytes(1, body)

			var record Record
			if err := codec.Unmarshal(body, &record); err != nil {
				return fmt.Errorf("decoding document %d: %w", stmt.ColumnInt64(0), err)
			}
			if !filter.Matches(record) {
				return nil
			}
			if !visit(stmt.ColumnInt64(0), record) {
				stopped = true
			}
			return nil
		},
	})
}
