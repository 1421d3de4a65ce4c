// ABOUTME: SQLite-backed local vault store using modernc.org/sqlite
// ABOUTME: Objects live as JSON rows; query plans are evaluated client-side like the encrypted store

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/2389/vault-gateway/internal/query"
)

// SQLiteStore is the bundled local implementation of the vault store,
// used for development and tests. It implements Dialer; every successful
// Connect hands out an independent Conn over the shared database.
//
// Like the real encrypted store, the database itself never evaluates
// criteria: rows are scanned and the compiled expression runs over the
// decoded fields.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a local store at the given path.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("local vault store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			username        TEXT PRIMARY KEY,
			passphrase_hash TEXT NOT NULL,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS objects (
			resource   TEXT NOT NULL,
			id         TEXT NOT NULL,
			fields     TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (resource, id)
		);

		CREATE INDEX IF NOT EXISTS idx_objects_resource ON objects(resource);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser registers a store user with a bcrypt-hashed passphrase.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passphrase string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing passphrase: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (username, passphrase_hash) VALUES (?, ?)",
		username, string(hash))
	if err != nil {
		return fmt.Errorf("creating user %q: %w", username, err)
	}
	return nil
}

// Connect implements Dialer. The addr argument is accepted for interface
// compatibility but ignored: a local store serves exactly one database.
func (s *SQLiteStore) Connect(ctx context.Context, addr, username, passphrase string) (Conn, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		"SELECT passphrase_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err == sql.ErrNoRows {
		return nil, &AuthError{Reason: "unknown user " + username}
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase)); err != nil {
		return nil, &AuthError{Reason: "invalid passphrase for " + username}
	}

	s.logger.Debug("store connection opened", "username", username)
	return &localConn{store: s, username: username}, nil
}

// localConn is one authenticated channel into the local store.
type localConn struct {
	store    *SQLiteStore
	username string
	closed   atomic.Bool
}

func (c *localConn) Get(ctx context.Context, resource, id string) (*Object, error) {
	if c.closed.Load() {
		return nil, ErrConnClosed
	}

	var raw string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT fields FROM objects WHERE resource = ? AND id = ?", resource, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNoSuchObject
	}
	if err != nil {
		return nil, fmt.Errorf("fetching object: %w", err)
	}

	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	return &Object{ID: id, Fields: fields}, nil
}

func (c *localConn) Insert(ctx context.Context, resource string, fields map[string]any) (string, error) {
	if c.closed.Load() {
		return "", ErrConnClosed
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding fields: %w", err)
	}

	id := uuid.New().String()

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO objects (resource, id, fields) VALUES (?, ?, ?)",
		resource, id, string(raw)); err != nil {
		return "", fmt.Errorf("inserting object: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing insert: %w", err)
	}
	return id, nil
}

func (c *localConn) Delete(ctx context.Context, resource, id string) error {
	if c.closed.Load() {
		return ErrConnClosed
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM objects WHERE resource = ? AND id = ?", resource, id)
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNoSuchObject
	}

	return tx.Commit()
}

func (c *localConn) Find(ctx context.Context, resource string, spec *query.Spec) ([]*Object, error) {
	if c.closed.Load() {
		return nil, ErrConnClosed
	}

	// rowid order gives a stable base ordering (insertion order) so an
	// unsorted Find is deterministic for a fixed dataset.
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, fields FROM objects WHERE resource = ? ORDER BY rowid", resource)
	if err != nil {
		return nil, fmt.Errorf("scanning objects: %w", err)
	}
	defer rows.Close()

	var matched []*Object
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		fields, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		if spec.Criteria != nil && !spec.Criteria.Matches(fields) {
			continue
		}
		matched = append(matched, &Object{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	sortObjects(matched, spec.SortField, spec.Descending)

	return paginate(matched, spec.Skip, spec.Limit), nil
}

// Close marks the connection closed. The shared database handle stays open;
// it belongs to the SQLiteStore.
func (c *localConn) Close() error {
	if c.closed.Swap(true) {
		return ErrConnClosed
	}
	c.store.logger.Debug("store connection closed", "username", c.username)
	return nil
}

// sortObjects orders objects by one field. The sort is ascending and stable;
// a descending sort reverses the ascending result, so the two directions are
// exact mirrors. Objects lacking the sort field order before those that have it.
func sortObjects(objects []*Object, field string, descending bool) {
	if field == "" {
		return
	}

	sort.SliceStable(objects, func(i, j int) bool {
		a, okA := objects[i].Fields[field]
		b, okB := objects[j].Fields[field]
		if !okA || !okB {
			return !okA && okB
		}
		cmp, ok := query.Compare(a, b)
		return ok && cmp < 0
	})

	if descending {
		for i, j := 0, len(objects)-1; i < j; i, j = i+1, j-1 {
			objects[i], objects[j] = objects[j], objects[i]
		}
	}
}

// paginate applies skip and limit to the matched set. Skip without limit
// returns the remainder after the offset.
func paginate(objects []*Object, skip int, limit *int) []*Object {
	if skip > 0 {
		if skip >= len(objects) {
			return nil
		}
		objects = objects[skip:]
	}
	if limit != nil && *limit < len(objects) {
		objects = objects[:*limit]
	}
	return objects
}

// decodeFields parses a stored JSON row back into a fields map.
func decodeFields(raw string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	return fields, nil
}
