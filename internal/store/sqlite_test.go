// ABOUTME: Tests for the SQLite-backed local vault store
// ABOUTME: Covers authentication, CRUD round-trips, and find with sort/skip/limit

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/vault-gateway/internal/query"
)

const testPassphrase = "v3ry 53cr3t pa$$w0rd"

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "vault.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.CreateUser(context.Background(), "root", testPassphrase))
	return s
}

func connect(t *testing.T, s *SQLiteStore) Conn {
	t.Helper()
	conn, err := s.Connect(context.Background(), "", "root", testPassphrase)
	require.NoError(t, err)
	return conn
}

func TestConnect_Success(t *testing.T) {
	s := setupTestStore(t)

	conn := connect(t, s)
	require.NoError(t, conn.Close())
}

func TestConnect_AuthFailures(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Connect(ctx, "", "root", "wrong passphrase")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "expected *AuthError, got %T", err)
	assert.Contains(t, authErr.Reason, "root")

	_, err = s.Connect(ctx, "", "nobody", testPassphrase)
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, authErr.Reason, "nobody")
}

func TestInsertGetDelete_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	ctx := context.Background()

	fields := map[string]any{
		"title": "hello",
		"num":   float64(7),
	}

	id, err := conn.Insert(ctx, "Page", fields)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	obj, err := conn.Get(ctx, "Page", id)
	require.NoError(t, err)
	assert.Equal(t, id, obj.ID)
	assert.Equal(t, "hello", obj.Fields["title"])
	assert.Equal(t, float64(7), obj.Fields["num"])

	require.NoError(t, conn.Delete(ctx, "Page", id))

	_, err = conn.Get(ctx, "Page", id)
	assert.ErrorIs(t, err, ErrNoSuchObject)
}

func TestGet_MissingID(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)

	_, err := conn.Get(context.Background(), "Page", "does-not-exist")
	assert.ErrorIs(t, err, ErrNoSuchObject)
}

func TestDelete_MissingIDIsError(t *testing.T) {
	// Delete of an absent id reports ErrNoSuchObject rather than
	// succeeding idempotently.
	s := setupTestStore(t)
	conn := connect(t, s)

	err := conn.Delete(context.Background(), "Page", "does-not-exist")
	assert.ErrorIs(t, err, ErrNoSuchObject)
}

func TestGet_ResourcesAreIsolated(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	ctx := context.Background()

	id, err := conn.Insert(ctx, "Page", map[string]any{"title": "x"})
	require.NoError(t, err)

	_, err = conn.Get(ctx, "Author", id)
	assert.ErrorIs(t, err, ErrNoSuchObject)
}

func TestClosedConn(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	ctx := context.Background()

	require.NoError(t, conn.Close())

	_, err := conn.Get(ctx, "Page", "any")
	assert.ErrorIs(t, err, ErrConnClosed)
	_, err = conn.Insert(ctx, "Page", map[string]any{})
	assert.ErrorIs(t, err, ErrConnClosed)
	assert.ErrorIs(t, conn.Delete(ctx, "Page", "any"), ErrConnClosed)
	_, err = conn.Find(ctx, "Page", &query.Spec{})
	assert.ErrorIs(t, err, ErrConnClosed)

	assert.ErrorIs(t, conn.Close(), ErrConnClosed)
}

func TestConnect_IndependentConnections(t *testing.T) {
	// Two logins by the same user get independent connections; closing one
	// leaves the other usable.
	s := setupTestStore(t)
	first := connect(t, s)
	second := connect(t, s)
	ctx := context.Background()

	require.NoError(t, first.Close())

	_, err := second.Find(ctx, "Page", &query.Spec{})
	assert.NoError(t, err)
}

// seedPages inserts n pages titled "page 0".."page n-1" with num fields 0..n-1.
func seedPages(t *testing.T, conn Conn, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := conn.Insert(context.Background(), "Page", map[string]any{
			"title": fmt.Sprintf("page %02d", i),
			"num":   float64(i),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestFind_NoCriteriaInsertionOrder(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	ids := seedPages(t, conn, 5)

	objects, err := conn.Find(context.Background(), "Page", &query.Spec{})
	require.NoError(t, err)
	require.Len(t, objects, 5)
	for i, obj := range objects {
		assert.Equal(t, ids[i], obj.ID, "unsorted find should return insertion order")
	}
}

func TestFind_Criteria(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	seedPages(t, conn, 10)

	spec := &query.Spec{
		Criteria: &query.Pred{Field: "num", Op: query.OpGte, Operand: float64(6)},
	}
	objects, err := conn.Find(context.Background(), "Page", spec)
	require.NoError(t, err)
	assert.Len(t, objects, 4)
}

func TestFind_SortSymmetry(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	seedPages(t, conn, 8)
	ctx := context.Background()

	asc, err := conn.Find(ctx, "Page", &query.Spec{SortField: "num"})
	require.NoError(t, err)
	desc, err := conn.Find(ctx, "Page", &query.Spec{SortField: "num", Descending: true})
	require.NoError(t, err)

	require.Equal(t, len(asc), len(desc))
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID,
			"descending result must be the exact reverse of ascending")
	}
}

func TestFind_SkipLimit(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	seedPages(t, conn, 10)
	ctx := context.Background()

	limit := func(n int) *int { return &n }

	tests := []struct {
		name  string
		spec  *query.Spec
		count int
	}{
		{"no skip or limit", &query.Spec{}, 10},
		{"limit 9", &query.Spec{Limit: limit(9)}, 9},
		{"skip 2 limit 10", &query.Spec{Skip: 2, Limit: limit(10)}, 8},
		{"skip without limit", &query.Spec{Skip: 4}, 6},
		{"skip past end", &query.Spec{Skip: 50}, 0},
		{"limit 0", &query.Spec{Limit: limit(0)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects, err := conn.Find(ctx, "Page", tt.spec)
			require.NoError(t, err)
			assert.Len(t, objects, tt.count)
		})
	}
}

func TestFind_SkipIsPrefixAligned(t *testing.T) {
	s := setupTestStore(t)
	conn := connect(t, s)
	seedPages(t, conn, 10)
	ctx := context.Background()

	all, err := conn.Find(ctx, "Page", &query.Spec{SortField: "num"})
	require.NoError(t, err)

	two := 2
	page, err := conn.Find(ctx, "Page", &query.Spec{SortField: "num", Skip: 3, Limit: &two})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[3].ID, page[0].ID)
	assert.Equal(t, all[4].ID, page[1].ID)
}
