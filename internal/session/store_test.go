// AngelaMos | 2026
// store_test.go

package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", map[string]string{KeyUser: "{}", KeyAuthToken: "t"}, time.Hour))
	require.NoError(t, s.Set(ctx, "a", map[string]string{KeyFlash: "[]"}, time.Hour))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyUser: "{}", KeyAuthToken: "t", KeyFlash: "[]"}, got)

	got[KeyUser] = "mutated"
	again, _ := s.Get(ctx, "a")
	assert.Equal(t, "{}", again[KeyUser])

	require.NoError(t, s.Delete(ctx, "a", KeyFlash))
	got, _ = s.Get(ctx, "a")
	assert.NotContains(t, got, KeyFlash)

	require.NoError(t, s.Destroy(ctx, "a"))
	got, _ = s.Get(ctx, "a")
	assert.Empty(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", map[string]string{KeyAuthToken: "t"}, time.Minute))
	require.NoError(t, s.Set(ctx, "b", map[string]string{KeyAuthToken: "u"}, time.Hour))

	now = now.Add(2 * time.Minute)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreDeleteLastKeyDropsSession(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "a", map[string]string{KeyFlash: "[]"}, time.Hour))
	require.NoError(t, s.Delete(ctx, "a", KeyFlash))
	require.NoError(t, s.Delete(ctx, "missing", KeyFlash))

	assert.Zero(t, s.Len())
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Set(ctx, "abc", map[string]string{KeyUser: "{}", KeyAuthToken: "t"}, time.Hour))

	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyUser: "{}", KeyAuthToken: "t"}, got)

	require.NoError(t, s.Delete(ctx, "abc", KeyUser))
	got, _ = s.Get(ctx, "abc")
	assert.Equal(t, map[string]string{KeyAuthToken: "t"}, got)

	require.NoError(t, s.Destroy(ctx, "abc"))
	assert.False(t, mr.Exists("session:abc"))
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Set(ctx, "abc", map[string]string{KeyAuthToken: "t"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStoreGetError(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), "abc")
	assert.Error(t, err)
}

func newPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, time.Time) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	s := NewPostgresStore(sqlx.NewDb(db, "pgx"))
	s.now = func() time.Time { return now }

	return s, mock, now
}

func TestPostgresStoreGet(t *testing.T) {
	s, mock, now := newPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value")).
		WithArgs("abc", now).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow(KeyUser, `{"id":"1"}`).
			AddRow(KeyAuthToken, "tok"))

	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyUser: `{"id":"1"}`, KeyAuthToken: "tok"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetUsesTransaction(t *testing.T) {
	s, mock, now := newPostgresStore(t)
	expires := now.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO console_sessions")).
		WithArgs("abc", KeyAuthToken, "tok", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE console_sessions")).
		WithArgs("abc", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Set(context.Background(), "abc", map[string]string{KeyAuthToken: "tok"}, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetRollsBackOnError(t *testing.T) {
	s, mock, _ := newPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO console_sessions")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.Set(context.Background(), "abc", map[string]string{KeyAuthToken: "tok"}, time.Hour)
	require.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDeleteAndDestroy(t *testing.T) {
	s, mock, now := newPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM console_sessions\n\t\tWHERE sid")).
		WithArgs("abc", KeyFlash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM console_sessions WHERE sid")).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM console_sessions WHERE expires_at")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	ctx := context.Background()
	require.NoError(t, s.Delete(ctx, "abc", KeyFlash))
	require.NoError(t, s.Destroy(ctx, "abc"))

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	s, mock, _ := newPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS console_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
