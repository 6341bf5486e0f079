package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to ARCHIVE_TEST_REDIS_URL and skips when unset.
func newTestRedis(t *testing.T) *RedisRegistry {
	t.Helper()

	url := os.Getenv("ARCHIVE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("ARCHIVE_TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefix := "archive:test:" + t.Name() + ":"

	r, err := NewRedisRegistry(ctx, url, prefix, time.Minute)
	require.NoError(t, err)

	t.Cleanup(func() {
		iter := r.rdb.Scan(context.Background(), 0, prefix+"*", 100).Iterator()
		for iter.Next(context.Background()) {
			r.rdb.Del(context.Background(), iter.Val())
		}
		_ = r.Close()
	})

	return r
}

func TestRedisRegistry(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	id, err := r.Create(ctx)
	require.NoError(t, err)

	n, err := r.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := r.Session(ctx, id)
	require.NoError(t, err)

	prefs, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), prefs)

	prefs.Background = "lavender"
	require.NoError(t, s.SavePreferences(prefs))
	require.NoError(t, s.SaveState(State{ArticleIndex: 4, ArticlePage: 1, ResultPage: 2}))

	again, err := r.Session(ctx, id)
	require.NoError(t, err)

	got, err := again.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, "lavender", got.Background)

	st, err := again.LoadState()
	require.NoError(t, err)
	assert.Equal(t, State{ArticleIndex: 4, ArticlePage: 1, ResultPage: 2}, st)

	require.NoError(t, r.Delete(ctx, id))
	_, err = r.Session(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisRegistry_StalePreferences(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	id, err := r.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, r.rdb.HSet(ctx, r.key(id), fieldPreferences, `{"fontSize":"18","bgColor":"not-a-color"}`).Err())

	s, err := r.Session(ctx, id)
	require.NoError(t, err)

	prefs, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, 18, prefs.FontSize)
	assert.Equal(t, "white", prefs.Background)
}

func TestNewRedisRegistry_BadURL(t *testing.T) {
	_, err := NewRedisRegistry(context.Background(), "not a url", "", 0)
	assert.Error(t, err)
}

// Registries are interchangeable behind the interface.
var (
	_ Registry = (*MemoryStore)(nil)
	_ Registry = (*RedisRegistry)(nil)
)
