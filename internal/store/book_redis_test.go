package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
)

func newRedisBooks(t *testing.T) (*RedisBooks, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo := NewRedisBooks(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test", time.Second)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, mr
}

func TestRedisBooks_Contract(t *testing.T) {
	repo, _ := newRedisBooks(t)
	exerciseBackend(t, repo)
}

func TestRedisBooks_KeyLayout(t *testing.T) {
	repo, mr := newRedisBooks(t)
	ctx := context.Background()

	b := &book.Book{Title: "Bumi", Author: "Tere Liye"}
	require.NoError(t, repo.Create(ctx, b))

	assert.True(t, mr.Exists("test:book:1"))
	seq, err := mr.Get("test:seq")
	require.NoError(t, err)
	assert.Equal(t, "1", seq)
	members, err := mr.ZMembers("test:ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.False(t, mr.Exists("test:book:1"))
	assert.False(t, mr.Exists("test:ids"))
}

func TestRedisBooks_ListSkipsVanishedDocuments(t *testing.T) {
	repo, mr := newRedisBooks(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &book.Book{Title: "A", Author: "A"}))
	require.NoError(t, repo.Create(ctx, &book.Book{Title: "B", Author: "B"}))
	mr.Del("test:book:1")

	books, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "B", books[0].Title)
}

func TestRedisBooks_ServerDown(t *testing.T) {
	repo, mr := newRedisBooks(t)
	mr.Close()

	_, err := repo.List(context.Background())
	assert.Error(t, err)
	assert.Error(t, repo.Ping(context.Background()))
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.StoreConfig{Driver: config.DriverRedis, RedisAddr: mr.Addr(), RedisPrefix: "open", Timeout: time.Second}

	repo, err := OpenRedis(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	assert.Equal(t, "open", repo.prefix)

	mr.Close()
	_, err = OpenRedis(context.Background(), cfg)
	assert.Error(t, err)
}
