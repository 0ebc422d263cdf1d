package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
)

var redisJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisBooks keeps one JSON document per book plus a sorted set of ids.
//
//	<prefix>:seq        INCR counter for new ids
//	<prefix>:book:<id>  JSON document
//	<prefix>:ids        sorted set, score = id
type RedisBooks struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// OpenRedis builds a client from cfg and checks that the server answers.
func OpenRedis(ctx context.Context, cfg config.StoreConfig) (*RedisBooks, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cannot ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisBooks(client, cfg.RedisPrefix, cfg.Timeout), nil
}

// NewRedisBooks wraps client. The store owns the client and closes it on Close.
func NewRedisBooks(client *redis.Client, prefix string, timeout time.Duration) *RedisBooks {
	if prefix == "" {
		prefix = "bookshelf"
	}
	return &RedisBooks{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedisBooks) seqKey() string { return s.prefix + ":seq" }
func (s *RedisBooks) idsKey() string { return s.prefix + ":ids" }
func (s *RedisBooks) bookKey(id int64) string {
	return s.prefix + ":book:" + strconv.FormatInt(id, 10)
}

func (s *RedisBooks) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisBooks) List(ctx context.Context) ([]book.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ids, err := s.client.ZRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]book.Book, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":book:" + id
	}
	docs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			// deleted between ZRANGE and MGET
			continue
		}
		var b book.Book
		if err := redisJSON.UnmarshalFromString(raw, &b); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *RedisBooks) GetByID(ctx context.Context, id int64) (book.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.get(ctx, s.client, id)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisBooks) get(ctx context.Context, c stringGetter, id int64) (book.Book, error) {
	raw, err := c.Get(ctx, s.bookKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return book.Book{}, book.ErrNotFound
	}
	if err != nil {
		return book.Book{}, err
	}
	var b book.Book
	if err := redisJSON.UnmarshalFromString(raw, &b); err != nil {
		return book.Book{}, fmt.Errorf("decode book %d: %w", id, err)
	}
	return b, nil
}

func (s *RedisBooks) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	return book.Lenient(s.GetByID(ctx, id))
}

func (s *RedisBooks) Create(ctx context.Context, b *book.Book) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return err
	}

	created := *b
	created.ID = id
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	doc, err := redisJSON.MarshalToString(created)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.bookKey(id), doc, 0)
	pipe.ZAdd(ctx, s.idsKey(), redis.Z{Score: float64(id), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	*b = created
	return nil
}

func (s *RedisBooks) Update(ctx context.Context, b *book.Book) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := s.bookKey(b.ID)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var updated book.Book
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			stored, err := s.get(ctx, tx, b.ID)
			if err != nil {
				return err
			}
			updated = *b
			updated.CreatedAt = stored.CreatedAt
			updated.UpdatedAt = s.now()
			doc, err := redisJSON.MarshalToString(updated)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, doc, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		*b = updated
		return nil
	}
}

func (s *RedisBooks) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.bookKey(id))
		pipe.ZRem(ctx, s.idsKey(), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (s *RedisBooks) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisBooks) Close() error {
	return s.client.Close()
}
