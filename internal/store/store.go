package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
)

// Backend is a book repository that can be health-checked and released.
type Backend interface {
	book.Repository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*book.MemoryRepo)(nil)
	_ Backend = (*book.PostgresRepo)(nil)
	_ Backend = (*GormBooks)(nil)
	_ Backend = (*SQLiteBooks)(nil)
	_ Backend = (*RedisBooks)(nil)
)

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return book.NewMemoryRepo(), nil
	case config.DriverPostgres:
		pool, err := OpenPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return book.NewPostgresRepo(pool, cfg.Timeout), nil
	case config.DriverGorm:
		return OpenGorm(cfg.DSN, cfg.Timeout, logger)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, cfg.Timeout)
	case config.DriverRedis:
		return OpenRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// OpenPool creates a pgx pool and checks that the database answers.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", RedactDSN(dsn), err)
	}
	return pool, nil
}

// RedactDSN hides the credentials of a URL-style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
