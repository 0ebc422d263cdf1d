package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"bookshelf/internal/book"
)

const sqliteBooksTable = "books"

// AUTOINCREMENT keeps sqlite from handing out the id of a deleted row again.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS books (
		id integer primary key autoincrement not null,
		title text not null,
		author text not null,
		publisher text,
		publication_year text,
		cover text,
		description text,
		price real,
		created_at timestamp not null,
		updated_at timestamp not null
	);
`

var sqliteDialect = goqu.Dialect("sqlite3")

var sqliteColumns = []any{
	"id", "title", "author", "publisher", "publication_year",
	"cover", "description", "price", "created_at", "updated_at",
}

type sqliteBook struct {
	ID              int64     `db:"id"`
	Title           string    `db:"title"`
	Author          string    `db:"author"`
	Publisher       *string   `db:"publisher"`
	PublicationYear *string   `db:"publication_year"`
	Cover           *string   `db:"cover"`
	Description     *string   `db:"description"`
	Price           *float64  `db:"price"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r sqliteBook) toBook() book.Book {
	return book.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		Cover:           r.Cover,
		Description:     r.Description,
		Price:           r.Price,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// SQLiteBooks stores books in a sqlite file. Queries are built with goqu
// and run through sqlx.
type SQLiteBooks struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string, timeout time.Duration) (*SQLiteBooks, error) {
	db, err := sqlx.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite serialises writers; one connection also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteBooks{
		db:      db,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return "file:" + path + "?mode=rwc&_busy_timeout=5000&_journal_mode=WAL"
}

func (s *SQLiteBooks) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQLiteBooks) List(ctx context.Context) ([]book.Book, error) {
	query, args, err := sqliteDialect.From(sqliteBooksTable).Prepared(true).
		Select(sqliteColumns...).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []sqliteBook
	if err := s.db.SelectContext(timeoutCtx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]book.Book, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toBook())
	}
	return out, nil
}

func (s *SQLiteBooks) GetByID(ctx context.Context, id int64) (book.Book, error) {
	query, args, err := sqliteDialect.From(sqliteBooksTable).Prepared(true).
		Select(sqliteColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("build get query: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row sqliteBook
	if err := s.db.GetContext(timeoutCtx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return row.toBook(), nil
}

func (s *SQLiteBooks) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	return book.Lenient(s.GetByID(ctx, id))
}

func (s *SQLiteBooks) Create(ctx context.Context, b *book.Book) error {
	now := s.now()
	query, args, err := sqliteDialect.Insert(sqliteBooksTable).Prepared(true).
		Rows(goqu.Record{
			"title":            b.Title,
			"author":           b.Author,
			"publisher":        b.Publisher,
			"publication_year": b.PublicationYear,
			"cover":            b.Cover,
			"description":      b.Description,
			"price":            b.Price,
			"created_at":       now,
			"updated_at":       now,
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stored, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*b = stored
	return nil
}

func (s *SQLiteBooks) Update(ctx context.Context, b *book.Book) error {
	query, args, err := sqliteDialect.Update(sqliteBooksTable).Prepared(true).
		Set(goqu.Record{
			"title":            b.Title,
			"author":           b.Author,
			"publisher":        b.Publisher,
			"publication_year": b.PublicationYear,
			"cover":            b.Cover,
			"description":      b.Description,
			"price":            b.Price,
			"updated_at":       s.now(),
		}).
		Where(goqu.C("id").Eq(b.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return book.ErrNotFound
	}

	stored, err := s.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = stored
	return nil
}

func (s *SQLiteBooks) Delete(ctx context.Context, id int64) error {
	query, args, err := sqliteDialect.Delete(sqliteBooksTable).Prepared(true).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (s *SQLiteBooks) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteBooks) Close() error {
	return s.db.Close()
}
