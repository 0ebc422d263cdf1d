package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookshelf/internal/book"
)

// BookModel is the GORM mapping of the books table.
type BookModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	Title           string    `gorm:"type:text;not null"`
	Author          string    `gorm:"type:text;not null"`
	Publisher       *string   `gorm:"type:text"`
	PublicationYear *string   `gorm:"type:text"`
	Cover           *string   `gorm:"type:text"`
	Description     *string   `gorm:"type:text"`
	Price           *float64  `gorm:"type:double precision"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName shares the table created by the SQL migrations.
func (BookModel) TableName() string { return "books" }

// GormBooks implements book.Repository using GORM + Postgres.
type GormBooks struct {
	db      *gorm.DB
	timeout time.Duration
}

// OpenGorm opens the DB and runs auto-migrations.
func OpenGorm(dsn string, timeout time.Duration, logger *slog.Logger) (*GormBooks, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gormLog := gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db (%s): %w", RedactDSN(dsn), err)
	}
	if err := db.AutoMigrate(&BookModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return NewGormBooks(db, timeout), nil
}

// NewGormBooks wraps an open GORM handle.
func NewGormBooks(db *gorm.DB, timeout time.Duration) *GormBooks {
	return &GormBooks{db: db, timeout: timeout}
}

func (s *GormBooks) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *GormBooks) List(ctx context.Context) ([]book.Book, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var models []BookModel
	if err := db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]book.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

func (s *GormBooks) GetByID(ctx context.Context, id int64) (book.Book, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var model BookModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return bookFromModel(model), nil
}

func (s *GormBooks) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	return book.Lenient(s.GetByID(ctx, id))
}

func (s *GormBooks) Create(ctx context.Context, b *book.Book) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	model := bookToModel(*b)
	model.ID = 0
	now := time.Now().UTC()
	model.CreatedAt = now
	model.UpdatedAt = now
	if err := db.Create(&model).Error; err != nil {
		return err
	}

	var stored BookModel
	if err := db.Take(&stored, "id = ?", model.ID).Error; err != nil {
		return err
	}
	*b = bookFromModel(stored)
	return nil
}

func (s *GormBooks) Update(ctx context.Context, b *book.Book) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	res := db.Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"title":            b.Title,
			"author":           b.Author,
			"publisher":        b.Publisher,
			"publication_year": b.PublicationYear,
			"cover":            b.Cover,
			"description":      b.Description,
			"price":            b.Price,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return book.ErrNotFound
	}

	var model BookModel
	if err := db.First(&model, "id = ?", b.ID).Error; err != nil {
		return err
	}
	*b = bookFromModel(model)
	return nil
}

func (s *GormBooks) Delete(ctx context.Context, id int64) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	res := db.Delete(&BookModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (s *GormBooks) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormBooks) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func bookToModel(b book.Book) BookModel {
	return BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Cover:           b.Cover,
		Description:     b.Description,
		Price:           b.Price,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) book.Book {
	return book.Book{
		ID:              m.ID,
		Title:           m.Title,
		Author:          m.Author,
		Publisher:       m.Publisher,
		PublicationYear: m.PublicationYear,
		Cover:           m.Cover,
		Description:     m.Description,
		Price:           m.Price,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
