package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/book"
)

func strPtr(s string) *string { return &s }

// exerciseBackend runs the repository contract every backend must honour.
func exerciseBackend(t *testing.T, repo Backend) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	price := 85000.0
	first := &book.Book{Title: "Eating Clean", Author: "Inge Tumiwa-Bachrens", Price: &price}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &book.Book{
		Title:           "Laskar Pelangi",
		Author:          "Andrea Hirata",
		Publisher:       strPtr("Bentang Pustaka"),
		PublicationYear: strPtr("2005"),
		Cover:           strPtr("https://example.com/laskar.jpg"),
		Description:     strPtr("Ten children on Belitung."),
	}
	require.NoError(t, repo.Create(ctx, second))
	assert.Greater(t, second.ID, first.ID)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laskar Pelangi", got.Title)
	assert.Equal(t, "2005", *got.PublicationYear)
	assert.Nil(t, got.Price)
	assert.WithinDuration(t, second.CreatedAt, got.CreatedAt, time.Millisecond)

	got.Price = &price
	got.Description = nil
	require.NoError(t, repo.Update(ctx, &got))
	assert.Equal(t, second.ID, got.ID)
	assert.WithinDuration(t, second.CreatedAt, got.CreatedAt, time.Millisecond)

	reloaded, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Price)
	assert.Equal(t, 85000.0, *reloaded.Price)
	assert.Nil(t, reloaded.Description)
	assert.Equal(t, "Bentang Pustaka", *reloaded.Publisher)

	books, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, first.ID, books[0].ID)
	assert.Equal(t, second.ID, books[1].ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, book.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), book.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &book.Book{ID: first.ID, Title: "x", Author: "y"}), book.ErrNotFound)

	missing, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	third := &book.Book{Title: "Bumi", Author: "Tere Liye"}
	require.NoError(t, repo.Create(ctx, third))
	assert.Greater(t, third.ID, second.ID, "ids are never reused")

	fine := 12.345
	fourth := &book.Book{Title: "Bumi Manusia", Author: "Pramoedya Ananta Toer", Publisher: strPtr("Hasta Mitra"), Price: &fine}
	require.NoError(t, repo.Create(ctx, fourth))
	stored, err := repo.GetByID(ctx, fourth.ID)
	require.NoError(t, err)
	assertSameBook(t, stored, *fourth)
	require.NotNil(t, stored.Price)
	assert.Equal(t, 12.345, *stored.Price)

	fine = 0.005
	fourth.Price = &fine
	require.NoError(t, repo.Update(ctx, fourth))
	stored, err = repo.GetByID(ctx, fourth.ID)
	require.NoError(t, err)
	assertSameBook(t, stored, *fourth)
}

// assertSameBook compares two books field by field, allowing timestamps to
// differ by the precision the backend stores them with.
func assertSameBook(t *testing.T, want, got book.Book) {
	t.Helper()
	assert.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.WithinDuration(t, want.UpdatedAt, got.UpdatedAt, time.Millisecond)
	want.CreatedAt, want.UpdatedAt = time.Time{}, time.Time{}
	got.CreatedAt, got.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, want, got)
}
