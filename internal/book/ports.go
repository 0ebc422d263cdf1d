package book

import (
	"context"
	"errors"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	// List returns every book in ascending id order.
	List(ctx context.Context) ([]Book, error)
	// GetByID returns ErrNotFound when the book does not exist.
	GetByID(ctx context.Context, id int64) (Book, error)
	// FindByID returns nil, nil when the book does not exist.
	FindByID(ctx context.Context, id int64) (*Book, error)
	// Create assigns the id and timestamps of b.
	Create(ctx context.Context, b *Book) error
	// Update overwrites the stored book with b and refreshes UpdatedAt.
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}

// Validator checks payloads before they reach the repository.
type Validator interface {
	ValidateCreate(in Input) error
	// ValidateUpdate only checks the keys present in the payload.
	ValidateUpdate(in Input) error
}

// Lenient turns a strict lookup result into a lenient one.
func Lenient(b Book, err error) (*Book, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
