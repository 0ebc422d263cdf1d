package book

import (
	"context"
	"errors"
	"fmt"
)

// Service provides book-related business logic.
type Service struct {
	repo      Repository
	validator Validator
}

// NewService creates a new book service.
func NewService(repo Repository, validator Validator) *Service {
	return &Service{repo: repo, validator: validator}
}

// List returns all books in store order.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// Create validates the input and stores a new book. Any store failure is
// reported as a validation error carrying the cause.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	if err := s.validator.ValidateCreate(in); err != nil {
		return Book{}, asValidation(err)
	}

	var b Book
	in.Apply(&b)
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, invalidData(err)
	}
	return b, nil
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, notFound(id, err)
		}
		return Book{}, err
	}
	return b, nil
}

// Update merges the present fields of in onto the stored book.
//
// The lookup is lenient: a missing book is not a 404 here but a failed
// write, like every other error on this path.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Book, error) {
	if id == 0 {
		return Book{}, NewValidationError("Invalid id", nil)
	}
	if err := s.validator.ValidateUpdate(in); err != nil {
		return Book{}, asValidation(err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Book{}, invalidData(err)
	}
	if current == nil {
		return Book{}, invalidData(fmt.Errorf("no book with id %d", id))
	}

	in.Apply(current)
	if err := s.repo.Update(ctx, current); err != nil {
		return Book{}, invalidData(err)
	}
	return *current, nil
}

// Delete removes a book. Deleting an absent book is a not-found error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(id, err)
		}
		return err
	}
	return nil
}

func asValidation(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return e
	}
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}
