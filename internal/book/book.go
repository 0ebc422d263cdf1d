package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no book has the requested id.
var ErrNotFound = errors.New("book not found")

// Book represents a book entity.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Publisher       *string   `json:"publisher"`
	PublicationYear *string   `json:"publication_year"`
	Cover           *string   `json:"cover"`
	Description     *string   `json:"description"`
	Price           *float64  `json:"price"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
