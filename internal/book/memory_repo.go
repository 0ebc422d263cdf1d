package book

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps books in process memory. Ids are never reused.
type MemoryRepo struct {
	mu     sync.RWMutex
	books  map[int64]Book
	nextID int64
	now    func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo seeded with the provided books.
func NewMemoryRepo(seed ...Book) *MemoryRepo {
	r := &MemoryRepo{
		books:  make(map[int64]Book, len(seed)),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, b := range seed {
		r.books[b.ID] = b
		if b.ID >= r.nextID {
			r.nextID = b.ID + 1
		}
	}
	return r
}

func (r *MemoryRepo) List(_ context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id int64) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (*Book, error) {
	return Lenient(r.GetByID(ctx, id))
}

func (r *MemoryRepo) Create(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b.ID = r.nextID
	b.CreatedAt = now
	b.UpdatedAt = now
	r.nextID++

	r.books[b.ID] = *b
	return nil
}

func (r *MemoryRepo) Update(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.books[b.ID]
	if !ok {
		return ErrNotFound
	}
	b.CreatedAt = stored.CreatedAt
	b.UpdatedAt = r.now()
	r.books[b.ID] = *b
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	delete(r.books, id)
	return nil
}

// Ping always succeeds.
func (r *MemoryRepo) Ping(context.Context) error { return nil }

// Close is a no-op.
func (r *MemoryRepo) Close() error { return nil }
