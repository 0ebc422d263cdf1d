package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/httpx"
	"bookshelf/internal/store"
	"bookshelf/internal/validation"
)

func main() {
	count := flag.Int("count", 0, "Number of generated books to add after the samples")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := httpx.InitLogger(os.Stdout, cfg.LogLevel)
	if cfg.Store.Driver == config.DriverMemory {
		logger.Warn("seeding the memory store has no lasting effect; set STORE_DRIVER")
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	svc := book.NewService(backend, validation.New())
	inserted, err := seed(ctx, svc, *count, rand.New(rand.NewSource(1)))
	if err != nil {
		logger.Error("seed failed", "inserted", inserted, "error", err)
		os.Exit(1)
	}

	total, err := svc.List(ctx)
	if err != nil {
		logger.Error("count books", "error", err)
		os.Exit(1)
	}
	logger.Info("seed complete", "inserted", inserted, "total", len(total))
}

func ptr[T any](v T) *T { return &v }

func samples() []book.Input {
	return []book.Input{
		{
			Title:  ptr("Eating Clean"),
			Author: ptr("Inge Tumiwa-Bachrens"),
			Price:  ptr(85000.0),
		},
		{
			Title:           ptr("Laskar Pelangi"),
			Author:          ptr("Andrea Hirata"),
			Publisher:       ptr("Bentang Pustaka"),
			PublicationYear: ptr(book.Year("2005")),
			Description:     ptr("Ten children and their teachers at a village school on Belitung."),
			Price:           ptr(79000.0),
		},
		{
			Title:           ptr("Bumi Manusia"),
			Author:          ptr("Pramoedya Ananta Toer"),
			Publisher:       ptr("Hasta Mitra"),
			PublicationYear: ptr(book.Year("1980")),
			Price:           ptr(132000.0),
		},
	}
}

// seed creates the sample books and then count generated ones through the
// service, so every record passes validation.
func seed(ctx context.Context, svc *book.Service, count int, rng *rand.Rand) (int, error) {
	inputs := samples()
	for i := 0; i < count; i++ {
		inputs = append(inputs, generated(i, rng))
	}

	inserted := 0
	for _, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			return inserted, fmt.Errorf("create %q: %w", *in.Title, err)
		}
		inserted++
		if inserted%1000 == 0 {
			slog.Info("seeding", "inserted", inserted, "of", len(inputs))
		}
	}
	return inserted, nil
}

func generated(i int, rng *rand.Rand) book.Input {
	publishers := []string{"Gramedia", "Mizan", "Bentang Pustaka", "Erlangga", "Penguin", "HarperCollins"}
	authors := []string{"Tere Liye", "Dee Lestari", "Eka Kurniawan", "Leila S. Chudori", "Ayu Utami"}

	year := book.Year(fmt.Sprintf("%d", 1950+rng.Intn(75)))
	return book.Input{
		Title:           ptr(fmt.Sprintf("Book Title %d - %s", i+1, randomWord(rng))),
		Author:          ptr(authors[rng.Intn(len(authors))]),
		Publisher:       ptr(publishers[rng.Intn(len(publishers))]),
		PublicationYear: &year,
		Description:     ptr(fmt.Sprintf("This is a book about %s.", randomWord(rng))),
		Price:           ptr(float64(25000 + rng.Intn(200)*1000)),
	}
}

func randomWord(rng *rand.Rand) string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rng.Intn(len(words))]
}
