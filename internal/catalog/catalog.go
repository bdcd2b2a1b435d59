// Package catalog owns the list of books for sale.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Makepad-fr/bookshop/internal/model"
	"github.com/Makepad-fr/bookshop/internal/store"
	"github.com/sahilm/fuzzy"
)

var (
	ErrInvalidBook  = errors.New("invalid book")
	ErrBookNotFound = errors.New("book not found")
)

// Seed is the catalog a fresh shop starts with.
var Seed = []model.Book{
	{
		ID:          1,
		Title:       "Example Book 1",
		Description: "This is the first example book.",
		Price:       10,
	},
}

// NewBook is what the admin form submits. The id is assigned on Append.
type NewBook struct {
	Title       string
	Description string
	Price       float64
}

// Validate checks the admin form rules: title and description are required,
// price is a finite non-negative number.
func (b NewBook) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	}
	if strings.TrimSpace(b.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidBook)
	}
	if math.IsNaN(b.Price) || math.IsInf(b.Price, 0) || b.Price < 0 {
		return fmt.Errorf("%w: price must be a number >= 0", ErrInvalidBook)
	}
	return nil
}

// Catalog is the ordered book collection, persisted under the "books" key.
type Catalog struct {
	slot   store.Slot
	logger *slog.Logger
	books  []model.Book
}

// Open loads the catalog. A missing or unreadable collection falls back to Seed.
func Open(ctx context.Context, slot store.Slot, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{slot: slot, logger: logger}
	c.books = c.load(ctx)
	return c
}

func (c *Catalog) load(ctx context.Context) []model.Book {
	seed := append([]model.Book(nil), Seed...)
	data, err := c.slot.Get(ctx, store.KeyBooks)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("read catalog", slog.String("error", err.Error()))
		}
		return seed
	}
	var books []model.Book
	if err := json.Unmarshal(data, &books); err != nil {
		c.logger.Warn("discarding saved catalog", slog.String("error", err.Error()))
		return seed
	}
	if len(books) == 0 {
		return seed
	}
	seen := make(map[int64]struct{}, len(books))
	for _, b := range books {
		if _, dup := seen[b.ID]; dup {
			c.logger.Warn("discarding saved catalog", slog.String("error", fmt.Sprintf("duplicate book id %d", b.ID)))
			return seed
		}
		seen[b.ID] = struct{}{}
	}
	return books
}

// List returns the books in insertion order.
func (c *Catalog) List() []model.Book {
	out := make([]model.Book, len(c.books))
	copy(out, c.books)
	return out
}

// Get looks a book up by id.
func (c *Catalog) Get(id int64) (model.Book, error) {
	for _, b := range c.books {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Book{}, fmt.Errorf("%w: %d", ErrBookNotFound, id)
}

// Append validates nb, gives it the next free id and persists the catalog.
// Ids are max(existing)+1 so they stay unique even if books were removed by hand.
func (c *Catalog) Append(ctx context.Context, nb NewBook) (model.Book, error) {
	if err := nb.Validate(); err != nil {
		return model.Book{}, err
	}
	b := model.Book{
		ID:          c.nextID(),
		Title:       strings.TrimSpace(nb.Title),
		Description: strings.TrimSpace(nb.Description),
		Price:       nb.Price,
	}
	next := append(c.List(), b)

	data, err := json.Marshal(next)
	if err != nil {
		return model.Book{}, fmt.Errorf("json marshal: %w", err)
	}
	if err := c.slot.Set(ctx, store.KeyBooks, data); err != nil {
		return model.Book{}, fmt.Errorf("save catalog: %w", err)
	}
	c.books = next
	c.logger.Info("book added", slog.Int64("id", b.ID), slog.String("title", b.Title))
	return b, nil
}

func (c *Catalog) nextID() int64 {
	var top int64
	for _, b := range c.books {
		if b.ID > top {
			top = b.ID
		}
	}
	return top + 1
}

type searchSource []model.Book

func (s searchSource) String(i int) string { return s[i].Title + " " + s[i].Description }
func (s searchSource) Len() int            { return len(s) }

// Search fuzzy-matches query against titles and descriptions, best match first.
// An empty query returns the whole catalog.
func (c *Catalog) Search(query string) []model.Book {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.List()
	}
	matches := fuzzy.FindFrom(query, searchSource(c.books))
	out := make([]model.Book, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.books[m.Index])
	}
	return out
}
