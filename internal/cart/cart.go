// Package cart holds the shopping cart and keeps its durable copy in step.
//
// Lines are values: every transition builds a new slice and the previous one
// is never modified. After each Add or Remove the whole cart is written to
// the "cart" slot.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Makepad-fr/bookshop/internal/model"
	"github.com/Makepad-fr/bookshop/internal/store"
)

// ErrCorrupt marks slot data that decodes but breaks the cart invariants.
var ErrCorrupt = errors.New("cart: corrupt data")

// AddLine returns lines with one more copy of book: the matching line gets
// quantity+1, otherwise {book, 1} is appended.
func AddLine(lines []model.CartLine, book model.Book) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines)+1)
	found := false
	for _, l := range lines {
		if l.ID == book.ID {
			l.Quantity++
			found = true
		}
		out = append(out, l)
	}
	if !found {
		out = append(out, model.CartLine{Book: book, Quantity: 1})
	}
	return out
}

// RemoveLine returns lines with one copy of id taken out. A line at quantity 1
// is dropped. Unknown ids leave the result equal to lines.
func RemoveLine(lines []model.CartLine, id int64) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == id {
			if l.Quantity <= 1 {
				continue
			}
			l.Quantity--
		}
		out = append(out, l)
	}
	return out
}

// Encode serializes lines in the slot format. A nil cart encodes as [].
func Encode(lines []model.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []model.CartLine{}
	}
	return json.Marshal(lines)
}

// Decode parses slot data. Duplicate ids or quantities below 1 yield ErrCorrupt.
func Decode(data []byte) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d has quantity %d", ErrCorrupt, l.ID, l.Quantity)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate line %d", ErrCorrupt, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return lines, nil
}

// Store owns the current cart. It is driven from a single goroutine and does no locking.
type Store struct {
	slot   store.Slot
	logger *slog.Logger
	lines  []model.CartLine
}

// Open loads the saved cart from slot. A missing or unreadable cart is not an
// error: the store starts empty and the problem is logged.
func Open(ctx context.Context, slot store.Slot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{slot: slot, logger: logger}
	s.lines = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []model.CartLine {
	data, err := s.slot.Get(ctx, store.KeyCart)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("read saved cart", slog.String("error", err.Error()))
		}
		return []model.CartLine{}
	}
	lines, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding saved cart", slog.String("error", err.Error()))
		return []model.CartLine{}
	}
	return lines
}

// Reload replaces the in-memory cart with what the slot holds now.
func (s *Store) Reload(ctx context.Context) {
	s.lines = s.load(ctx)
}

// Add puts one copy of book in the cart. The state change always happens;
// the returned error only reports a failed durable write.
func (s *Store) Add(ctx context.Context, book model.Book) error {
	s.lines = AddLine(s.lines, book)
	s.logger.Debug("cart add", slog.Int64("id", book.ID), slog.Int("lines", len(s.lines)))
	return s.save(ctx)
}

// Remove takes one copy of id out of the cart. See Add for the error contract.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.lines = RemoveLine(s.lines, id)
	s.logger.Debug("cart remove", slog.Int64("id", id), slog.Int("lines", len(s.lines)))
	return s.save(ctx)
}

// Clear empties the cart and persists the empty cart.
func (s *Store) Clear(ctx context.Context) error {
	s.lines = []model.CartLine{}
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	data, err := Encode(s.lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.slot.Set(ctx, store.KeyCart, data); err != nil {
		s.logger.Error("save cart", slog.String("error", err.Error()))
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Lines returns a copy of the current lines in first-added order.
func (s *Store) Lines() []model.CartLine {
	out := make([]model.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len is the number of distinct lines.
func (s *Store) Len() int { return len(s.lines) }

// Count is the total quantity across lines (the cart badge).
func (s *Store) Count() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Total is the sum of line subtotals.
func (s *Store) Total() float64 {
	var t float64
	for _, l := range s.lines {
		t += l.Subtotal()
	}
	return t
}

// Quantity reports how many copies of id are in the cart.
func (s *Store) Quantity(id int64) int {
	for _, l := range s.lines {
		if l.ID == id {
			return l.Quantity
		}
	}
	return 0
}
