package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Makepad-fr/bookshop/internal/model"
	"github.com/Makepad-fr/bookshop/internal/ui"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// bookItem adapts a catalog book to bubbles/list.Item
type bookItem struct {
	book   model.Book
	inCart int
}

func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string { return i.book.Description }
func (i bookItem) FilterValue() string { return i.book.Title + " " + i.book.Description }

// lineItem adapts a cart line to bubbles/list.Item
type lineItem struct {
	line model.CartLine
}

func (i lineItem) Title() string       { return i.line.Title }
func (i lineItem) Description() string { return "" }
func (i lineItem) FilterValue() string { return i.line.Title }

// Two-line rows: title/price/in-cart, then the description.
type bookDelegate struct{}

func (d bookDelegate) Height() int                               { return 2 }
func (d bookDelegate) Spacing() int                              { return 1 }
func (d bookDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d bookDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(bookItem)
	if !ok {
		return
	}
	prefix := "  "
	title := ui.TitleStyle.Render(it.book.Title)
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
	}
	head := fmt.Sprintf("%s%s  %s", prefix, title, ui.AccentStyle.Render(ui.Money(it.book.Price)))
	if it.inCart > 0 {
		head += "  " + ui.SuccessStyle.Render(fmt.Sprintf("×%d in cart", it.inCart))
	}
	desc := ui.Truncate(strings.TrimSpace(it.book.Description), max(m.Width()-4, 10))
	fmt.Fprintf(w, "%s\n    %s", head, ui.MutedStyle.Render(desc))
}

// Single-line cart rows: "Title - 2 pcs  $20".
type lineDelegate struct{}

func (d lineDelegate) Height() int                               { return 1 }
func (d lineDelegate) Spacing() int                              { return 0 }
func (d lineDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d lineDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(lineItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s - %d pcs  %s", prefix, it.line.Title, it.line.Quantity,
		ui.AccentStyle.Render(ui.Money(it.line.Subtotal())))
}

func bookItems(books []model.Book, qty func(int64) int) []list.Item {
	out := make([]list.Item, 0, len(books))
	for _, b := range books {
		out = append(out, bookItem{book: b, inCart: qty(b.ID)})
	}
	return out
}

func lineItems(lines []model.CartLine) []list.Item {
	out := make([]list.Item, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineItem{line: l})
	}
	return out
}
