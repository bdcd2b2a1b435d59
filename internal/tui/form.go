package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/bookshop/internal/catalog"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldPrice
	fieldCount
)

// bookForm is the admin "add a book" form.
type bookForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newBookForm() bookForm {
	var f bookForm
	placeholders := [fieldCount]string{"Title", "Description", "Price"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		f.inputs[i] = ti
	}
	f.inputs[fieldPrice].CharLimit = 16
	return f
}

// reset clears the form and focuses the first field.
func (f *bookForm) reset() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.err = ""
	f.focus = fieldTitle
	return f.inputs[fieldTitle].Focus()
}

func (f *bookForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *bookForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// value reads the form. Field checks are left to catalog.NewBook.Validate;
// only the price parse happens here.
func (f *bookForm) value() (catalog.NewBook, error) {
	raw := strings.TrimSpace(f.inputs[fieldPrice].Value())
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return catalog.NewBook{}, fmt.Errorf("%w: price %q is not a number", catalog.ErrInvalidBook, raw)
	}
	nb := catalog.NewBook{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		Price:       price,
	}
	return nb, nb.Validate()
}

func (f bookForm) view() string {
	labels := [fieldCount]string{"Title", "Description", "Price"}
	var b strings.Builder
	for i, in := range f.inputs {
		fmt.Fprintf(&b, "%s\n%s\n", labels[i], in.View())
	}
	return strings.TrimRight(b.String(), "\n")
}
