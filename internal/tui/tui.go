// Package tui is the interactive shop: catalog, cart, admin form and mock checkout.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Makepad-fr/bookshop/internal/app"
	"github.com/Makepad-fr/bookshop/internal/auth"
	"github.com/Makepad-fr/bookshop/internal/checkout"
	"github.com/Makepad-fr/bookshop/internal/ui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeBrowse mode = iota
	modeCart
	modeAdmin
	modeReceipt
)

// slotChangedMsg arrives when the cart slot was changed outside the program.
type slotChangedMsg struct{}

var (
	buyBind    = key.NewBinding(key.WithKeys("b", "enter"), key.WithHelp("b", "buy"))
	cartBind   = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cart"))
	adminBind  = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add book"))
	removeBind = key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove one"))
	payBind    = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pay"))
	backBind   = key.NewBinding(key.WithKeys("esc", "c"), key.WithHelp("esc", "back"))
)

// Model is the Bubble Tea model for the shop.
type Model struct {
	ctx     context.Context
	shop    *app.Shop
	session *auth.Session
	watch   <-chan struct{}

	mode    mode
	books   list.Model
	lines   list.Model
	form    bookForm
	receipt *checkout.Receipt

	status    string
	statusErr bool

	width, height int
}

// New builds the model. watch may be nil when the slot cannot be watched.
func New(ctx context.Context, shop *app.Shop, session *auth.Session, watch <-chan struct{}) Model {
	books := list.New(nil, bookDelegate{}, 80, 20)
	books.SetShowHelp(true)
	books.SetShowStatusBar(true)
	books.SetFilteringEnabled(true)
	books.Styles.Title = ui.TitleStyle
	books.Styles.HelpStyle = ui.HelpStyle
	books.FilterInput.Prompt = "/ "
	books.SetStatusBarItemName("book", "books")
	books.AdditionalShortHelpKeys = func() []key.Binding {
		keys := []key.Binding{buyBind, cartBind, payBind}
		if session != nil && session.Admin {
			keys = append(keys, adminBind)
		}
		return keys
	}
	books.AdditionalFullHelpKeys = books.AdditionalShortHelpKeys

	lines := list.New(nil, lineDelegate{}, 80, 20)
	lines.Title = "Your cart"
	lines.SetShowHelp(true)
	lines.SetFilteringEnabled(false)
	lines.Styles.Title = ui.TitleStyle
	lines.Styles.HelpStyle = ui.HelpStyle
	lines.SetStatusBarItemName("line", "lines")
	lines.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{removeBind, payBind, backBind} }
	lines.AdditionalFullHelpKeys = lines.AdditionalShortHelpKeys

	m := Model{
		ctx:     ctx,
		shop:    shop,
		session: session,
		watch:   watch,
		books:   books,
		lines:   lines,
		form:    newBookForm(),
		width:   80,
		height:  24,
	}
	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, shop *app.Shop, session *auth.Session, watch <-chan struct{}) error {
	p := tea.NewProgram(New(ctx, shop, session, watch), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.watch)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return slotChangedMsg{}
	}
}

// refresh rebuilds both lists from the cart and catalog.
func (m *Model) refresh() tea.Cmd {
	m.books.Title = m.header()
	c1 := m.books.SetItems(bookItems(m.shop.Catalog.List(), m.shop.Cart.Quantity))
	c2 := m.lines.SetItems(lineItems(m.shop.Cart.Lines()))
	m.lines.Title = fmt.Sprintf("Your cart  %s %s", ui.AccentStyle.Render("Total"), ui.Money(m.shop.Cart.Total()))
	return tea.Batch(c1, c2)
}

func (m Model) header() string {
	parts := []string{"Bookshop"}
	if m.session != nil {
		parts = append(parts, "Hello, "+m.session.Username)
	}
	parts = append(parts, ui.Badge(m.shop.Cart.Count()))
	return strings.Join(parts, "   ")
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.books.SetSize(msg.Width-4, msg.Height-4)
		m.lines.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case slotChangedMsg:
		m.shop.Cart.Reload(m.ctx)
		m.setStatus("cart changed on disk, reloaded", false)
		return m, tea.Batch(m.refresh(), waitForChange(m.watch))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.mode {
	case modeAdmin:
		return m.updateAdmin(msg)
	case modeCart:
		return m.updateCart(msg)
	case modeReceipt:
		if _, ok := msg.(tea.KeyMsg); ok {
			// paying closes the cart, like the web shop did
			m.receipt = nil
			m.mode = modeBrowse
			return m, m.refresh()
		}
		return m, nil
	}
	return m.updateBrowse(msg)
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && m.books.FilterState() != list.Filtering {
		switch {
		case k.String() == "q":
			return m, tea.Quit
		case key.Matches(k, buyBind):
			it, ok := m.books.SelectedItem().(bookItem)
			if !ok {
				return m, nil
			}
			if err := m.shop.Cart.Add(m.ctx, it.book); err != nil {
				m.setStatus("save: "+err.Error(), true)
			} else {
				m.setStatus("added "+it.book.Title, false)
			}
			return m, m.refresh()
		case key.Matches(k, cartBind):
			m.mode = modeCart
			m.setStatus("", false)
			return m, m.refresh()
		case key.Matches(k, payBind):
			return m.pay()
		case key.Matches(k, adminBind):
			if m.session == nil || !m.session.Admin {
				m.setStatus("only the admin can add books (bookshop auth login Admin)", true)
				return m, nil
			}
			m.mode = modeAdmin
			m.setStatus("", false)
			return m, m.form.reset()
		}
	}
	var cmd tea.Cmd
	m.books, cmd = m.books.Update(msg)
	return m, cmd
}

func (m Model) updateCart(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case k.String() == "q":
			return m, tea.Quit
		case key.Matches(k, backBind):
			m.mode = modeBrowse
			return m, m.refresh()
		case key.Matches(k, removeBind):
			it, ok := m.lines.SelectedItem().(lineItem)
			if !ok {
				return m, nil
			}
			if err := m.shop.Cart.Remove(m.ctx, it.line.ID); err != nil {
				m.setStatus("save: "+err.Error(), true)
			} else {
				m.setStatus("removed one "+it.line.Title, false)
			}
			return m, m.refresh()
		case key.Matches(k, payBind):
			return m.pay()
		}
	}
	var cmd tea.Cmd
	m.lines, cmd = m.lines.Update(msg)
	return m, cmd
}

func (m Model) updateAdmin(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.form.update(msg)
	}
	switch k.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	case "enter":
		nb, err := m.form.value()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		b, err := m.shop.Catalog.Append(m.ctx, nb)
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.mode = modeBrowse
		m.setStatus(fmt.Sprintf("book added: #%d %s", b.ID, b.Title), false)
		return m, m.refresh()
	}
	return m, m.form.update(msg)
}

func (m Model) pay() (tea.Model, tea.Cmd) {
	r, err := m.shop.Checkout.Pay(m.ctx)
	if err != nil && r == nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if err != nil {
		m.setStatus(err.Error(), true)
	}
	m.receipt = r
	m.mode = modeReceipt
	return m, m.refresh()
}

func (m Model) View() string {
	var content string
	switch m.mode {
	case modeCart:
		if m.shop.Cart.Len() == 0 {
			content = ui.TitleStyle.Render("Your cart") + "\n\n" + ui.MutedStyle.Render("Cart is empty") +
				"\n\n" + ui.HelpStyle.Render("esc back • q quit")
		} else {
			content = m.lines.View()
		}
	case modeAdmin:
		title := ui.TitleStyle.Render("Admin panel: add a book")
		if m.form.err != "" {
			title += "  " + ui.ErrorStyle.Render(m.form.err)
		}
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ui.Current().Muted).Padding(0, 1)
		content = title + "\n" + bar.Render(m.form.view()) + "\n" +
			ui.HelpStyle.Render("tab next field • enter save • esc cancel")
	case modeReceipt:
		content = receiptView(m.receipt, m.shop.Checkout.Policy())
	default:
		content = m.books.View()
	}
	if m.status != "" {
		style := ui.SuccessStyle
		if m.statusErr {
			style = ui.ErrorStyle
		}
		content += "\n" + style.Render(m.status)
	}
	return ui.PanelString(content)
}

func receiptView(r *checkout.Receipt, policy checkout.Policy) string {
	if r == nil {
		return ""
	}
	lines := []string{
		ui.TitleStyle.Render("Payment information"),
		"",
		"Redirecting to PayPal...",
		fmt.Sprintf("Account:  %s", r.Account),
		fmt.Sprintf("Amount:   %s", ui.Money(r.Amount)),
		fmt.Sprintf("Items:    %d", r.Items),
		ui.MutedStyle.Render("Receipt " + r.ID),
		"",
	}
	if r.Cleared {
		lines = append(lines, ui.MutedStyle.Render("cart cleared"))
	} else {
		lines = append(lines, ui.MutedStyle.Render(fmt.Sprintf("cart kept (checkout policy %q)", policy)))
	}
	lines = append(lines, ui.HelpStyle.Render("press any key"))
	return strings.Join(lines, "\n")
}
