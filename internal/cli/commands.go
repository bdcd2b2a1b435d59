package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Makepad-fr/bookshop/internal/auth"
	"github.com/Makepad-fr/bookshop/internal/catalog"
	"github.com/Makepad-fr/bookshop/internal/checkout"
	"github.com/Makepad-fr/bookshop/internal/model"
	"github.com/Makepad-fr/bookshop/internal/store"
	"github.com/Makepad-fr/bookshop/internal/store/jsonstore"
	"github.com/Makepad-fr/bookshop/internal/tui"
	"github.com/Makepad-fr/bookshop/internal/ui"
	"github.com/spf13/cobra"
)

// -------------- catalog ----------------

func (e *env) booksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			e.p.Panel(bookLines("Books", shop.Catalog.List(), shop.Cart.Quantity))
			return nil
		},
	}

	find := &cobra.Command{
		Use:   "find <query...>",
		Short: "Fuzzy-search titles and descriptions",
		Args:  minArgs(1, "books find <query...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			q := strings.Join(args, " ")
			found := shop.Catalog.Search(q)
			if len(found) == 0 {
				e.p.Hint(fmt.Sprintf("no books match %q", q))
				return nil
			}
			e.p.Panel(bookLines(fmt.Sprintf("Books matching %q", q), found, shop.Cart.Quantity))
			return nil
		},
	}

	var nb struct {
		title, description, price string
	}
	add := &cobra.Command{
		Use:   "add --title <t> --description <d> --price <p>",
		Short: "Add a book to the catalog (admin only)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			sess, err := shop.Auth.Current(cmd.Context())
			if err != nil {
				return err
			}
			if sess == nil || !sess.Admin {
				return errors.New("only the admin can add books. Run: bookshop auth login Admin")
			}
			price, err := strconv.ParseFloat(strings.TrimSpace(nb.price), 64)
			if err != nil {
				return usagef("add: price %q is not a number", nb.price)
			}
			b, err := shop.Catalog.Append(cmd.Context(), catalog.NewBook{
				Title:       nb.title,
				Description: nb.description,
				Price:       price,
			})
			if errors.Is(err, catalog.ErrInvalidBook) {
				return usageError{msg: "add: " + err.Error()}
			}
			if err != nil {
				return err
			}
			e.p.OK(fmt.Sprintf("book added: #%d %s", b.ID, b.Title))
			return nil
		},
	}
	add.Flags().StringVar(&nb.title, "title", "", "book title")
	add.Flags().StringVar(&nb.description, "description", "", "book description")
	add.Flags().StringVar(&nb.price, "price", "", "book price")

	cmd.AddCommand(find, add)
	return cmd
}

func bookLines(title string, books []model.Book, inCart func(int64) int) []string {
	lines := []string{ui.TitleStyle.Render(title), ""}
	if len(books) == 0 {
		return append(lines, ui.MutedStyle.Render("no books"))
	}
	for _, b := range books {
		line := fmt.Sprintf("%s %s  %s", ui.MutedStyle.Render(fmt.Sprintf("#%d", b.ID)), b.Title,
			ui.AccentStyle.Render(ui.Money(b.Price)))
		if n := inCart(b.ID); n > 0 {
			line += "  " + ui.SuccessStyle.Render(fmt.Sprintf("×%d in cart", n))
		}
		lines = append(lines, line, "    "+ui.MutedStyle.Render(ui.Truncate(b.Description, 76)))
	}
	lines = append(lines, "", ui.MutedStyle.Render("Tip: buy with `bookshop cart add <id>`"))
	return lines
}

// -------------- cart ----------------

func (e *env) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			lines := []string{ui.TitleStyle.Render("Your cart") + "  " + ui.AccentStyle.Render(ui.Badge(shop.Cart.Count())), ""}
			if shop.Cart.Len() == 0 {
				lines = append(lines, ui.MutedStyle.Render("Cart is empty"))
			} else {
				for i, l := range shop.Cart.Lines() {
					lines = append(lines, fmt.Sprintf("%s %s - %d pcs  %s",
						ui.MutedStyle.Render(fmt.Sprintf("%2d.", i+1)), l.Title, l.Quantity,
						ui.AccentStyle.Render(ui.Money(l.Subtotal()))))
				}
				lines = append(lines, "", fmt.Sprintf("%s %s", ui.AccentStyle.Render("Total"), ui.Money(shop.Cart.Total())))
			}
			e.p.Panel(lines)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Put one copy of a book in the cart",
		Args:  exactArgs(1, "cart add <book-id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			b, err := shop.Catalog.Get(id)
			if err != nil {
				e.p.Hint("Hint: run `bookshop books` to see valid ids")
				return err
			}
			if err := shop.Cart.Add(cmd.Context(), b); err != nil {
				return err
			}
			e.p.OK(fmt.Sprintf("added %s (%s)", b.Title, ui.Badge(shop.Cart.Count())))
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <book-id>",
		Aliases: []string{"remove"},
		Short:   "Take one copy of a book out of the cart",
		Args:    exactArgs(1, "cart rm <book-id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			had := shop.Cart.Quantity(id)
			if err := shop.Cart.Remove(cmd.Context(), id); err != nil {
				return err
			}
			if had == 0 {
				e.p.Hint(fmt.Sprintf("book %d is not in the cart", id))
				return nil
			}
			e.p.OK(fmt.Sprintf("removed one (%s)", ui.Badge(shop.Cart.Count())))
			return nil
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, usagef("not a book id: %s", s)
	}
	return id, nil
}

// -------------- checkout ----------------

func (e *env) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart with a pretend PayPal account",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			r, err := shop.Checkout.Pay(cmd.Context())
			if errors.Is(err, checkout.ErrEmptyCart) {
				e.p.Hint("Hint: add books with `bookshop cart add <id>`")
				return err
			}
			if r == nil {
				return err
			}
			e.p.Panel([]string{
				ui.TitleStyle.Render("Payment information"),
				"",
				"Redirecting to PayPal...",
				fmt.Sprintf("Account:  %s", r.Account),
				fmt.Sprintf("Amount:   %s", ui.Money(r.Amount)),
				fmt.Sprintf("Items:    %d", r.Items),
				ui.MutedStyle.Render("Receipt " + r.ID),
			})
			if err != nil {
				return err
			}
			if r.Cleared {
				e.p.OK("paid, cart cleared")
			} else {
				e.p.OK("paid")
			}
			return nil
		},
	}
}

// -------------- auth ----------------

func (e *env) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Mock login: login, register, logout, whoami",
		Args:  exactArgs(0, "auth <login|register|logout|whoami>"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usagef("usage: bookshop auth <login|register|logout|whoami>")
		},
	}

	login := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in (password is read from stdin)",
		Args:  exactArgs(1, "auth login <username>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			sess, err := shop.Auth.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			e.p.OK("Hello, " + sess.Username)
			return nil
		},
	}

	register := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account (password is read from stdin)",
		Args:  exactArgs(1, "auth register <username>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := shop.Auth.Register(cmd.Context(), args[0], pw); err != nil {
				if errors.Is(err, auth.ErrEmptyField) {
					return usageError{msg: err.Error()}
				}
				return err
			}
			e.p.OK("registered, please log in: bookshop auth login " + strings.TrimSpace(args[0]))
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored login",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			if sess, _ := shop.Auth.Current(cmd.Context()); sess != nil && sess.Source == "env" {
				e.p.OK(fmt.Sprintf("user is provided by %s env var (nothing to delete)", auth.EnvUser))
				return nil
			}
			if err := shop.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			e.p.OK("logged out")
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"status"},
		Short:   "Show the logged-in user",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop, err := e.open(cmd, false)
			if err != nil {
				return err
			}
			sess, err := shop.Auth.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if sess == nil {
				fmt.Fprintln(out, ui.MutedStyle.Render("not logged in"))
				fmt.Fprintln(out, "Run: bookshop auth login <username>")
				return nil
			}
			fmt.Fprintf(out, "user: %s\n", sess.Username)
			fmt.Fprintf(out, "admin: %t\n", sess.Admin)
			fmt.Fprintf(out, "source: %s\n", sess.Source)
			return nil
		},
	}

	cmd.AddCommand(login, register, logout, whoami)
	return cmd
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprintln(prompt)
	return strings.TrimRight(line, "\r\n"), nil
}

// -------------- interactive ----------------

func (e *env) shopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shop",
		Short: "Open the interactive shop",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop, err := e.open(cmd, true)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			sess, err := shop.Auth.Current(ctx)
			if err != nil {
				return err
			}

			var watch <-chan struct{}
			if js, ok := shop.Slot.(*jsonstore.Store); ok {
				watch, err = js.Watch(ctx, store.KeyCart, e.log)
				if err != nil {
					// the shop still works, it just won't notice outside edits
					e.log.Warn("cart watch disabled", "error", err)
				}
			}
			return tui.Run(ctx, shop, sess, watch)
		},
	}
}
