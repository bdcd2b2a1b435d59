package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Printer writes status lines and panels. The zero value prints to stdout/stderr.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

func (p Printer) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p Printer) err() io.Writer {
	if p.Err == nil {
		return os.Stderr
	}
	return p.Err
}

func (p Printer) OK(msg string) {
	fmt.Fprintln(p.out(), SuccessStyle.Render(current.SymOK+" "+msg))
}

func (p Printer) Fail(msg string) {
	fmt.Fprintln(p.err(), ErrorStyle.Render(current.SymFail+" "+msg))
}

func (p Printer) Hint(msg string) {
	fmt.Fprintln(p.err(), MutedStyle.Render(msg))
}

// Panel draws a framed box around lines.
func (p Printer) Panel(lines []string) {
	fmt.Fprintln(p.out(), PanelString(strings.Join(lines, "\n")))
}

// PanelString frames inner with the theme border.
func PanelString(inner string) string {
	return PanelStyle.Render(inner)
}

// Money renders a price the way the shop shows it: whole amounts without cents.
func Money(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("$%.0f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

// Badge is the header cart indicator, e.g. "Cart (3)".
func Badge(count int) string {
	return fmt.Sprintf("Cart (%d)", count)
}

// Truncate shortens s to at most n runes, ending with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
