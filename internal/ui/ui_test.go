package ui

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$10", Money(10))
	assert.Equal(t, "$0", Money(0))
	assert.Equal(t, "$12.50", Money(12.5))
	assert.Equal(t, "$0.99", Money(0.99))
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "Cart (0)", Badge(0))
	assert.Equal(t, "Cart (12)", Badge(12))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "книга к...", Truncate("книга книга книга", 10))
}

func TestPrinter(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var out, errb bytes.Buffer
	p := Printer{Out: &out, Err: &errb}
	p.OK("added")
	p.Fail("nope")
	p.Panel([]string{"line one", "line two"})

	assert.Contains(t, out.String(), "ok added")
	assert.Contains(t, out.String(), "line one")
	assert.Contains(t, out.String(), "+")
	assert.Contains(t, errb.String(), "error: nope")
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("classic")

	SetTheme("NEON")
	assert.Equal(t, "neon", Current().Name)
	SetTheme("whatever")
	assert.Equal(t, "classic", Current().Name)
}

func TestSetTheme_RestoresColorProfile(t *testing.T) {
	defer SetTheme("classic")
	before := lipgloss.ColorProfile()

	SetTheme("mono")
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())

	SetTheme("neon")
	assert.Equal(t, before, lipgloss.ColorProfile())
	SetTheme("mono")
	SetTheme("classic")
	assert.Equal(t, before, lipgloss.ColorProfile())
}
