package ui

import (
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/idilsaglam/mornify/internal/model"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool
)

func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || isTTY() {
		return color + s + reset
	}
	return s
}

// Colorful converts a theme color. Alpha is dropped; terminals have no
// use for it.
func Colorful(c model.RGBA) colorful.Color {
	return colorful.Color{R: clamp01(c[0]), G: clamp01(c[1]), B: clamp01(c[2])}
}

// Hex renders c as "#rrggbb".
func Hex(c model.RGBA) string { return Colorful(c).Hex() }

// FG is the 24-bit foreground escape for c.
func FG(c model.RGBA) string {
	r, g, b := Colorful(c).RGB255()
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Dim fades s, for indexes and hints.
func Dim(s string) string { return C(dim, s) }

func OK(msg string)   { fmt.Println(C(current.Success, symCheck+" "+msg)) }
func Fail(msg string) { fmt.Fprintln(os.Stderr, C(current.Error, symCross+" "+msg)) }
