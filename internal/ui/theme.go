package ui

import "github.com/idilsaglam/mornify/internal/model"

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
	SymNext, SymTask                              string
}

var (
	plain   bool
	current = build(model.LightTheme())
)

// SetTheme derives the CLI palette from an app theme. The button color
// becomes the accent; background and text are left to the terminal.
func SetTheme(th model.Theme) { current = build(th) }

// Plain switches to the ASCII, colorless rendition. It sticks across later
// SetTheme calls.
func Plain() {
	plain = true
	disableColor = true
	current = build(model.Theme{})
}

func build(th model.Theme) Theme {
	if plain {
		return Theme{
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymNext: ">", SymTask: "-",
		}
	}
	return Theme{
		Title: bold, Muted: fgGray, Accent: FG(th.Button),
		Success: fgGreen, Error: fgRed, Pending: fgYellow,
		CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
		H: "─", V: "│",
		SymNext: "▶", SymTask: "•",
	}
}

// Expose what renderers need
func Current() Theme { return current }
