package ui

import (
	"strings"
	"testing"

	"github.com/idilsaglam/mornify/internal/model"
)

func TestHex(t *testing.T) {
	cases := []struct {
		in   model.RGBA
		want string
	}{
		{model.RGBA{1, 1, 1, 1}, "#ffffff"},
		{model.RGBA{0, 0, 0, 0.5}, "#000000"},
		{model.RGBA{0.2, 0.6, 0.86, 1}, "#3399db"},
		{model.RGBA{1.5, -1, 0, 1}, "#ff0000"},
	}
	for _, c := range cases {
		if got := Hex(c.in); got != c.want {
			t.Errorf("Hex(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestFG(t *testing.T) {
	if got := FG(model.RGBA{1, 0, 0.2, 1}); got != "\033[38;2;255;0;51m" {
		t.Fatalf("FG = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	got := ProgressBar(3, 7, 14)
	if !strings.HasPrefix(got, strings.Repeat("█", 6)+strings.Repeat("░", 8)) {
		t.Fatalf("bar = %q", got)
	}
	if !strings.HasSuffix(got, " 42%") {
		t.Fatalf("pct = %q", got)
	}
	if got := ProgressBar(9, 7, 5); !strings.HasSuffix(got, "100%") {
		t.Fatalf("overflow = %q", got)
	}
}

func TestPanelStringAlignsColoredLines(t *testing.T) {
	SetColorForcing(true, false)
	defer SetColorForcing(false, false)
	SetTheme(model.DarkTheme())
	defer SetTheme(model.LightTheme())

	out := PanelString([]string{C(Current().Accent, "08:00"), "Wake Up • 30 min"})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d:\n%s", len(lines), out)
	}
	w := visibleWidth(lines[0])
	for i, ln := range lines {
		if visibleWidth(ln) != w {
			t.Errorf("line %d width %d, want %d: %q", i, visibleWidth(ln), w, ln)
		}
	}
}

func TestPlainSurvivesSetTheme(t *testing.T) {
	defer func() {
		plain, disableColor = false, false
		current = build(model.LightTheme())
	}()
	Plain()
	SetTheme(model.DarkTheme())
	th := Current()
	if th.CornerTL != "+" || th.SymNext != ">" || th.Accent != "" {
		t.Fatalf("theme after SetTheme = %+v", th)
	}
	if got := C(FG(model.DarkTheme().Button), "x"); got != "x" {
		t.Fatalf("colored output in plain mode: %q", got)
	}
}
