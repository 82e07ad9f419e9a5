package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	keyBackground = "background_color"
	keyText       = "text_color"
	keyButton     = "button_color"
)

// RGBA is a color as four floats in [0,1].
type RGBA [4]float64

// Theme holds the display colors. Keys the app does not know about are kept
// in Extra so a save writes them back untouched.
type Theme struct {
	Background RGBA
	Text       RGBA
	Button     RGBA

	Extra map[string]json.RawMessage
}

func LightTheme() Theme {
	return Theme{
		Background: RGBA{1, 1, 1, 1},
		Text:       RGBA{0, 0, 0, 1},
		Button:     RGBA{0.2, 0.6, 0.86, 1},
	}
}

func DarkTheme() Theme {
	return Theme{
		Background: RGBA{0.1, 0.1, 0.1, 1},
		Text:       RGBA{1, 1, 1, 1},
		Button:     RGBA{0.7, 0.1, 0.1, 1},
	}
}

// ThemeNames lists the presets accepted by ThemeByName.
var ThemeNames = []string{"light", "dark"}

func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return LightTheme(), nil
	case "dark":
		return DarkTheme(), nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q (want light or dark)", name)
}

// Clone copies t including its Extra map.
func (t Theme) Clone() Theme {
	if t.Extra != nil {
		extra := make(map[string]json.RawMessage, len(t.Extra))
		for k, v := range t.Extra {
			extra[k] = v
		}
		t.Extra = extra
	}
	return t
}

// Apply replaces the three colors with those of preset, keeping Extra.
func (t Theme) Apply(preset Theme) Theme {
	t.Background = preset.Background
	t.Text = preset.Text
	t.Button = preset.Button
	return t
}

func (t Theme) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(t.Extra)+3)
	for k, v := range t.Extra {
		m[k] = v
	}
	m[keyBackground] = t.Background
	m[keyText] = t.Text
	m[keyButton] = t.Button
	return json.Marshal(m)
}

// UnmarshalJSON merges data onto t: keys missing from data keep their
// current value.
func (t *Theme) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		var dst *RGBA
		switch k {
		case keyBackground:
			dst = &t.Background
		case keyText:
			dst = &t.Text
		case keyButton:
			dst = &t.Button
		default:
			if t.Extra == nil {
				t.Extra = map[string]json.RawMessage{}
			}
			t.Extra[k] = v
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}
