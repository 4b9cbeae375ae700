package storage

import (
	"fmt"

	"recipe-assistant/internal/model"
)

// Preferences stores small UI settings next to the recipes.
type Preferences struct {
	kv KeyValue
}

func NewPreferences(kv KeyValue) *Preferences {
	return &Preferences{kv: kv}
}

// Theme returns the saved theme, defaulting to light when nothing (or
// something unrecognised) is stored.
func (p *Preferences) Theme() (model.Theme, error) {
	data, ok, err := p.kv.Get(ThemeKey)
	if err != nil {
		return model.ThemeLight, fmt.Errorf("failed to read theme: %w", err)
	}
	if !ok {
		return model.ThemeLight, nil
	}
	theme, known := model.ParseTheme(string(data))
	if !known {
		return model.ThemeLight, nil
	}
	return theme, nil
}

// SetTheme persists theme as the bare string "dark" or "light".
func (p *Preferences) SetTheme(theme model.Theme) error {
	if _, known := model.ParseTheme(string(theme)); !known {
		return fmt.Errorf("unknown theme %q", theme)
	}
	if err := p.kv.Set(ThemeKey, []byte(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
