// Package theme holds the color theme settings and their persistence.
package theme

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"cubedeck/internal/logx"
)

var themeLogger = logx.GetScope("theme")

// Colors is the palette a theme applies, keyed the way the UI consumes
// them as CSS custom properties.
type Colors struct {
	Primary      string `json:"primary"`
	PrimaryHover string `json:"primaryHover"`
	Secondary    string `json:"secondary"`
	Accent       string `json:"accent"`
	Background   string `json:"background"`
	Surface      string `json:"surface"`
	Text         string `json:"text"`
	TextMuted    string `json:"textMuted"`
}

// Theme is a named palette.
type Theme struct {
	Name   string `json:"name"`
	IsDark bool   `json:"isDark"`
	Colors Colors `json:"colors"`
}

// Default returns the stock dark pink/purple theme.
func Default() Theme {
	return Theme{
		Name:   "femtimer",
		IsDark: true,
		Colors: Colors{
			Primary:      "#f98fed",
			PrimaryHover: "#fea1de",
			Secondary:    "#c37ef0",
			Accent:       "#de89fd",
			Background:   "#18181c",
			Surface:      "#242428",
			Text:         "#ffffff",
			TextMuted:    "#a0a0a8",
		},
	}
}

// CSSVariables renders the theme's palette as custom-property assignments,
// ready to drop into a :root block.
func (t Theme) CSSVariables() map[string]string {
	c := t.Colors
	return map[string]string{
		"--color-primary":       c.Primary,
		"--color-primary-hover": c.PrimaryHover,
		"--color-secondary":     c.Secondary,
		"--color-accent":        c.Accent,
		"--color-background":    c.Background,
		"--color-surface":       c.Surface,
		"--color-text":          c.Text,
		"--color-text-muted":    c.TextMuted,
	}
}

// Store keeps the active theme and writes changes through to disk. A missing
// or corrupt file yields the default theme.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Theme
}

// NewStore loads the persisted theme from path, defaulting when absent.
func NewStore(path string) *Store {
	s := &Store{path: path, current: Default()}
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			themeLogger.Sugar().Warnf("read theme: %v", err)
		}
		return s
	}
	var t Theme
	if err := json.Unmarshal(b, &t); err != nil {
		themeLogger.Sugar().Warnf("corrupt theme file, using default: %v", err)
		return s
	}
	s.current = t
	return s
}

// Get returns the active theme.
func (s *Store) Get() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the active theme and persists it.
func (s *Store) Set(t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
	return s.persistLocked()
}

// Reset restores the default theme and persists it.
func (s *Store) Reset() error {
	return s.Set(Default())
}

func (s *Store) persistLocked() error {
	b, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
