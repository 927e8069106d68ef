package storage

import (
	"context"
	"fmt"
)

// DarkModeKey is the preference key holding the dashboard theme ("1" dark, "0" light)
const DarkModeKey = "vi-dark"

// Store is a small key/value backend for dashboard preferences
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Preferences exposes typed accessors over a Store
type Preferences struct {
	store Store
}

func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

// DarkMode reports the stored theme; a missing value means light mode
func (p *Preferences) DarkMode(ctx context.Context) (bool, error) {
	v, ok, err := p.store.Get(ctx, DarkModeKey)
	if err != nil {
		return false, fmt.Errorf("failed to read theme preference: %w", err)
	}
	return ok && v == "1", nil
}

// SetDarkMode persists the theme
func (p *Preferences) SetDarkMode(ctx context.Context, dark bool) error {
	v := "0"
	if dark {
		v = "1"
	}
	if err := p.store.Set(ctx, DarkModeKey, v); err != nil {
		return fmt.Errorf("failed to save theme preference: %w", err)
	}
	return nil
}

// ToggleDarkMode flips the theme and returns the new value
func (p *Preferences) ToggleDarkMode(ctx context.Context) (bool, error) {
	dark, err := p.DarkMode(ctx)
	if err != nil {
		return false, err
	}
	if err := p.SetDarkMode(ctx, !dark); err != nil {
		return false, err
	}
	return !dark, nil
}

func (p *Preferences) Close() error {
	return p.store.Close()
}
