// Package prefs persists user preferences: the colour theme and the last
// geometry of each popup window.
package prefs

import (
	"context"
	"fmt"

	"radiology-portal/internal/models"
)

type Store interface {
	Theme(ctx context.Context) (models.Theme, error)
	SetTheme(ctx context.Context, theme models.Theme) error
	Geometry(ctx context.Context, role models.WindowRole) (models.WindowGeometry, error)
	SetGeometry(ctx context.Context, role models.WindowRole, g models.WindowGeometry) error
}

// Defaults are returned for keys that were never written.
type Defaults struct {
	Theme    models.Theme
	Geometry map[models.WindowRole]models.WindowGeometry
}

func (d Defaults) theme() models.Theme {
	if d.Theme == "" {
		return models.ThemeLight
	}
	return d.Theme
}

func (d Defaults) geometry(role models.WindowRole) models.WindowGeometry {
	return d.Geometry[role]
}

func checkTheme(theme models.Theme) error {
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return nil
}

func checkRole(role models.WindowRole) error {
	if !role.Valid() {
		return fmt.Errorf("unknown window role %q", role)
	}
	return nil
}

// ToggleTheme flips the stored theme and returns the new one.
func ToggleTheme(ctx context.Context, s Store) (models.Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := current.Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
