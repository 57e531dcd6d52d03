// Package windows keeps track of the reporting and viewer popups: at most
// one live window per role, focus on reopen, and the message channel the
// popups use to talk back to the portal.
package windows

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"radiology-portal/internal/models"
	"radiology-portal/internal/prefs"
)

// Handle is a live popup.
type Handle interface {
	Closed() bool
	Focus() error
	Close() error
	SetContent(html string) error
	Navigate(url string) error
	Post(msg Message) error
}

// Opener opens a popup with the given geometry. A nil Handle with a nil
// error means the popup was blocked.
type Opener interface {
	Open(ctx context.Context, id string, role models.WindowRole, g models.WindowGeometry, theme models.Theme) (Handle, error)
}

type Window struct {
	ID     string
	Role   models.WindowRole
	Handle Handle
}

func (w *Window) live() bool {
	return w != nil && w.Handle != nil && !w.Handle.Closed()
}

type Manager struct {
	opener Opener
	prefs  prefs.Store
	logger zerolog.Logger
	newID  func() string

	mu      sync.Mutex
	windows map[models.WindowRole]*Window
}

func NewManager(opener Opener, store prefs.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		opener:  opener,
		prefs:   store,
		logger:  logger,
		newID:   uuid.NewString,
		windows: make(map[models.WindowRole]*Window),
	}
}

// Open returns the live window for role, focusing it, or opens a new one
// at the saved geometry. A blocked popup yields a nil Window and no error.
func (m *Manager) Open(ctx context.Context, role models.WindowRole) (*Window, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown window role %q", role)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if w := m.windows[role]; w.live() {
		if err := w.Handle.Focus(); err != nil {
			return nil, fmt.Errorf("focus %s window: %w", role, err)
		}
		return w, nil
	}
	delete(m.windows, role)

	g, err := m.prefs.Geometry(ctx, role)
	if err != nil {
		return nil, err
	}
	theme, err := m.prefs.Theme(ctx)
	if err != nil {
		return nil, err
	}

	id := m.newID()
	h, err := m.opener.Open(ctx, id, role, g, theme)
	if err != nil {
		return nil, fmt.Errorf("open %s window: %w", role, err)
	}
	if h == nil {
		m.logger.Info().Str("role", string(role)).Msg("popup blocked")
		return nil, nil
	}

	w := &Window{ID: id, Role: role, Handle: h}
	m.windows[role] = w
	m.logger.Debug().Str("role", string(role)).Str("window_id", id).Msg("window opened")
	return w, nil
}

// OpenAll opens the reporting and the viewer windows.
func (m *Manager) OpenAll(ctx context.Context) error {
	var errs []error
	for _, role := range models.WindowRoles {
		if _, err := m.Open(ctx, role); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns the live window for role.
func (m *Manager) Get(role models.WindowRole) (*Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[role]
	if !w.live() {
		return nil, false
	}
	return w, true
}

// Lookup finds a live window by id.
func (m *Manager) Lookup(id string) (*Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows {
		if w.ID == id && w.live() {
			return w, true
		}
	}
	return nil, false
}

// UpdateReporting replaces the body of the reporting window. Without a
// live window it does nothing.
func (m *Manager) UpdateReporting(html string) error {
	w, ok := m.Get(models.RoleReporting)
	if !ok {
		return nil
	}
	return w.Handle.SetContent(html)
}

// UpdateViewer points the viewer window at url. Without a live window it
// does nothing.
func (m *Manager) UpdateViewer(url string) error {
	w, ok := m.Get(models.RoleViewer)
	if !ok {
		return nil
	}
	return w.Handle.Navigate(url)
}

func (m *Manager) Close(role models.WindowRole) error {
	m.mu.Lock()
	w := m.windows[role]
	delete(m.windows, role)
	m.mu.Unlock()

	if !w.live() {
		return nil
	}
	if err := w.Handle.Close(); err != nil {
		return fmt.Errorf("close %s window: %w", role, err)
	}
	return nil
}

func (m *Manager) CloseAll() error {
	var errs []error
	for _, role := range models.WindowRoles {
		if err := m.Close(role); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Receive handles a message sent by a popup. A template selection is
// echoed to the live reporting window; a saved position is written to the
// preferences store.
func (m *Manager) Receive(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid window message: %w", err)
	}

	switch msg.Kind {
	case KindSaveWindowPosition:
		if err := m.prefs.SetGeometry(ctx, msg.Role, *msg.Geometry); err != nil {
			return fmt.Errorf("save %s position: %w", msg.Role, err)
		}
		m.logger.Debug().Str("role", string(msg.Role)).Interface("geometry", msg.Geometry).Msg("window position saved")
	case KindTemplateSelection:
		w, ok := m.Get(models.RoleReporting)
		if !ok {
			return nil
		}
		if err := w.Handle.Post(msg); err != nil {
			return fmt.Errorf("echo template selection: %w", err)
		}
	}
	return nil
}
