package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"radiology-portal/internal/models"
	"radiology-portal/internal/prefs"
	"radiology-portal/internal/windows"
)

type openWindowResponse struct {
	ID       string                `json:"id"`
	Role     models.WindowRole     `json:"role"`
	URL      string                `json:"url"`
	Features string                `json:"features"`
	Geometry models.WindowGeometry `json:"geometry"`
	Blocked  bool                  `json:"blocked,omitempty"`
}

func windowFeatures(g models.WindowGeometry) string {
	return fmt.Sprintf("left=%d,top=%d,width=%d,height=%d", g.Left, g.Top, g.Width, g.Height)
}

// handleOpenWindow registers a popup for role and tells the browser where
// to open it. A live popup is focused instead.
func (s *server) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	role := models.WindowRole(r.PathValue("role"))
	if !role.Valid() {
		badRequest(w, fmt.Errorf("unknown window role %q", role))
		return
	}
	win, err := s.windows.Open(r.Context(), role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if win == nil {
		writeJSON(w, http.StatusOK, openWindowResponse{Role: role, Blocked: true})
		return
	}

	resp := openWindowResponse{ID: win.ID, Role: role, URL: "/windows/" + win.ID}
	if h, ok := win.Handle.(*windows.ChannelHandle); ok {
		resp.Geometry = h.Geometry
		resp.Features = windowFeatures(h.Geometry)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleCloseWindow(w http.ResponseWriter, r *http.Request) {
	role := models.WindowRole(r.PathValue("role"))
	if !role.Valid() {
		badRequest(w, fmt.Errorf("unknown window role %q", role))
		return
	}
	if err := s.windows.Close(role); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleWindowMessage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		badRequest(w, err)
		return
	}
	msg, err := windows.DecodeMessage(data)
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := s.windows.Receive(r.Context(), msg); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type windowPageData struct {
	ID   string
	Role models.WindowRole
	URL  string
}

func (s *server) handleWindowPage(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windows.Lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, "window", string(win.Role), windowPageData{
		ID:   win.ID,
		Role: win.Role,
		URL:  s.properties(r.Context()).Viewer.URL,
	})
}

// handleWindowEvents streams the commands queued for a popup. The popup is
// considered closed once its stream ends.
func (s *server) handleWindowEvents(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windows.Lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	h, ok := win.Handle.(*windows.ChannelHandle)
	if !ok {
		http.NotFound(w, r)
		return
	}
	defer h.Detach()

	sse := datastar.NewSSE(w, r)
	for {
		select {
		case <-r.Context().Done():
			return
		case cmd, ok := <-h.Commands():
			if !ok {
				return
			}
			if err := sendCommand(sse, cmd); err != nil {
				s.logger.Debug().Err(err).Str("window_id", win.ID).Msg("window stream closed")
				return
			}
		}
	}
}

func sendCommand(sse *datastar.ServerSentEventGenerator, cmd windows.Command) error {
	switch cmd.Kind {
	case windows.CommandContent:
		return sse.PatchElements(fmt.Sprintf(`<div id="window-body">%s</div>`, cmd.HTML))
	case windows.CommandNavigate:
		src, err := json.Marshal(cmd.URL)
		if err != nil {
			return err
		}
		return sse.ExecuteScript(fmt.Sprintf("document.getElementById('viewer-frame').src = %s", src))
	case windows.CommandFocus:
		return sse.ExecuteScript("window.focus()")
	case windows.CommandMessage:
		return sse.MarshalAndPatchSignals(map[string]any{"message": cmd.Message})
	case windows.CommandClose:
		return sse.ExecuteScript("window.close()")
	}
	return nil
}

func (s *server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := prefs.ToggleTheme(r.Context(), s.prefs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.Header.Get("Accept") == "application/json" {
		writeJSON(w, http.StatusOK, map[string]models.Theme{"theme": theme})
		return
	}
	http.Redirect(w, r, refererOr(r, "/"), http.StatusSeeOther)
}

func refererOr(r *http.Request, fallback string) string {
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return fallback
}

func (s *server) handleProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.properties(r.Context()))
}

func (s *server) handleReloadProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reloadProperties(r.Context()))
}
