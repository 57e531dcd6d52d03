package windows

import (
	"context"
	"errors"
	"sync"

	"radiology-portal/internal/models"
)

var (
	ErrWindowClosed = errors.New("window closed")
	ErrWindowBusy   = errors.New("window command queue full")
)

type CommandKind string

const (
	CommandFocus    CommandKind = "focus"
	CommandClose    CommandKind = "close"
	CommandContent  CommandKind = "content"
	CommandNavigate CommandKind = "navigate"
	CommandMessage  CommandKind = "message"
)

// Command is an instruction streamed to the page running inside a popup.
type Command struct {
	Kind    CommandKind `json:"kind"`
	HTML    string      `json:"html,omitempty"`
	URL     string      `json:"url,omitempty"`
	Message *Message    `json:"message,omitempty"`
}

// ChannelHandle is a Handle whose commands are queued for a popup page to
// consume, typically over a server-sent event stream.
type ChannelHandle struct {
	Role     models.WindowRole
	Geometry models.WindowGeometry
	Theme    models.Theme

	mu     sync.Mutex
	closed bool
	out    chan Command
}

func NewChannelHandle(buffer int) *ChannelHandle {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelHandle{out: make(chan Command, buffer)}
}

// Commands is closed once the window is closed or detached.
func (h *ChannelHandle) Commands() <-chan Command {
	return h.out
}

func (h *ChannelHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *ChannelHandle) send(c Command) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrWindowClosed
	}
	select {
	case h.out <- c:
		return nil
	default:
		return ErrWindowBusy
	}
}

func (h *ChannelHandle) Focus() error {
	return h.send(Command{Kind: CommandFocus})
}

func (h *ChannelHandle) SetContent(html string) error {
	return h.send(Command{Kind: CommandContent, HTML: html})
}

func (h *ChannelHandle) Navigate(url string) error {
	return h.send(Command{Kind: CommandNavigate, URL: url})
}

func (h *ChannelHandle) Post(msg Message) error {
	return h.send(Command{Kind: CommandMessage, Message: &msg})
}

// Close asks the page to close itself and ends the command stream.
func (h *ChannelHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	select {
	case h.out <- Command{Kind: CommandClose}:
	default:
	}
	h.closed = true
	close(h.out)
	return nil
}

// Detach marks the window closed from the popup side, for instance when
// its event stream disconnects.
func (h *ChannelHandle) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.out)
	}
}

// ChannelOpener opens ChannelHandles. It never blocks a popup.
type ChannelOpener struct {
	Buffer int
}

func (o ChannelOpener) Open(ctx context.Context, id string, role models.WindowRole, g models.WindowGeometry, theme models.Theme) (Handle, error) {
	h := NewChannelHandle(o.Buffer)
	h.Role = role
	h.Geometry = g
	h.Theme = theme
	return h, nil
}
