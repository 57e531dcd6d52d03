package windows

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"radiology-portal/internal/models"
)

type Kind string

const (
	// KindSaveWindowPosition carries the geometry of a popup that is
	// about to close.
	KindSaveWindowPosition Kind = "saveWindowPosition"
	// KindTemplateSelection carries the reporting template picked in a
	// popup. It is echoed back to the reporting window.
	KindTemplateSelection Kind = "templateSelection"
)

// Message is the only payload exchanged between the portal and its popups.
type Message struct {
	Kind     Kind                   `json:"type"`
	Role     models.WindowRole      `json:"role,omitempty"`
	Geometry *models.WindowGeometry `json:"geometry,omitempty"`
	Template *TemplateSelection     `json:"template,omitempty"`
}

type TemplateSelection struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
}

func (m Message) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Kind, validation.Required, validation.In(KindSaveWindowPosition, KindTemplateSelection)),
		validation.Field(&m.Role,
			validation.When(m.Kind == KindSaveWindowPosition, validation.Required),
			validation.In(models.RoleReporting, models.RoleViewer)),
		validation.Field(&m.Geometry,
			validation.When(m.Kind == KindSaveWindowPosition, validation.Required, validation.By(positiveSize))),
		validation.Field(&m.Template,
			validation.When(m.Kind == KindTemplateSelection, validation.Required)),
	)
}

func positiveSize(value any) error {
	g, ok := value.(*models.WindowGeometry)
	if !ok || g == nil {
		return nil
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	return nil
}

// DecodeMessage parses and validates a message received from a popup.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode window message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, fmt.Errorf("invalid window message: %w", err)
	}
	return m, nil
}
