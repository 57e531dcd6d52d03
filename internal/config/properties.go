// Package config loads process settings and the portal properties
// resource.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"radiology-portal/internal/models"
)

// Properties is the portal configuration resource, read from a JSON file or
// URL.
type Properties struct {
	Reporting    ReportingProperties `json:"reporting"`
	Viewer       ViewerProperties    `json:"viewer"`
	Limits       map[string]int      `json:"limits"`
	Placeholders Placeholders        `json:"placeholders"`
}

type ReportingProperties struct {
	Window models.WindowGeometry `json:"window"`
}

type ViewerProperties struct {
	URL    string                `json:"url"`
	Window models.WindowGeometry `json:"window"`
}

type Placeholders struct {
	PatientMale   []string `json:"patient_male"`
	PatientFemale []string `json:"patient_female"`
	Radio         []string `json:"radio"`
}

func DefaultProperties() Properties {
	return Properties{
		Reporting: ReportingProperties{
			Window: models.WindowGeometry{Left: 100, Top: 100, Width: 1200, Height: 800},
		},
		Viewer: ViewerProperties{
			URL:    "about:blank",
			Window: models.WindowGeometry{Left: 1320, Top: 100, Width: 1000, Height: 800},
		},
		Limits: map[string]int{
			string(models.CategoryInbox):         50,
			string(models.CategoryPending):       50,
			string(models.CategorySecondOpinion): 50,
			string(models.CategoryCompleted):     100,
		},
		Placeholders: Placeholders{
			PatientMale: []string{
				"/static/images/patient/patient0.jpg",
				"/static/images/patient/patient4.jpg",
				"/static/images/patient/patient7.jpg",
			},
			PatientFemale: []string{
				"/static/images/patient/patient1.jpg",
				"/static/images/patient/patient2.jpg",
				"/static/images/patient/patient3.jpg",
			},
			Radio: []string{
				"/static/images/radio/radio1.jpg",
				"/static/images/radio/radio2.jpg",
			},
		},
	}
}

// Geometry returns the configured geometry of a popup window.
func (p Properties) Geometry(role models.WindowRole) models.WindowGeometry {
	if role == models.RoleViewer {
		return p.Viewer.Window
	}
	return p.Reporting.Window
}

// Limit is the maximum number of exams shown for a category, 0 meaning
// unlimited.
func (p Properties) Limit(c models.Category) int {
	return p.Limits[string(c)]
}

func validGeometry(value any) error {
	g, _ := value.(models.WindowGeometry)
	return validation.ValidateStruct(&g,
		validation.Field(&g.Width, validation.Required, validation.Min(1)),
		validation.Field(&g.Height, validation.Required, validation.Min(1)),
	)
}

func validURL(value any) error {
	s, _ := value.(string)
	if _, err := url.Parse(s); err != nil {
		return err
	}
	return nil
}

func validLimits(value any) error {
	limits, _ := value.(map[string]int)
	for k, n := range limits {
		if !models.Category(k).Valid() {
			return fmt.Errorf("unknown category %q", k)
		}
		if n < 0 {
			return fmt.Errorf("negative limit for %q", k)
		}
	}
	return nil
}

func (p Properties) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Reporting, validation.By(func(v any) error {
			return validGeometry(v.(ReportingProperties).Window)
		})),
		validation.Field(&p.Viewer, validation.By(func(v any) error {
			vp := v.(ViewerProperties)
			if err := validation.Validate(vp.URL, validation.Required, validation.By(validURL)); err != nil {
				return err
			}
			return validGeometry(vp.Window)
		})),
		validation.Field(&p.Limits, validation.By(validLimits)),
	)
}

// ParseProperties decodes data over the defaults, so absent fields keep
// their default value, then validates the result.
func ParseProperties(data []byte) (Properties, error) {
	p := DefaultProperties()
	if err := json.Unmarshal(data, &p); err != nil {
		return Properties{}, fmt.Errorf("decode properties: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Properties{}, fmt.Errorf("validate properties: %w", err)
	}
	return p, nil
}

// PropertiesLoader fetches the properties resource once per TTL.
type PropertiesLoader struct {
	client *resty.Client
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewPropertiesLoader(logger zerolog.Logger, ttl time.Duration) *PropertiesLoader {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Accept", "application/json")

	return &PropertiesLoader{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Load returns the properties at source. Any failure is logged and yields
// DefaultProperties; nothing is returned to the caller.
func (l *PropertiesLoader) Load(ctx context.Context, source string) Properties {
	if cached, ok := l.cache.Get(source); ok {
		return cached.(Properties)
	}

	p, err := l.load(ctx, source)
	if err != nil {
		l.logger.Warn().Err(err).Str("source", source).Msg("using default properties")
		p = DefaultProperties()
	}
	l.cache.SetDefault(source, p)
	return p
}

// Reload drops the cached value for source and loads it again.
func (l *PropertiesLoader) Reload(ctx context.Context, source string) Properties {
	l.cache.Delete(source)
	return l.Load(ctx, source)
}

func (l *PropertiesLoader) load(ctx context.Context, source string) (Properties, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return Properties{}, err
	}
	return ParseProperties(data)
}

func (l *PropertiesLoader) fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("no properties source")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := l.client.R().SetContext(ctx).Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch properties: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch properties: HTTP %d", resp.StatusCode())
		}
		return resp.Body(), nil
	}
	return os.ReadFile(source)
}
