package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"radiology-portal/internal/models"
)

const defaultPrefix = "portal:prefs:"

// RedisStore keeps the theme in a string key and each window geometry in a
// hash with left, top, width and height fields.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	defaults Defaults
}

func NewRedisStore(client *redis.Client, defaults Defaults) *RedisStore {
	return &RedisStore{client: client, prefix: defaultPrefix, defaults: defaults}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (s *RedisStore) themeKey() string {
	return s.prefix + "theme"
}

func (s *RedisStore) windowKey(role models.WindowRole) string {
	return s.prefix + "window:" + string(role)
}

func (s *RedisStore) Theme(ctx context.Context) (models.Theme, error) {
	v, err := s.client.Get(ctx, s.themeKey()).Result()
	if errors.Is(err, redis.Nil) {
		return s.defaults.theme(), nil
	}
	if err != nil {
		return "", fmt.Errorf("get theme: %w", err)
	}
	theme := models.Theme(v)
	if checkTheme(theme) != nil {
		return s.defaults.theme(), nil
	}
	return theme, nil
}

func (s *RedisStore) SetTheme(ctx context.Context, theme models.Theme) error {
	if err := checkTheme(theme); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.themeKey(), string(theme), 0).Err(); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func (s *RedisStore) Geometry(ctx context.Context, role models.WindowRole) (models.WindowGeometry, error) {
	if err := checkRole(role); err != nil {
		return models.WindowGeometry{}, err
	}
	fields, err := s.client.HGetAll(ctx, s.windowKey(role)).Result()
	if err != nil {
		return models.WindowGeometry{}, fmt.Errorf("get %s geometry: %w", role, err)
	}
	if len(fields) == 0 {
		return s.defaults.geometry(role), nil
	}

	g := s.defaults.geometry(role)
	for name, dst := range map[string]*int{"left": &g.Left, "top": &g.Top, "width": &g.Width, "height": &g.Height} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.WindowGeometry{}, fmt.Errorf("%s geometry field %s: %w", role, name, err)
		}
		*dst = n
	}
	return g, nil
}

func (s *RedisStore) SetGeometry(ctx context.Context, role models.WindowRole, g models.WindowGeometry) error {
	if err := checkRole(role); err != nil {
		return err
	}
	err := s.client.HSet(ctx, s.windowKey(role),
		"left", g.Left,
		"top", g.Top,
		"width", g.Width,
		"height", g.Height,
	).Err()
	if err != nil {
		return fmt.Errorf("set %s geometry: %w", role, err)
	}
	return nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
