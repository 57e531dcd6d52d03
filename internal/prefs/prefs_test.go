package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiology-portal/internal/models"
)

var testDefaults = Defaults{
	Geometry: map[models.WindowRole]models.WindowGeometry{
		models.RoleReporting: {Left: 100, Top: 100, Width: 1200, Height: 800},
		models.RoleViewer:    {Left: 1320, Top: 100, Width: 1000, Height: 800},
	},
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisStore(client, testDefaults)
}

func stores(t *testing.T) map[string]Store {
	_, rs := setupTestRedis(t)
	return map[string]Store{
		"memory": NewMemoryStore(testDefaults),
		"redis":  rs,
	}
}

func TestStores_Defaults(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			theme, err := s.Theme(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.ThemeLight, theme)

			g, err := s.Geometry(ctx, models.RoleReporting)
			require.NoError(t, err)
			assert.Equal(t, models.WindowGeometry{Left: 100, Top: 100, Width: 1200, Height: 800}, g)
		})
	}
}

func TestStores_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			next, err := ToggleTheme(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, models.ThemeDark, next)
			theme, _ := s.Theme(ctx)
			assert.Equal(t, models.ThemeDark, theme)

			want := models.WindowGeometry{Left: 5, Top: 6, Width: 700, Height: 500}
			require.NoError(t, s.SetGeometry(ctx, models.RoleViewer, want))
			got, err := s.Geometry(ctx, models.RoleViewer)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			other, _ := s.Geometry(ctx, models.RoleReporting)
			assert.Equal(t, 1200, other.Width)
		})
	}
}

func TestStores_RejectUnknownValues(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.SetTheme(ctx, "sepia"))
			assert.Error(t, s.SetGeometry(ctx, "chat", models.WindowGeometry{}))
			_, err := s.Geometry(ctx, "chat")
			assert.Error(t, err)
		})
	}
}

func TestRedisStore_Layout(t *testing.T) {
	mr, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.SetTheme(ctx, models.ThemeDark))
	require.NoError(t, s.SetGeometry(ctx, models.RoleReporting, models.WindowGeometry{Left: 1, Top: 2, Width: 3, Height: 4}))

	theme, err := mr.Get("portal:prefs:theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
	assert.Equal(t, "3", mr.HGet("portal:prefs:window:reporting", "width"))
}

func TestRedisStore_CorruptValues(t *testing.T) {
	mr, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("portal:prefs:theme", "neon"))
	theme, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, theme)

	mr.HSet("portal:prefs:window:viewer", "width", "wide")
	_, err = s.Geometry(ctx, models.RoleViewer)
	assert.Error(t, err)
}

func TestRedisStore_PartialGeometryUsesDefaults(t *testing.T) {
	mr, s := setupTestRedis(t)

	mr.HSet("portal:prefs:window:viewer", "left", "42")
	g, err := s.Geometry(context.Background(), models.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, models.WindowGeometry{Left: 42, Top: 100, Width: 1000, Height: 800}, g)
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 2, client.Options().DB)

	_, err = NewRedisClient("://bad")
	assert.Error(t, err)
}
