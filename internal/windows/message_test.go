package windows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiology-portal/internal/models"
)

func TestDecodeMessage(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"type":"saveWindowPosition","role":"reporting","geometry":{"left":1,"top":2,"width":300,"height":200}}`))
	require.NoError(t, err)
	assert.Equal(t, KindSaveWindowPosition, m.Kind)
	assert.Equal(t, 300, m.Geometry.Width)

	m, err = DecodeMessage([]byte(`{"type":"templateSelection","template":{"id":"t1","name":"Brain MRI"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Brain MRI", m.Template.Name)

	for _, raw := range []string{
		`not json`,
		`{"type":"saveWindowPosition","role":"chat","geometry":{"width":1,"height":1}}`,
		`{"type":"templateSelection"}`,
		`{}`,
	} {
		_, err := DecodeMessage([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestChannelHandle(t *testing.T) {
	h, err := ChannelOpener{Buffer: 2}.Open(context.Background(), "w1", models.RoleViewer,
		models.WindowGeometry{Width: 10, Height: 10}, models.ThemeDark)
	require.NoError(t, err)
	ch := h.(*ChannelHandle)
	assert.Equal(t, models.ThemeDark, ch.Theme)

	require.NoError(t, ch.Navigate("https://viewer"))
	require.NoError(t, ch.Focus())
	assert.ErrorIs(t, ch.SetContent("<p>"), ErrWindowBusy)

	assert.Equal(t, Command{Kind: CommandNavigate, URL: "https://viewer"}, <-ch.Commands())
	assert.Equal(t, CommandFocus, (<-ch.Commands()).Kind)

	require.NoError(t, ch.Close())
	assert.True(t, ch.Closed())
	assert.Equal(t, CommandClose, (<-ch.Commands()).Kind)
	_, open := <-ch.Commands()
	assert.False(t, open)

	assert.ErrorIs(t, ch.Focus(), ErrWindowClosed)
	assert.NoError(t, ch.Close())
	ch.Detach()
}
