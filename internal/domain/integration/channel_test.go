package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChannel(t *testing.T) {
	ch, err := NewChannel("Main shop", "http://shop.example.com", "KEY", "Europe/Paris")
	require.NoError(t, err)
	assert.True(t, ch.Enabled)
	assert.Nil(t, ch.LastSync(DirectionImport))

	_, err = NewChannel(" ", "http://shop.example.com", "KEY", "UTC")
	assert.Error(t, err)

	_, err = NewChannel("shop", "http://shop.example.com", "KEY", "Mars/Olympus")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindConfiguration, kind)
}

func TestChannel_Validate(t *testing.T) {
	ch, err := NewChannel("shop", "", "KEY", "UTC")
	require.NoError(t, err)
	assert.ErrorIs(t, ch.Validate(), ErrSettingsIncomplete)

	ch.BaseURL = "http://shop.example.com"
	ch.Key = ""
	assert.ErrorIs(t, ch.Validate(), ErrSettingsIncomplete)

	ch.Key = "KEY"
	assert.NoError(t, ch.Validate())

	ch.Timezone = "Nowhere/Land"
	err = ch.Validate()
	var se *SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeInvalidTimezone, se.Code)
}

func TestChannel_Cursors(t *testing.T) {
	ch, err := NewChannel("shop", "http://shop", "KEY", "UTC")
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	ch.AdvanceCursor(DirectionExport, at)

	assert.Nil(t, ch.LastSync(DirectionImport))
	require.NotNil(t, ch.LastSync(DirectionExport))
	assert.Equal(t, time.UTC, ch.LastSync(DirectionExport).Location())
	assert.True(t, ch.LastSync(DirectionExport).Equal(at))
}

func TestSyncWindow_RemoteBounds(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	from := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 15, 9, 30, 15, 0, time.UTC)
	w := SyncWindow{Direction: DirectionImport, From: &from, To: to, Location: paris}

	lo, hi := w.RemoteBounds()
	assert.Equal(t, "2024-01-15 09:00:00", lo)
	assert.Equal(t, "2024-01-15 10:30:15", hi)
	assert.False(t, w.IsBootstrap())

	f := WindowFilter(w)
	require.NotNil(t, f)
	assert.Equal(t, lo, f.UpdatedFrom)

	bootstrap := SyncWindow{Direction: DirectionImport, To: to}
	assert.True(t, bootstrap.IsBootstrap())
	assert.Nil(t, WindowFilter(bootstrap))
}

func TestNewRemoteLink(t *testing.T) {
	_, err := NewRemoteLink(LinkParty, uuid.New(), 3, uuid.New())
	require.NoError(t, err)

	_, err = NewRemoteLink("widget", uuid.New(), 3, uuid.New())
	assert.ErrorIs(t, err, ErrLinkInvalidKind)
	_, err = NewRemoteLink(LinkParty, uuid.Nil, 3, uuid.New())
	assert.ErrorIs(t, err, ErrLinkInvalidChannel)
	_, err = NewRemoteLink(LinkParty, uuid.New(), 0, uuid.New())
	assert.ErrorIs(t, err, ErrLinkInvalidRemoteID)
	_, err = NewRemoteLink(LinkParty, uuid.New(), 3, uuid.Nil)
	assert.ErrorIs(t, err, ErrLinkInvalidLocalID)
}
