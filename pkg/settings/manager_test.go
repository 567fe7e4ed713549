package settings

import (
	"path/filepath"
	"testing"

	"f1lapcompare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_DefaultSelection(t *testing.T) {
	m := newManager(t)

	chat, err := m.GetSelection(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), chat.ID)
	assert.Equal(t, DefaultSelection(), chat.Selection)
	assert.False(t, chat.Subscribed)

	chats, err := m.listChats(false)
	require.NoError(t, err)
	assert.Empty(t, chats, "reading must not store anything")
}

func TestManager_SaveSelection(t *testing.T) {
	m := newManager(t)
	selection := model.Request{Year: 2021, GrandPrix: "Abu Dhabi", Session: model.Qualifying, Driver1: "VER", Driver2: "HAM"}

	require.NoError(t, m.SaveSelection(7, "pitwall", selection))

	chat, err := m.GetSelection(7)
	require.NoError(t, err)
	assert.Equal(t, "pitwall", chat.Name)
	assert.Equal(t, selection, chat.Selection)

	selection.Driver2 = "O'WARD"
	require.NoError(t, m.SaveSelection(7, "pitwall", selection))
	chat, err = m.GetSelection(7)
	require.NoError(t, err)
	assert.Equal(t, "O'WARD", chat.Selection.Driver2)
}

func TestManager_Subscriptions(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.SaveSelection(1, "one", DefaultSelection()))
	require.NoError(t, m.SaveSelection(2, "two", DefaultSelection()))

	subscribed, err := m.ToggleSubscription(2, "two")
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribed, err = m.ToggleSubscription(3, "three")
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribers, err := m.ListSubscribers()
	require.NoError(t, err)
	require.Len(t, subscribers, 2)
	assert.Equal(t, int64(2), subscribers[0].ID)
	assert.Equal(t, int64(3), subscribers[1].ID)
	assert.Equal(t, DefaultSelection(), subscribers[1].Selection)

	// saving a selection keeps the subscription
	require.NoError(t, m.SaveSelection(2, "two", DefaultSelection()))
	chat, err := m.GetSelection(2)
	require.NoError(t, err)
	assert.True(t, chat.Subscribed)

	subscribed, err = m.ToggleSubscription(2, "two")
	require.NoError(t, err)
	assert.False(t, subscribed)

	all, err := m.listChats(false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestChat_String(t *testing.T) {
	chat := Chat{ID: 1, Selection: DefaultSelection()}

	out := chat.String()
	assert.Contains(t, out, "2024")
	assert.Contains(t, out, "Monza")
	assert.Contains(t, out, "Race")
	assert.Contains(t, out, "VER vs HAM")
	assert.Contains(t, out, "🔕")
}
