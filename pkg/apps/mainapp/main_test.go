package mainapp

import (
	"context"
	"path/filepath"
	"testing"

	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	messages []tgbotapi.MessageConfig
}

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.messages = append(r.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

type noComparer struct{}

func (noComparer) Run(ctx context.Context, req model.Request) (model.Comparison, error) {
	return model.Comparison{}, nil
}

func newApp(t *testing.T) (*MainApp, *recorder) {
	t.Helper()
	store, err := settings.NewManager(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	r := &recorder{}
	return NewMainApp(r, store, noComparer{}, nil, chart.Options{}), r
}

func TestMainApp_Start(t *testing.T) {
	app, r := newApp(t)

	ok, handler := app.AcceptCommand("/start")
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), 1))

	require.Len(t, r.messages, 1)
	assert.Contains(t, r.messages[0].Text, menuMenu)
	assert.Equal(t, menuKeyboard, r.messages[0].ReplyMarkup)
}

func TestMainApp_DelegatesToCompareApp(t *testing.T) {
	app, r := newApp(t)

	ok, handler := app.AcceptButton(buttonCompare)
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), 1))
	assert.Contains(t, r.messages[0].Text, "Selección actual")

	ok, _ = app.AcceptCommand("/gp Monza")
	assert.True(t, ok)

	ok, handler = app.AcceptButton("Volver a " + appName)
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), 1))
	assert.Equal(t, menuKeyboard, r.messages[1].ReplyMarkup)

	ok, _ = app.AcceptCommand("/desconocido")
	assert.False(t, ok)
}
