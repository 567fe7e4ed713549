package mainapp

import (
	"context"
	"fmt"

	"f1lapcompare/pkg/apps"
	"f1lapcompare/pkg/apps/comparison"
	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/menus"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuStart     = "/start"
	menuMenu      = "/menu"
	buttonCompare = "Comparar vueltas"
	appName       = "menú"
)

var (
	menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonCompare),
		),
	)
)

type menuer struct{}

func (m menuer) Menu() tgbotapi.ReplyKeyboardMarkup {
	return menuKeyboard
}

type MainApp struct {
	bot       apps.Sender
	accepters []apps.Accepter
}

func NewMainApp(bot apps.Sender, store comparison.SelectionStore, comparer comparison.Comparer, sharer comparison.Sharer, chartOpts chart.Options) *MainApp {
	compareAppMenu := menus.NewApplicationMenu(buttonCompare, appName, menuer{})
	compareApp := comparison.NewCompareApp(bot, compareAppMenu, store, comparer, sharer, chartOpts)

	return &MainApp{
		bot:       bot,
		accepters: []apps.Accepter{compareApp},
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	name, _ := apps.ParseCommand(command)
	if name == menuStart {
		return true, m.renderStart()
	} else if name == menuMenu {
		return true, m.renderMenu()
	}
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCallback(query)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Hola, soy el bot que compara la vuelta rápida de dos pilotos de F1 en una sesión.\n\n"
		message += "Puedes usar el siguiente comando:\n\n"
		message += fmt.Sprintf("%s - Muestra el menú del bot\n", menuMenu)
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Menú del bot.\n\n"
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}
