package menus

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	buttonBackTo = "Volver a"
)

// Menuer is anything that owns a reply keyboard.
type Menuer interface {
	Menu() tgbotapi.ReplyKeyboardMarkup
}

type ApplicationMenu struct {
	Name   string
	From   string
	parent Menuer
}

func NewApplicationMenu(name, from string, parent Menuer) ApplicationMenu {
	return ApplicationMenu{
		Name:   name,
		From:   from,
		parent: parent,
	}
}

func (am *ApplicationMenu) ButtonBackTo() string {
	return buttonBackTo + " " + am.From
}

// PrevMenu is the keyboard of the menu this application was opened from.
func (am *ApplicationMenu) PrevMenu() tgbotapi.ReplyKeyboardMarkup {
	if am.parent == nil {
		return tgbotapi.NewReplyKeyboard()
	}
	return am.parent.Menu()
}
