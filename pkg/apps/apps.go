package apps

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ContextUser string
type ContextChatID string

const (
	UserContextKey ContextUser   = "user"
	ChatContextKey ContextChatID = "chat"
)

type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error)
}

// Sender is the part of *tgbotapi.BotAPI the applications use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ParseCommand splits "/gp@SomeBot Abu Dhabi" into "/gp" and ["Abu", "Dhabi"].
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	command := strings.ToLower(fields[0])
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return command, fields[1:]
}

// UserName returns a printable name of the user that sent the update, if any.
func UserName(ctx context.Context) string {
	user, ok := ctx.Value(UserContextKey).(*tgbotapi.User)
	if !ok || user == nil {
		return ""
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

// ChatName returns the title of the chat, or the user name for private chats.
func ChatName(ctx context.Context) string {
	chat, ok := ctx.Value(ChatContextKey).(*tgbotapi.Chat)
	if ok && chat != nil && chat.Title != "" {
		return chat.Title
	}
	return UserName(ctx)
}
