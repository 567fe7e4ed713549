package main

import (
	"context"

	"f1lapcompare/pkg/apps"
	"f1lapcompare/pkg/apps/mainapp"
	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/notification"
	"f1lapcompare/pkg/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// startBot connects to telegram and dispatches updates until ctx is cancelled. The returned func
// releases the settings database.
func startBot(ctx context.Context, conf config.Config, service *compare.Service) (func(), error) {
	bot, err := tgbotapi.NewBotAPI(conf.Telegram.Token)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to telegram")
	}
	// logs every interaction with the telegram servers
	bot.Debug = conf.Telegram.Debug

	store, err := settings.NewManager(conf.Database.Path)
	if err != nil {
		return nil, err
	}
	sharer := notification.NewManager(bot, store, conf.Telegram.BroadcastChats)
	mainApp := mainapp.NewMainApp(bot, store, service, sharer, conf.ChartOptions())

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	go receiveUpdates(ctx, bot, mainApp, updates)
	logrus.Infof("Authorized on account %s, listening for updates", bot.Self.UserName)

	return func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("closing settings database")
		}
	}, nil
}

func receiveUpdates(ctx context.Context, bot *tgbotapi.BotAPI, accepter apps.Accepter, updates tgbotapi.UpdatesChannel) {
	defer bot.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			handleUpdate(ctx, accepter, update)
		}
	}
}

func handleUpdate(ctx context.Context, accepter apps.Accepter, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		handleMessage(ctx, accepter, update.Message)
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message != nil {
			ctx = context.WithValue(ctx, apps.ChatContextKey, query.Message.Chat)
		}
		ctx = context.WithValue(ctx, apps.UserContextKey, query.From)
		accept, handler := accepter.AcceptCallback(query)
		if !accept {
			return
		}
		if err := handler(ctx, query); err != nil {
			logrus.WithError(err).Error("handling callback")
		}
	}
}

func handleMessage(ctx context.Context, accepter apps.Accepter, message *tgbotapi.Message) {
	user := message.From
	if user == nil {
		return
	}
	ctx = context.WithValue(ctx, apps.UserContextKey, user)
	ctx = context.WithValue(ctx, apps.ChatContextKey, message.Chat)

	logrus.WithFields(logrus.Fields{"user": user.UserName, "chat": message.Chat.ID}).Debugf("wrote %q", message.Text)

	var accept bool
	var handler func(ctx context.Context, chatId int64) error
	if message.IsCommand() {
		accept, handler = accepter.AcceptCommand(message.Text)
	} else {
		accept, handler = accepter.AcceptButton(message.Text)
	}
	if !accept {
		return
	}
	if err := handler(ctx, message.Chat.ID); err != nil {
		logrus.WithError(err).Error("handling message")
	}
}
