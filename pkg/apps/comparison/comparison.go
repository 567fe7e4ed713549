package comparison

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"f1lapcompare/pkg/apps"
	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/export"
	"f1lapcompare/pkg/menus"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/report"
	"f1lapcompare/pkg/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	commandYear     = "/temporada"
	commandGP       = "/gp"
	commandDrivers  = "/pilotos"
	commandSession  = "/sesion"
	commandCompare  = "/comparar"
	commandShare    = "/compartir"
	commandExcel    = "/excel"
	buttonCompare   = "Comparar ⏱"
	buttonSelection = "Selección"
	buttonShare     = "Compartir 📣"
	buttonExcel     = "Excel 📊"
	buttonSubscribe = "Suscripción 🔔"
)

type SelectionStore interface {
	GetSelection(chatID int64) (settings.Chat, error)
	SaveSelection(chatID int64, name string, selection model.Request) error
	ToggleSubscription(chatID int64, name string) (bool, error)
}

type Comparer interface {
	Run(ctx context.Context, req model.Request) (model.Comparison, error)
}

type Sharer interface {
	Share(ctx context.Context, cmp model.Comparison, from string) (int, error)
}

// CompareApp collects the comparison inputs of a chat over several messages and runs the
// comparison on demand.
type CompareApp struct {
	bot          apps.Sender
	appMenu      menus.ApplicationMenu
	menuKeyboard tgbotapi.ReplyKeyboardMarkup
	store        SelectionStore
	comparer     Comparer
	sharer       Sharer
	chartOpts    chart.Options
	last         map[int64]model.Comparison
	mu           sync.Mutex
}

func NewCompareApp(bot apps.Sender, appMenu menus.ApplicationMenu, store SelectionStore, comparer Comparer, sharer Sharer, chartOpts chart.Options) *CompareApp {
	sessionButtons := []tgbotapi.KeyboardButton{}
	for _, kind := range model.SessionKinds() {
		sessionButtons = append(sessionButtons, tgbotapi.NewKeyboardButton(kind.Label()))
	}
	menuKeyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonCompare),
			tgbotapi.NewKeyboardButton(buttonSelection),
		),
		sessionButtons[:3],
		sessionButtons[3:],
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonShare),
			tgbotapi.NewKeyboardButton(buttonExcel),
			tgbotapi.NewKeyboardButton(buttonSubscribe),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(appMenu.ButtonBackTo()),
		),
	)

	return &CompareApp{
		bot:          bot,
		appMenu:      appMenu,
		menuKeyboard: menuKeyboard,
		store:        store,
		comparer:     comparer,
		sharer:       sharer,
		chartOpts:    chartOpts,
		last:         map[int64]model.Comparison{},
	}
}

func (ca *CompareApp) Menu() tgbotapi.ReplyKeyboardMarkup {
	return ca.menuKeyboard
}

func (ca *CompareApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	name, args := apps.ParseCommand(command)
	switch name {
	case commandYear:
		return true, ca.updateYear(args)
	case commandGP:
		return true, ca.updateGrandPrix(args)
	case commandDrivers:
		return true, ca.updateDrivers(args)
	case commandSession:
		return true, ca.updateSession(strings.Join(args, " "))
	case commandCompare:
		return true, ca.renderComparison()
	case commandShare:
		return true, ca.shareComparison()
	case commandExcel:
		return true, ca.sendWorkbook()
	}
	return false, nil
}

func (ca *CompareApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	return false, nil
}

func (ca *CompareApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	switch button {
	case ca.appMenu.Name:
		return true, ca.renderSelection(true)
	case ca.appMenu.ButtonBackTo():
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, "OK")
			msg.ReplyMarkup = ca.appMenu.PrevMenu()
			_, err := ca.bot.Send(msg)
			return err
		}
	case buttonCompare:
		return true, ca.renderComparison()
	case buttonSelection:
		return true, ca.renderSelection(false)
	case buttonShare:
		return true, ca.shareComparison()
	case buttonExcel:
		return true, ca.sendWorkbook()
	case buttonSubscribe:
		return true, ca.toggleSubscription()
	}
	if kind, err := model.ParseSessionKind(button); err == nil && button == kind.Label() {
		return true, ca.updateSession(button)
	}
	return false, nil
}

func (ca *CompareApp) send(chatId int64, text string) error {
	msg := tgbotapi.NewMessage(chatId, text)
	msg.ReplyMarkup = ca.menuKeyboard
	_, err := ca.bot.Send(msg)
	return err
}

func (ca *CompareApp) sendError(chatId int64, err error) error {
	return ca.send(chatId, "⚠️ Error: "+err.Error())
}

func (ca *CompareApp) renderSelection(withHelp bool) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		chat, err := ca.store.GetSelection(chatId)
		if err != nil {
			logrus.WithError(err).Errorf("reading selection of chat %d", chatId)
			return ca.sendError(chatId, err)
		}
		message := "Selección actual:\n\n" + chat.String()
		if withHelp {
			message += "\n\nPuedes cambiarla con:\n\n"
			message += fmt.Sprintf("%s <año> - Temporada (%d-%d)\n", commandYear, model.MinYear, time.Now().Year())
			message += fmt.Sprintf("%s <nombre> - Gran Premio, p.ej. Monza\n", commandGP)
			message += fmt.Sprintf("%s <P1> <P2> - Pilotos, p.ej. VER HAM\n", commandDrivers)
			message += "Los botones de sesión eligen la sesión.\n"
			message += fmt.Sprintf("%s - Compara las vueltas rápidas\n", buttonCompare)
		}
		return ca.send(chatId, message)
	}
}

// updateSelection applies change to the stored selection of the chat and shows the result.
func (ca *CompareApp) updateSelection(change func(*model.Request) error) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		chat, err := ca.store.GetSelection(chatId)
		if err != nil {
			return ca.sendError(chatId, err)
		}
		if err := change(&chat.Selection); err != nil {
			return ca.sendError(chatId, err)
		}
		if err := ca.store.SaveSelection(chatId, apps.ChatName(ctx), chat.Selection); err != nil {
			logrus.WithError(err).Errorf("saving selection of chat %d", chatId)
			return ca.sendError(chatId, err)
		}
		return ca.send(chatId, "Selección actualizada:\n\n"+chat.String())
	}
}

func (ca *CompareApp) updateYear(args []string) func(ctx context.Context, chatId int64) error {
	return ca.updateSelection(func(r *model.Request) error {
		if len(args) != 1 {
			return fmt.Errorf("uso: %s <año>", commandYear)
		}
		year, err := strconv.Atoi(args[0])
		if err != nil || year < model.MinYear || year > time.Now().Year() {
			return fmt.Errorf("%w: %s", model.ErrInvalidYear, args[0])
		}
		r.Year = year
		return nil
	})
}

func (ca *CompareApp) updateGrandPrix(args []string) func(ctx context.Context, chatId int64) error {
	return ca.updateSelection(func(r *model.Request) error {
		gp := strings.TrimSpace(strings.Join(args, " "))
		if gp == "" {
			return fmt.Errorf("uso: %s <nombre>: %w", commandGP, model.ErrEmptyGrandPrix)
		}
		r.GrandPrix = gp
		return nil
	})
}

func (ca *CompareApp) updateDrivers(args []string) func(ctx context.Context, chatId int64) error {
	return ca.updateSelection(func(r *model.Request) error {
		if len(args) != 2 {
			return fmt.Errorf("uso: %s <P1> <P2>: %w", commandDrivers, model.ErrEmptyDriver)
		}
		r.Driver1 = strings.ToUpper(args[0])
		r.Driver2 = strings.ToUpper(args[1])
		return nil
	})
}

func (ca *CompareApp) updateSession(value string) func(ctx context.Context, chatId int64) error {
	return ca.updateSelection(func(r *model.Request) error {
		kind, err := model.ParseSessionKind(value)
		if err != nil {
			return err
		}
		r.Session = kind
		return nil
	})
}

func (ca *CompareApp) toggleSubscription() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		subscribed, err := ca.store.ToggleSubscription(chatId, apps.ChatName(ctx))
		if err != nil {
			return ca.sendError(chatId, err)
		}
		if subscribed {
			return ca.send(chatId, "🔔 Este chat recibirá las comparaciones compartidas")
		}
		return ca.send(chatId, "🔕 Este chat ya no recibirá comparaciones compartidas")
	}
}

func (ca *CompareApp) renderComparison() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		chat, err := ca.store.GetSelection(chatId)
		if err != nil {
			return ca.sendError(chatId, err)
		}
		if err := ca.send(chatId, "Cargando datos de la sesión..."); err != nil {
			return err
		}

		cmp, err := ca.comparer.Run(ctx, chat.Selection)
		if err != nil {
			logrus.WithError(err).Warnf("comparison for chat %d failed", chatId)
			return ca.sendError(chatId, err)
		}

		ca.mu.Lock()
		ca.last[chatId] = cmp
		ca.mu.Unlock()

		var png bytes.Buffer
		if err := chart.RenderPNG(&png, cmp, ca.chartOpts); err != nil {
			return ca.sendError(chatId, err)
		}
		photo := tgbotapi.NewPhoto(chatId, tgbotapi.FileBytes{Name: "comparison.png", Bytes: png.Bytes()})
		photo.Caption = fmt.Sprintf("```\n%s\n%s```", escapeCode(cmp.Request.Title()), escapeCode(report.SummaryTable(cmp)))
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		photo.ReplyMarkup = ca.menuKeyboard
		_, err = ca.bot.Send(photo)
		return err
	}
}

// Last returns the last comparison computed for a chat. It is kept in memory only.
func (ca *CompareApp) Last(chatId int64) (model.Comparison, bool) {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	cmp, ok := ca.last[chatId]
	return cmp, ok
}

func (ca *CompareApp) shareComparison() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		cmp, ok := ca.Last(chatId)
		if !ok {
			return ca.send(chatId, fmt.Sprintf("No hay ninguna comparación todavía. Usa %q primero", buttonCompare))
		}
		if ca.sharer == nil {
			return ca.send(chatId, "Compartir no está disponible")
		}
		sent, err := ca.sharer.Share(ctx, cmp, apps.UserName(ctx))
		if err != nil {
			logrus.WithError(err).Error("sharing comparison")
			return ca.sendError(chatId, err)
		}
		return ca.send(chatId, fmt.Sprintf("Comparación compartida con %d chats", sent))
	}
}

func (ca *CompareApp) sendWorkbook() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		cmp, ok := ca.Last(chatId)
		if !ok {
			return ca.send(chatId, fmt.Sprintf("No hay ninguna comparación todavía. Usa %q primero", buttonCompare))
		}
		var b bytes.Buffer
		if err := export.WriteXLSX(&b, cmp); err != nil {
			return ca.sendError(chatId, err)
		}
		doc := tgbotapi.NewDocument(chatId, tgbotapi.FileBytes{Name: export.Filename(cmp.Request), Bytes: b.Bytes()})
		_, err := ca.bot.Send(doc)
		return err
	}
}

// escapeCode escapes text for a MarkdownV2 code block.
func escapeCode(text string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(text)
}
