package notification

import (
	"context"
	"fmt"
	"strings"

	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/telegram"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const subject = "🏎 Comparación compartida"

type Lister interface {
	ListSubscribers() ([]settings.Chat, error)
}

// Manager shares comparisons with the broadcast chats and every subscribed chat.
type Manager struct {
	lister    Lister
	broadcast []int64
	service   func(receivers []int64) notify.Notifier
}

func NewManager(bot *tgbotapi.BotAPI, lister Lister, broadcast []int64) *Manager {
	return &Manager{
		lister:    lister,
		broadcast: broadcast,
		service: func(receivers []int64) notify.Notifier {
			tg := &telegram.Telegram{}
			tg.SetClient(bot)
			tg.AddReceivers(receivers...)
			return tg
		},
	}
}

// Share sends the summary of cmp and returns how many chats received it.
func (m *Manager) Share(ctx context.Context, cmp model.Comparison, from string) (int, error) {
	receivers, err := m.receivers()
	if err != nil {
		return 0, err
	}
	if len(receivers) == 0 {
		return 0, nil
	}

	logrus.Infof("Sharing %s comparison with %d telegram chats", cmp.Request.Title(), len(receivers))
	n := notify.NewWithServices(m.service(receivers))
	if err := n.Send(ctx, subject, Summary(cmp, from)); err != nil {
		return 0, errors.Wrap(err, "sharing comparison")
	}
	return len(receivers), nil
}

func (m *Manager) receivers() ([]int64, error) {
	seen := map[int64]bool{}
	receivers := []int64{}
	add := func(id int64) {
		if id == 0 || seen[id] {
			return
		}
		seen[id] = true
		receivers = append(receivers, id)
	}

	for _, id := range m.broadcast {
		add(id)
	}
	if m.lister != nil {
		chats, err := m.lister.ListSubscribers()
		if err != nil {
			return nil, errors.Wrap(err, "listing subscribers")
		}
		for _, chat := range chats {
			add(chat.ID)
		}
	}
	return receivers, nil
}

// Summary is the plain text version of a comparison.
func Summary(cmp model.Comparison, from string) string {
	lines := []string{cmp.Request.Title()}
	for i, trace := range cmp.Traces {
		line := fmt.Sprintf("%s: %s", trace.Driver.Code, cmp.LapTimes[i])
		if trace.Driver.Team != "" {
			line = fmt.Sprintf("%s (%s): %s", trace.Driver.Code, trace.Driver.Team, cmp.LapTimes[i])
		}
		lines = append(lines, line)
	}
	lines = append(lines, "Δ "+cmp.DeltaText)

	sectors := []string{}
	for _, s := range cmp.Sectors {
		sectors = append(sectors, fmt.Sprintf("S%d %.3f km", s.Sector, s.DistanceKm))
	}
	if len(sectors) > 0 {
		lines = append(lines, strings.Join(sectors, " · "))
	}
	if from != "" {
		lines = append(lines, "Compartido por "+from)
	}
	return strings.Join(lines, "\n")
}
