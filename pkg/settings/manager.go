package settings

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"f1lapcompare/pkg/model"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	DbName = "./lapcompare-bot.db"
)

// DefaultSelection is what a chat starts with.
func DefaultSelection() model.Request {
	return model.DefaultRequest()
}

// Chat is the form state of one Telegram chat.
type Chat struct {
	ID         int64
	Name       string
	Selection  model.Request
	Subscribed bool
}

func (c Chat) String() string {
	s := c.Selection
	status := []string{}
	status = append(status, fmt.Sprintf("📅 Temporada: %d", s.Year))
	status = append(status, fmt.Sprintf("🏁 Gran Premio: %s", s.GrandPrix))
	status = append(status, fmt.Sprintf("⏱ Sesión: %s", s.Session.Label()))
	status = append(status, fmt.Sprintf("👤 Pilotos: %s vs %s", s.Driver1, s.Driver2))
	status = append(status, fmt.Sprintf("%s Recibir comparaciones compartidas", symbolStatus(c.Subscribed)))
	return strings.Join(status, "\n")
}

func symbolStatus(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}

type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(path string) (*Manager, error) {
	if path == "" {
		path = DbName
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database %s", path)
	}

	if _, err := db.Exec(buildCreateSelectionsTable()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialising database")
	}

	return &Manager{
		db: db,
		mu: sync.Mutex{},
	}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

// GetSelection returns the stored state of a chat, or the default selection when the chat
// never changed anything.
func (m *Manager) GetSelection(chatID int64) (Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.getChat(chatID)
}

func (m *Manager) getChat(chatID int64) (Chat, error) {
	query, args, read := buildSelectSelectionCommand(chatID)
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return Chat{}, errors.Wrapf(err, "reading selection of chat %d", chatID)
	}
	chat, found, err := read(rows)
	if err != nil {
		return Chat{}, errors.Wrapf(err, "reading selection of chat %d", chatID)
	}
	if !found {
		return Chat{ID: chatID, Selection: DefaultSelection()}, nil
	}
	return chat, nil
}

// SaveSelection stores the selection of a chat, keeping its subscription flag.
func (m *Manager) SaveSelection(chatID int64, name string, selection model.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, err := m.getChat(chatID)
	if err != nil {
		return err
	}
	chat.Name = name
	chat.Selection = selection
	return m.save(chat)
}

// ToggleSubscription flips whether the chat receives shared comparisons and returns the new value.
func (m *Manager) ToggleSubscription(chatID int64, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, err := m.getChat(chatID)
	if err != nil {
		return false, err
	}
	chat.Name = name
	chat.Subscribed = !chat.Subscribed
	return chat.Subscribed, m.save(chat)
}

func (m *Manager) save(chat Chat) error {
	query, args := buildUpsertSelectionCommand(chat)
	if _, err := m.db.Exec(query, args...); err != nil {
		return errors.Wrapf(err, "saving selection of chat %d", chat.ID)
	}
	return nil
}

// ListSubscribers returns the chats that receive shared comparisons.
func (m *Manager) ListSubscribers() ([]Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listChats(true)
}

func (m *Manager) listChats(onlySubscribed bool) ([]Chat, error) {
	query, args, read := buildSelectChatsCommand(onlySubscribed)
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing chats")
	}
	chats, err := read(rows)
	return chats, errors.Wrap(err, "listing chats")
}
