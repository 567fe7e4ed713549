package settings

import (
	"database/sql"

	"f1lapcompare/pkg/model"
)

func buildCreateSelectionsTable() string {
	return `CREATE TABLE IF NOT EXISTS selections (
		chatid INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		year INTEGER NOT NULL,
		grandprix TEXT NOT NULL,
		session TEXT NOT NULL,
		driver1 TEXT NOT NULL,
		driver2 TEXT NOT NULL,
		subscribed INTEGER NOT NULL DEFAULT 0);`
}

func buildSelectSelectionCommand(chatID int64) (string, []any, func(*sql.Rows) (Chat, bool, error)) {
	fields := "chatid, name, year, grandprix, session, driver1, driver2, subscribed"
	return `SELECT ` + fields + ` FROM selections WHERE chatid = ?`, []any{chatID}, processSelectSelectionRows
}

func processSelectSelectionRows(rows *sql.Rows) (Chat, bool, error) {
	defer rows.Close()

	// only can be one row
	if rows.Next() {
		chat, err := scanChat(rows)
		return chat, err == nil, err
	}
	return Chat{}, false, rows.Err()
}

func buildSelectChatsCommand(onlySubscribed bool) (string, []any, func(*sql.Rows) ([]Chat, error)) {
	fields := "chatid, name, year, grandprix, session, driver1, driver2, subscribed"
	query := `SELECT ` + fields + ` FROM selections`
	if onlySubscribed {
		query += ` WHERE subscribed = 1`
	}
	return query + ` ORDER BY chatid`, nil, processSelectChatsRows
}

func processSelectChatsRows(rows *sql.Rows) ([]Chat, error) {
	defer rows.Close()

	chats := make([]Chat, 0)
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return chats, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func scanChat(rows *sql.Rows) (Chat, error) {
	var chat Chat
	var session string
	var subscribed int
	err := rows.Scan(&chat.ID, &chat.Name, &chat.Selection.Year, &chat.Selection.GrandPrix, &session,
		&chat.Selection.Driver1, &chat.Selection.Driver2, &subscribed)
	if err != nil {
		return chat, err
	}
	chat.Selection.Session = model.SessionKind(session)
	chat.Subscribed = subscribed == 1
	return chat, nil
}

func buildUpsertSelectionCommand(chat Chat) (string, []any) {
	subscribed := 0
	if chat.Subscribed {
		subscribed = 1
	}
	fields := "chatid, name, year, grandprix, session, driver1, driver2, subscribed"
	return `INSERT OR REPLACE INTO selections (` + fields + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		[]any{chat.ID, chat.Name, chat.Selection.Year, chat.Selection.GrandPrix, string(chat.Selection.Session),
			chat.Selection.Driver1, chat.Selection.Driver2, subscribed}
}
