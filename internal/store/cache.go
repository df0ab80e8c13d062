// ABOUTME: SQLite-backed read cache for conversation messages
// ABOUTME: Insert-or-ignore writes; recent-N reads in ascending order

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skillswap/swapchat/internal/api"
)

// Cache is a local message cache. Safe for concurrent use; database/sql
// serializes access.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the cache database at path. Parent directories
// are created if needed.
func Open(path string) (*Cache, error) {
	logger := slog.Default().With("component", "cache")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &Cache{db: db, logger: logger}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("message cache opened", "path", path)
	return c, nil
}

func (c *Cache) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER NOT NULL,
			conversation_id INTEGER NOT NULL,
			sender_id INTEGER,
			sender_name TEXT,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			PRIMARY KEY (conversation_id, id)
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conv_ts
			ON messages (conversation_id, timestamp, id);
	`
	_, err := c.db.Exec(schema)
	return err
}

// SaveMessages inserts messages, ignoring ids already cached. Messages
// are immutable, so an existing row is never worth rewriting.
func (c *Cache) SaveMessages(ctx context.Context, msgs []api.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO messages
			(id, conversation_id, sender_id, sender_name, content, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		var senderID *int64
		var senderName *string
		if m.Sender != nil {
			senderID = &m.Sender.ID
			senderName = &m.Sender.Name
		}
		if _, err := stmt.ExecContext(ctx,
			m.ID,
			m.ConversationID,
			senderID,
			senderName,
			m.Content,
			m.Timestamp.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("inserting message %d: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// Recent returns the newest limit messages of a conversation in ascending
// order. Uses a DESC subquery to pick the most recent rows, then
// re-orders ASC so callers receive conversation order.
func (c *Cache) Recent(ctx context.Context, conversationID int64, limit int) ([]api.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, conversation_id, sender_id, sender_name, content, timestamp
		FROM (
			SELECT id, conversation_id, sender_id, sender_name, content, timestamp
			FROM messages
			WHERE conversation_id = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		)
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := c.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying cached messages: %w", err)
	}
	defer rows.Close()

	var msgs []api.Message
	for rows.Next() {
		var m api.Message
		var senderID sql.NullInt64
		var senderName sql.NullString
		var ts string

		if err := rows.Scan(&m.ID, &m.ConversationID, &senderID, &senderName, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		if senderID.Valid {
			m.Sender = &api.UserSummary{ID: senderID.Int64, Name: senderName.String}
		}
		m.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}

		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}
	return msgs, nil
}

// DeleteConversation drops all cached messages of a conversation. Called
// when the user deletes the conversation.
func (c *Cache) DeleteConversation(ctx context.Context, conversationID int64) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("deleting cached conversation: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
