package calllog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zhouzirui/dinebot/backend/internal/textutil"

	_ "modernc.org/sqlite"
)

// SQLiteSink keeps records in a local SQLite table.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if needed) the database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	sink := &SQLiteSink{db: db}
	if err := sink.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return sink, nil
}

func (s *SQLiteSink) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS call_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		logged_at INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		user_query TEXT NOT NULL,
		bot_response TEXT NOT NULL,
		intent TEXT NOT NULL,
		city TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		query_tokens INTEGER NOT NULL DEFAULT 0,
		response_tokens INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_call_logs_session ON call_logs(session_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Append(ctx context.Context, rec Record) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	city := rec.City
	if city == "" {
		city = NotAvailable
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_logs (logged_at, session_id, user_query, bot_response, intent, city,
			duration_seconds, query_tokens, response_tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UnixMilli(), rec.SessionID, rec.UserQuery, rec.BotResponse, rec.Intent, city,
		rec.seconds(), textutil.CountTokens(rec.UserQuery), textutil.CountTokens(rec.BotResponse),
	)
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	return nil
}

// Stored is a record read back with its token counts.
type Stored struct {
	Record
	QueryTokens    int
	ResponseTokens int
}

// Recent returns up to limit records for sessionID, newest first. An empty
// sessionID lists all sessions.
func (s *SQLiteSink) Recent(ctx context.Context, sessionID string, limit int) ([]Stored, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT logged_at, session_id, user_query, bot_response, intent, city,
			duration_seconds, query_tokens, response_tokens
		FROM call_logs
		WHERE ? = '' OR session_id = ?
		ORDER BY id DESC
		LIMIT ?`, sessionID, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query call logs: %w", err)
	}
	defer rows.Close()

	var out []Stored
	for rows.Next() {
		var (
			st      Stored
			ms      int64
			seconds int64
		)
		if err := rows.Scan(&ms, &st.SessionID, &st.UserQuery, &st.BotResponse, &st.Intent, &st.City,
			&seconds, &st.QueryTokens, &st.ResponseTokens); err != nil {
			return nil, fmt.Errorf("scan call log: %w", err)
		}
		st.Timestamp = time.UnixMilli(ms)
		st.Duration = time.Duration(seconds) * time.Second
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
