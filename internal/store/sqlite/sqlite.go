package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	sender        TEXT NOT NULL,
	receiver      TEXT NOT NULL,
	subject       TEXT,
	body          TEXT NOT NULL,
	created_at_ns INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_sender   ON messages(sender, created_at_ns);
CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver, created_at_ns);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB

	// clockMu serializes timestamp assignment so CreatedAt is
	// monotonically non-decreasing per store.
	clockMu sync.Mutex
	lastTS  time.Time
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new account with a hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getUserByID(ctx, id)
}

func (s *SQLiteStore) getUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves an account by its email identity.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ==== MessageStore implementation ====

// AppendMessage validates and persists a message, assigning the id and a
// server-side CreatedAt.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	if msg == nil || msg.Sender == "" || msg.Receiver == "" || strings.TrimSpace(msg.Body) == "" {
		return nil, store.ErrInvalidMessage
	}

	createdAt := s.nextTimestamp()

	var subject sql.NullString
	if msg.Subject != "" {
		subject = sql.NullString{String: msg.Subject, Valid: true}
	}

	query := `
		INSERT INTO messages (sender, receiver, subject, body, created_at_ns)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.Sender, msg.Receiver, subject, msg.Body, createdAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	stored := *msg
	stored.ID = id
	stored.CreatedAt = createdAt
	return &stored, nil
}

// nextTimestamp returns the current time, clamped so that it never goes
// backwards relative to the previous append.
func (s *SQLiteStore) nextTimestamp() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	now := time.Now().UTC()
	if now.Before(s.lastTS) {
		now = s.lastTS
	}
	s.lastTS = now
	return now
}

// ListMessagesForUser returns every message where identity is sender or
// receiver, ordered by CreatedAt ascending.
func (s *SQLiteStore) ListMessagesForUser(ctx context.Context, identity string) ([]*store.Message, error) {
	query := `
		SELECT id, sender, receiver, subject, body, created_at_ns
		FROM messages
		WHERE sender = ? OR receiver = ?
		ORDER BY created_at_ns ASC, id ASC
	`
	return s.queryMessages(ctx, query, identity, identity)
}

// ListMessagesForPair returns the messages exchanged between a and b in
// either direction, ordered by CreatedAt ascending.
func (s *SQLiteStore) ListMessagesForPair(ctx context.Context, a, b string) ([]*store.Message, error) {
	query := `
		SELECT id, sender, receiver, subject, body, created_at_ns
		FROM messages
		WHERE (sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)
		ORDER BY created_at_ns ASC, id ASC
	`
	return s.queryMessages(ctx, query, a, b, b, a)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var (
			msg       store.Message
			subject   sql.NullString
			createdNS int64
		)
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Receiver, &subject, &msg.Body, &createdNS); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if subject.Valid {
			msg.Subject = subject.String
		}
		msg.CreatedAt = time.Unix(0, createdNS).UTC()
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
