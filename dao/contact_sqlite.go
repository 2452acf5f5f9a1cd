package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"portfolio-bot/model"
)

var ErrContactNotFound = errors.New("contact message not found")

const contactSchema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL,
	message      TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	delivered_at TIMESTAMP,
	last_error   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages(created_at);
`

// ContactInbox keeps every contact form submission, delivered or not.
type ContactInbox struct {
	db *sql.DB
}

// OpenContactInbox opens (or creates) the sqlite database at path.
// ":memory:" gives a private in-process inbox.
func OpenContactInbox(path string) (*ContactInbox, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open contact inbox: %w", err)
	}
	// a single writer keeps sqlite free of SQLITE_BUSY and keeps :memory: on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(contactSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate contact inbox: %w", err)
	}
	return &ContactInbox{db: db}, nil
}

func (i *ContactInbox) Save(ctx context.Context, msg *model.ContactMessage) error {
	if msg == nil || msg.ID == "" {
		return fmt.Errorf("%w: contact message without id", ErrInvalidParam)
	}
	_, err := i.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Message, msg.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save contact message %s: %w", msg.ID, err)
	}
	return nil
}

func (i *ContactInbox) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	return i.update(ctx, id,
		`UPDATE contact_messages SET delivered_at = ?, last_error = '' WHERE id = ?`, at.UTC(), id)
}

func (i *ContactInbox) MarkFailed(ctx context.Context, id string, reason string) error {
	return i.update(ctx, id,
		`UPDATE contact_messages SET last_error = ? WHERE id = ?`, reason, id)
}

func (i *ContactInbox) update(ctx context.Context, id, query string, args ...any) error {
	res, err := i.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update contact message %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}
	return nil
}

// List returns up to limit messages, newest first.
func (i *ContactInbox) List(ctx context.Context, limit int) ([]*model.ContactMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := i.db.QueryContext(ctx,
		`SELECT id, name, email, message, created_at, delivered_at, last_error
		 FROM contact_messages ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var out []*model.ContactMessage
	for rows.Next() {
		var (
			msg       model.ContactMessage
			delivered sql.NullTime
		)
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &msg.CreatedAt, &delivered, &msg.LastError); err != nil {
			return nil, err
		}
		if delivered.Valid {
			t := delivered.Time
			msg.DeliveredAt = &t
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

func (i *ContactInbox) Close() error {
	return i.db.Close()
}
