package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
	txcontext "github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/tx"
)

// Postgres persists conversations and messages.
//
// Deduplication is enforced at the schema: conversations carry a unique index
// on the canonically ordered (participant_a, participant_b) pair, so
// CreateConversationIfAbsent races resolve to a single row even across
// processes. Message appends run in one transaction that also refreshes the
// parent conversation's last-message snapshot.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) querier(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// ---------------------------------------------------------------------------
// Conversations
// ---------------------------------------------------------------------------

const conversationColumns = `id, participant_a, participant_b,
	last_sender_id, last_content, last_created_at, created_at, updated_at`

func scanConversation(scan func(dest ...any) error) (*models.Conversation, error) {
	var c models.Conversation
	var lastSender uuid.NullUUID
	var lastContent sql.NullString
	var lastCreated sql.NullTime
	err := scan(&c.ID, &c.ParticipantA, &c.ParticipantB,
		&lastSender, &lastContent, &lastCreated, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastSender.Valid {
		c.LastMessage = &models.LastMessage{
			SenderID:  lastSender.UUID,
			Content:   lastContent.String,
			CreatedAt: lastCreated.Time,
		}
	}
	return &c, nil
}

// CreateConversationIfAbsent inserts the conversation, relying on the unique
// pair index to absorb races: ON CONFLICT DO NOTHING followed by a re-select
// on the pair, so every caller walks away with the same winning row.
func (s *Postgres) CreateConversationIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	res, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (participant_a, participant_b) DO NOTHING`,
		conv.ID, conv.ParticipantA, conv.ParticipantB, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert conversation: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert conversation: %w", err)
	}

	row := s.querier(ctx).QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE participant_a = $1 AND participant_b = $2`,
		conv.ParticipantA, conv.ParticipantB)
	c, err := scanConversation(row.Scan)
	if err != nil {
		return nil, false, fmt.Errorf("reselect conversation: %w", err)
	}
	return c, inserted == 1, nil
}

func (s *Postgres) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	c, err := scanConversation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return c, nil
}

func (s *Postgres) ListConversationsByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE participant_a = $1 OR participant_b = $1
		 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

const messageColumns = `id, conversation_id, sender_id, client_message_id, content, is_read, created_at`

func scanMessage(scan func(dest ...any) error) (*models.Message, error) {
	var m models.Message
	var clientID sql.NullString
	err := scan(&m.ID, &m.ConversationID, &m.SenderID, &clientID, &m.Content, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.ClientMessageID = clientID.String
	return &m, nil
}

// AppendMessage inserts the message and refreshes the conversation snapshot
// in one transaction, locking the conversation row first so concurrent
// appends serialize and the snapshot always reflects the final writer.
// Duplicate client keys return the original message instead of a new row.
func (s *Postgres) AppendMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	var out *models.Message
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		row := s.querier(ctx).QueryRowContext(ctx,
			`SELECT id FROM conversations WHERE id = $1 FOR UPDATE`, msg.ConversationID)
		var convID uuid.UUID
		if err := row.Scan(&convID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock conversation: %w", err)
		}

		if msg.ClientMessageID != "" {
			row := s.querier(ctx).QueryRowContext(ctx,
				`SELECT `+messageColumns+` FROM messages
				 WHERE conversation_id = $1 AND client_message_id = $2`,
				msg.ConversationID, msg.ClientMessageID)
			existing, err := scanMessage(row.Scan)
			if err == nil {
				out = existing
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("check client message id: %w", err)
			}
		}

		var clientID any
		if msg.ClientMessageID != "" {
			clientID = msg.ClientMessageID
		}
		_, err := s.querier(ctx).ExecContext(ctx, `
			INSERT INTO messages (`+messageColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			msg.ID, msg.ConversationID, msg.SenderID, clientID,
			msg.Content, msg.IsRead, msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		_, err = s.querier(ctx).ExecContext(ctx, `
			UPDATE conversations
			SET last_sender_id = $2, last_content = $3, last_created_at = $4, updated_at = $4
			WHERE id = $1`,
			msg.ConversationID, msg.SenderID, msg.Content, msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("update conversation snapshot: %w", err)
		}

		copied := *msg
		out = &copied
		return nil
	})
	return out, err
}

// ListMessagesMarkingRead returns the conversation's messages oldest first
// and marks the viewer's unread incoming messages as read, both inside one
// transaction. The update is idempotent: already-read rows are untouched.
func (s *Postgres) ListMessagesMarkingRead(ctx context.Context, conversationID, viewerID uuid.UUID) ([]models.Message, int, error) {
	var out []models.Message
	var marked int
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		row := s.querier(ctx).QueryRowContext(ctx,
			`SELECT id FROM conversations WHERE id = $1 FOR UPDATE`, conversationID)
		var convID uuid.UUID
		if err := row.Scan(&convID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock conversation: %w", err)
		}

		res, err := s.querier(ctx).ExecContext(ctx, `
			UPDATE messages SET is_read = TRUE
			WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE`,
			conversationID, viewerID,
		)
		if err != nil {
			return fmt.Errorf("mark messages read: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("mark messages read: %w", err)
		}
		marked = int(affected)

		tx, _ := txcontext.From(ctx)
		rows, err := tx.QueryContext(ctx,
			`SELECT `+messageColumns+` FROM messages
			 WHERE conversation_id = $1 ORDER BY created_at, id`, conversationID)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanMessage(rows.Scan)
			if err != nil {
				return fmt.Errorf("scan message: %w", err)
			}
			out = append(out, *m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return out, marked, nil
}
