package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/domain"
)

type SQLiteChatMessageRepo struct {
	db db.DBTX
}

func NewSQLiteChatMessageRepo(conn db.DBTX) *SQLiteChatMessageRepo {
	return &SQLiteChatMessageRepo{db: conn}
}

func (r *SQLiteChatMessageRepo) Create(ctx context.Context, m *domain.ChatMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO plan_chat_messages (id, plan_id, sender, sender_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.PlanID, string(m.Sender), m.SenderID, m.Body, formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}
	return nil
}

// ListByPlan returns the conversation oldest first. Messages written in the
// same microsecond keep insertion order.
func (r *SQLiteChatMessageRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, sender, sender_id, body, created_at
		FROM plan_chat_messages WHERE plan_id = ? ORDER BY created_at, rowid`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var (
			m         domain.ChatMessage
			sender    string
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.PlanID, &sender, &m.SenderID, &m.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.Sender = domain.SenderRole(sender)
		if m.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat messages: %w", err)
	}
	return msgs, nil
}
