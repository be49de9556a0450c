package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
)

func (s *Store) AppendMessage(ctx context.Context, msg *models.Message) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Блокировка строки обмена сериализует отправку в одну переписку,
	// поэтому seq и created_at растут согласованно
	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM trade_requests WHERE id = $1 FOR UPDATE`, msg.TradeID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("trade %s: %w", msg.TradeID, errs.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if models.TradeStatus(status) != models.TradeStatusAccepted {
		return store.ErrConflict
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (id, trade_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, GREATEST(clock_timestamp(),
			COALESCE((SELECT MAX(created_at) FROM messages WHERE trade_id = $2), '-infinity'::timestamptz)))
		RETURNING created_at, seq
	`, msg.ID, msg.TradeID, msg.SenderID, msg.Content).Scan(&msg.CreatedAt, &msg.Seq)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) ListMessages(ctx context.Context, tradeID uuid.UUID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, trade_id, sender_id, content, created_at, seq
		FROM messages
		WHERE trade_id = $1
		ORDER BY created_at ASC, seq ASC
	`, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.TradeID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.Seq); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
