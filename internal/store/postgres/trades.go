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

const tradeColumns = `id, offered_item_id, requested_item_id, offerer_id, requester_id, status,
	confirmed_by_offerer, confirmed_by_requester, created_at, updated_at`

func scanTrade(row pgx.Row) (*models.TradeRequest, error) {
	var trade models.TradeRequest
	var status string
	if err := row.Scan(
		&trade.ID,
		&trade.OfferedItemID,
		&trade.RequestedItemID,
		&trade.OffererID,
		&trade.RequesterID,
		&status,
		&trade.ConfirmedByOfferer,
		&trade.ConfirmedByRequester,
		&trade.CreatedAt,
		&trade.UpdatedAt,
	); err != nil {
		return nil, err
	}
	trade.Status = models.TradeStatus(status)
	return &trade, nil
}

func (s *Store) CreateTrade(ctx context.Context, trade *models.TradeRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trade_requests (id, offered_item_id, requested_item_id, offerer_id, requester_id,
			status, confirmed_by_offerer, confirmed_by_requester, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, trade.ID, trade.OfferedItemID, trade.RequestedItemID, trade.OffererID, trade.RequesterID,
		string(trade.Status), trade.ConfirmedByOfferer, trade.ConfirmedByRequester, trade.CreatedAt, trade.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) GetTrade(ctx context.Context, id uuid.UUID) (*models.TradeRequest, error) {
	trade, err := scanTrade(s.pool.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trade_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trade %s: %w", id, errs.ErrNotFound)
	}
	return trade, err
}

func (s *Store) ListTradesByUser(ctx context.Context, userID uuid.UUID) ([]models.TradeRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM trade_requests
		WHERE offerer_id = $1 OR requester_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.TradeRequest
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

func (s *Store) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.TradeStatus) (*models.TradeRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	trade, err := scanTrade(tx.QueryRow(ctx, `
		UPDATE trade_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+tradeColumns,
		id, string(from), string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tradeExists(ctx, tx, id)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return trade, nil
}

func (s *Store) ConfirmTrade(ctx context.Context, upd store.ConfirmUpdate) (*models.TradeRequest, error) {
	offerer, requester, err := store.CheckConfirmUpdate(upd)
	if err != nil {
		return nil, err
	}

	status := models.TradeStatusAccepted
	if upd.Finalize {
		status = models.TradeStatusConfirmed
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Условие WHERE проверяет прообраз обоих флагов: конкурирующее подтверждение,
	// успевшее раньше, делает эту запись пустой
	trade, err := scanTrade(tx.QueryRow(ctx, `
		UPDATE trade_requests
		SET confirmed_by_offerer = $2, confirmed_by_requester = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		  AND status = 'accepted'
		  AND confirmed_by_offerer = $5
		  AND confirmed_by_requester = $6
		RETURNING `+tradeColumns,
		upd.TradeID, offerer, requester, string(status), upd.ExpectOfferer, upd.ExpectRequester))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tradeExists(ctx, tx, upd.TradeID)
	}
	if err != nil {
		return nil, err
	}

	if upd.Finalize {
		tag, err := tx.Exec(ctx, `
			UPDATE items
			SET status = 'traded'
			WHERE id = ANY($1::uuid[]) AND status = 'available'
		`, uuidStrings(upd.ItemIDs))
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() != int64(len(upd.ItemIDs)) {
			return nil, store.ErrItemUnavailable
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return trade, nil
}
