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

const itemColumns = `id, user_id, title, COALESCE(description, ''), category, COALESCE(image_url, ''), type, status, created_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	var itemType, status string
	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Title,
		&item.Description,
		&item.Category,
		&item.ImageURL,
		&itemType,
		&status,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}
	item.Type = models.ItemType(itemType)
	item.Status = models.ItemStatus(status)
	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO items (id, user_id, title, description, category, image_url, type, status, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9)
	`, item.ID, item.UserID, item.Title, item.Description, item.Category, item.ImageURL,
		string(item.Type), string(item.Status), item.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("item %s: %w", item.ID, store.ErrDuplicate)
	}
	return err
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := scanItem(s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, errs.ErrNotFound)
	}
	return item, err
}

func (s *Store) ListItemsByOwner(ctx context.Context, userID uuid.UUID) ([]models.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
