// Package postgres реализует хранилище движка обменов в PostgreSQL.
// Переходы статуса и подтверждения выполняются условным UPDATE с проверкой
// ожидаемого состояния строки; финализация обмена и пометка вещей идут в одной транзакции.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
)

const uniqueViolation = "23505"

// Store реализует store.Store поверх пула pgx
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New создаёт хранилище
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// tradeExists отличает отсутствующий обмен от проигранной гонки за условную запись
func tradeExists(ctx context.Context, q pgx.Tx, id uuid.UUID) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM trade_requests WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("trade %s: %w", id, errs.ErrNotFound)
	}
	return store.ErrConflict
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
