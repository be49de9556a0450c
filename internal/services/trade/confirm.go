package trade

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/db"
	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/monitoring"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
)

// Confirm отмечает, что участник подтвердил состоявшийся обмен.
// Второе подтверждение в той же условной записи завершает обмен и помечает вещи как обменянные.
// Проигранная гонка за запись не видна вызывающему: обмен перечитывается и шаги повторяются.
func (s *TradeService) Confirm(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, error) {
	var (
		result  *models.TradeRequest
		outcome string
	)

	err := db.WithRetries(func() error {
		trade, o, err := s.confirmOnce(ctx, tradeID, actorID)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				monitoring.TradeConfirmConflictsTotal.Inc()
			}
			return err
		}
		result, outcome = trade, o
		return nil
	}, s.maxRetries, isConflict)

	if err != nil {
		monitoring.RecordConfirmation(monitoring.ConfirmOutcomeFailed)
		if errors.Is(err, store.ErrConflict) {
			log.Printf("Подтверждение обмена %s не удалось после %d повторов", tradeID, s.maxRetries)
			return nil, fmt.Errorf("%w: trade is being updated concurrently", errs.ErrInvalidState)
		}
		return nil, err
	}

	monitoring.RecordConfirmation(outcome)
	if outcome != monitoring.ConfirmOutcomeIdempotent {
		if outcome == monitoring.ConfirmOutcomeFinalized {
			monitoring.RecordTransition(string(models.TradeStatusAccepted), string(models.TradeStatusConfirmed))
			log.Printf("Обмен %s завершён", tradeID)
		}
		s.notify(result)
	}
	return result, nil
}

func (s *TradeService) confirmOnce(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, string, error) {
	trade, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, "", err
	}

	role, ok := trade.RoleOf(actorID)
	if !ok {
		return nil, "", fmt.Errorf("%w: not a participant of trade %s", errs.ErrForbidden, tradeID)
	}
	if trade.Status != models.TradeStatusAccepted {
		return nil, "", fmt.Errorf("%w: cannot confirm a %s trade", errs.ErrInvalidState, trade.Status)
	}
	if trade.ConfirmedBy(role) {
		return trade, monitoring.ConfirmOutcomeIdempotent, nil
	}

	finalize := trade.ConfirmedBy(otherRole(role))
	updated, err := s.store.ConfirmTrade(ctx, store.ConfirmUpdate{
		TradeID:         trade.ID,
		Role:            role,
		ExpectOfferer:   trade.ConfirmedByOfferer,
		ExpectRequester: trade.ConfirmedByRequester,
		Finalize:        finalize,
		ItemIDs:         trade.ItemIDs(),
	})
	if err != nil {
		if errors.Is(err, store.ErrItemUnavailable) {
			return nil, "", fmt.Errorf("%w: %v", errs.ErrInvalidState, err)
		}
		return nil, "", err
	}

	if finalize {
		return updated, monitoring.ConfirmOutcomeFinalized, nil
	}
	return updated, monitoring.ConfirmOutcomeFlagSet, nil
}

func otherRole(role models.TradeRole) models.TradeRole {
	if role == models.RoleOfferer {
		return models.RoleRequester
	}
	return models.RoleOfferer
}

func isConflict(err error) bool {
	return errors.Is(err, store.ErrConflict)
}
