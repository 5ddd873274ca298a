// Package worker consumes transaction events and keeps budget alerts current.
package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "dompet/internal/errors"
	"dompet/internal/events"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/services"
)

// BudgetWorker re-evaluates the budget of the category a transaction event
// touched and records the first warning or over alert of each month.
type BudgetWorker struct {
	budgets services.BudgetServicer
	log     *zap.SugaredLogger
}

// NewBudgetWorker creates a BudgetWorker.
func NewBudgetWorker(budgets services.BudgetServicer) *BudgetWorker {
	return &BudgetWorker{
		budgets: budgets,
		log:     logger.Named("budget-worker"),
	}
}

// HandleTransactionEvent implements events.Handler. Deletions only lower
// spending and income never counts against a budget, so both are skipped.
// An error asks the broker to redeliver the event.
func (w *BudgetWorker) HandleTransactionEvent(ctx context.Context, event *events.TransactionEvent) error {
	if event.Action == events.ActionDeleted ||
		event.Type != models.TransactionTypeExpense ||
		event.CategoryID == nil {
		return nil
	}

	date, err := event.ParsedDate()
	if err != nil {
		w.log.Warnw("dropping event with unparseable date",
			"transaction_id", event.TransactionID,
			"date", event.Date,
		)
		return nil
	}

	alert, err := w.budgets.CheckCategory(ctx, event.UserID, *event.CategoryID, date)
	if err != nil {
		// The category was deleted after the write; nothing left to evaluate.
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			w.log.Infow("category gone, skipping budget check",
				"transaction_id", event.TransactionID,
				"category_id", *event.CategoryID,
			)
			return nil
		}
		return fmt.Errorf("check budget of category %s: %w", *event.CategoryID, err)
	}

	if alert != nil {
		w.log.Infow("budget threshold crossed",
			"user_id", alert.UserID,
			"category_id", alert.CategoryID,
			"month", alert.Month,
			"status", alert.Status,
			"percentage", alert.Percentage,
		)
	}
	return nil
}
