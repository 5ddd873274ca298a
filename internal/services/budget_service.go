package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "dompet/internal/errors"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/stats"
)

// budgetService evaluates budget limits and records alerts.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// GetBudgets evaluates every budget-bearing category against spending in rng.
func (s *budgetService) GetBudgets(ctx context.Context, userID string, rng stats.DateRange) ([]stats.BudgetItem, error) {
	if !rng.Valid() {
		return nil, apperrors.ErrInvalidDateRange
	}

	expense := models.TransactionTypeExpense
	var (
		txns       []models.Transaction
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = loadPeriodTransactions(s.db.WithContext(gctx), userID, rng, &expense)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = loadBudgetCategories(s.db.WithContext(gctx), userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := stats.AggregatePeriod(rng, txns)
	return stats.EvaluateBudgets(categories, summary.SpentByCategory), nil
}

// SetBudgetLimit sets or, with a nil limit, clears a category's monthly limit.
func (s *budgetService) SetBudgetLimit(ctx context.Context, userID, categoryID string, limit *int64) (*models.Category, error) {
	db := s.db.WithContext(ctx)

	category, err := findCategory(db, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if limit != nil {
		if category.Type != models.CategoryTypeExpense {
			return nil, apperrors.ErrBudgetNotAllowed
		}
		if *limit <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget limit must be greater than zero")
		}
	}

	if err := db.Model(category).Update("budget_limit", limit).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	category.BudgetLimit = limit
	return category, nil
}

// GetAlerts lists the user's budget alerts, newest first.
func (s *budgetService) GetAlerts(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetAlert], error) {
	page.Defaults()
	db := s.db.WithContext(ctx)

	var totalItems int64
	if err := db.Model(&models.BudgetAlert{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var alerts []models.BudgetAlert
	if err := db.Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&alerts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(alerts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CheckCategory evaluates one category's budget for the month containing
// date. When utilization reached the warning or over band for the first
// time that month, the alert is stored and returned; otherwise nil.
func (s *budgetService) CheckCategory(ctx context.Context, userID, categoryID string, date time.Time) (*models.BudgetAlert, error) {
	db := s.db.WithContext(ctx)

	category, err := findCategory(db, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.HasBudget() {
		return nil, nil
	}

	month := stats.MonthRange(date)
	expense := models.TransactionTypeExpense
	txns, err := loadPeriodTransactions(db.Where("category_id = ?", category.ID), userID, month, &expense)
	if err != nil {
		return nil, err
	}

	summary := stats.AggregatePeriod(month, txns)
	item := stats.EvaluateBudgets([]models.Category{*category}, summary.SpentByCategory)[0]
	if item.Status == models.BudgetStatusNormal {
		return nil, nil
	}

	alert := &models.BudgetAlert{
		UserID:     userID,
		CategoryID: category.ID,
		Month:      stats.MonthKey(month.From),
		Status:     item.Status,
		Percentage: item.Percentage,
		Spent:      item.Spent,
		Limit:      item.Limit,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(alert)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	logger.Get().Infow("budget alert raised",
		"user_id", userID,
		"category_id", category.ID,
		"month", alert.Month,
		"status", alert.Status,
		"percentage", alert.Percentage,
	)
	return alert, nil
}
