package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
	"dompet/internal/stats"
)

// statisticsService assembles reports from the stats reducers.
type statisticsService struct {
	db          *gorm.DB
	recentLimit int
}

// NewStatisticsService creates a new StatisticsServicer. recentLimit is the
// number of recent transactions shown on the dashboard.
func NewStatisticsService(db *gorm.DB, recentLimit int) StatisticsServicer {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &statisticsService{db: db, recentLimit: recentLimit}
}

// GetStatistics aggregates the user's transactions within rng and evaluates
// every budget-bearing category against the period's spending.
func (s *statisticsService) GetStatistics(ctx context.Context, userID string, rng stats.DateRange) (*Statistics, error) {
	if !rng.Valid() {
		return nil, apperrors.ErrInvalidDateRange
	}

	var (
		txns       []models.Transaction
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = loadPeriodTransactions(s.db.WithContext(gctx), userID, rng, nil)
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
	return &Statistics{
		PeriodSummary: summary,
		Budgets:       stats.EvaluateBudgets(categories, summary.SpentByCategory),
	}, nil
}

// GetDashboard returns balances, the current month's totals and the latest transactions.
func (s *statisticsService) GetDashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error) {
	month := stats.MonthRange(now)

	var (
		accounts    []models.Account
		balanceRows []models.Transaction
		monthTxns   []models.Transaction
		recent      []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.WithContext(gctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		balanceRows, err = loadBalanceRows(s.db.WithContext(gctx), userID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		monthTxns, err = loadPeriodTransactions(s.db.WithContext(gctx), userID, month, nil)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = loadRecentTransactions(s.db.WithContext(gctx), userID, s.recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	balances := stats.AccountBalances(accounts, balanceRows)
	summary := stats.AggregatePeriod(month, monthTxns)

	return &Dashboard{
		Accounts:           balances,
		TotalBalance:       stats.TotalBalance(balances),
		Month:              month,
		MonthIncome:        summary.TotalIncome,
		MonthExpense:       summary.TotalExpense,
		SavingsRate:        summary.SavingsRate,
		RecentTransactions: recent,
	}, nil
}

// loadPeriodTransactions fetches the user's transactions dated within rng,
// oldest first, with categories preloaded. typ narrows to one type.
func loadPeriodTransactions(db *gorm.DB, userID string, rng stats.DateRange, typ *models.TransactionType) ([]models.Transaction, error) {
	q := db.Preload("Category").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, rng.From, rng.To)
	if typ != nil {
		q = q.Where("type = ?", *typ)
	}

	var txns []models.Transaction
	if err := q.Order("date ASC").Order("created_at ASC").Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txns, nil
}
