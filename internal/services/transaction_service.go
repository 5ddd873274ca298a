package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/events"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/stats"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewTransactionService creates a new TransactionServicer. Committed writes
// are announced on publisher.
func NewTransactionService(db *gorm.DB, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transactionService{
		db:        db,
		publisher: publisher,
	}
}

// CreateTransaction creates a new transaction for a user's account
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	db := s.db.WithContext(ctx)

	transaction := &models.Transaction{UserID: userID}
	if err := s.apply(db, userID, transaction, in); err != nil {
		return nil, err
	}

	if err := db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(ctx, events.ActionCreated, transaction)
	return s.reload(db, transaction)
}

// GetUserTransactions retrieves a paginated, filtered list of a user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	return s.list(s.db.WithContext(ctx), userID, page, filter)
}

// GetAccountTransactions retrieves a paginated, filtered list of transactions for a specific account.
func (s *transactionService) GetAccountTransactions(ctx context.Context, userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	db := s.db.WithContext(ctx)
	if _, err := findAccount(db, userID, accountID); err != nil {
		return nil, err
	}
	filter.AccountID = &accountID
	return s.list(db, userID, page, filter)
}

func (s *transactionService) list(db *gorm.DB, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperrors.ErrInvalidDateRange
	}

	base := func() *gorm.DB {
		q := db.Model(&models.Transaction{}).Where("user_id = ?", userID)
		return applyTransactionFilters(q, filter)
	}

	var totalItems int64
	if err := base().Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base().
		Preload("Category").
		Preload("Account").
		Order("date DESC").
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", stats.Day(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", stats.Day(*f.ToDate))
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Account").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces a transaction's fields.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	db := s.db.WithContext(ctx)

	transaction, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	// Drop preloaded associations so Save does not upsert them.
	transaction.Account = nil
	transaction.Category = nil

	if err := s.apply(db, userID, transaction, in); err != nil {
		return nil, err
	}

	if err := db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(ctx, events.ActionUpdated, transaction)
	return s.reload(db, transaction)
}

// DeleteTransaction deletes a transaction
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", transaction.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(ctx, events.ActionDeleted, transaction)
	return nil
}

// loadRecentTransactions returns the user's latest transactions, five when
// limit is not positive.
func loadRecentTransactions(db *gorm.DB, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 5
	}
	transactions := []models.Transaction{}
	err := db.Preload("Category").
		Preload("Account").
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// apply validates in against the user's accounts and categories and copies it onto t.
func (s *transactionService) apply(db *gorm.DB, userID string, t *models.Transaction, in TransactionInput) error {
	if in.Type != models.TransactionTypeIncome && in.Type != models.TransactionTypeExpense {
		return apperrors.ErrInvalidTransactionType
	}
	if in.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.AccountID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}

	if _, err := findAccount(db, userID, in.AccountID); err != nil {
		return err
	}

	categoryID := in.CategoryID
	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}
	if categoryID != nil {
		category, err := findCategory(db, userID, *categoryID)
		if err != nil {
			return err
		}
		if string(category.Type) != string(in.Type) {
			return apperrors.ErrCategoryTypeMismatch
		}
	}

	description := in.Description
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if trimmed == "" {
			description = nil
		} else {
			description = &trimmed
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	t.AccountID = in.AccountID
	t.CategoryID = categoryID
	t.Type = in.Type
	t.Amount = in.Amount
	t.Description = description
	t.Date = stats.Day(date)
	return nil
}

func (s *transactionService) reload(db *gorm.DB, t *models.Transaction) (*models.Transaction, error) {
	var out models.Transaction
	if err := db.Preload("Category").Preload("Account").Where("id = ?", t.ID).First(&out).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &out, nil
}

// publish announces a committed write. Failures are logged only.
func (s *transactionService) publish(ctx context.Context, action events.Action, t *models.Transaction) {
	if err := s.publisher.PublishTransaction(ctx, events.NewTransactionEvent(action, t)); err != nil {
		logger.Get().Warnw("failed to publish transaction event",
			"error", err,
			"action", action,
			"transaction_id", t.ID,
		)
	}
}
