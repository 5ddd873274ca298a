package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/stats"
)

// defaultAccountIcons is used when an account is created without an icon.
var defaultAccountIcons = map[models.AccountType]string{
	models.AccountTypeBank:    "🏦",
	models.AccountTypeEWallet: "📱",
	models.AccountTypeCash:    "💵",
}

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

func validAccountType(t models.AccountType) bool {
	_, ok := defaultAccountIcons[t]
	return ok
}

// CreateAccount creates a new account for a user
func (s *accountService) CreateAccount(ctx context.Context, userID string, in AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !validAccountType(in.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be bank, ewallet or cash")
	}

	icon := in.Icon
	if icon == "" {
		icon = defaultAccountIcons[in.Type]
	}

	account := &models.Account{
		UserID:         userID,
		Name:           name,
		Type:           in.Type,
		InitialBalance: in.InitialBalance,
		Icon:           icon,
	}

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts returns every account of a user with its balance, oldest first.
func (s *accountService) GetUserAccounts(ctx context.Context, userID string) (*AccountList, error) {
	db := s.db.WithContext(ctx)

	var accounts []models.Account
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txns, err := loadBalanceRows(db, userID, nil)
	if err != nil {
		return nil, err
	}

	balances := stats.AccountBalances(accounts, txns)
	return &AccountList{Accounts: balances, TotalBalance: stats.TotalBalance(balances)}, nil
}

// GetAccountByID retrieves an account by ID for a specific user, with its balance.
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID string) (*stats.AccountBalance, error) {
	db := s.db.WithContext(ctx)

	account, err := findAccount(db, userID, accountID)
	if err != nil {
		return nil, err
	}

	txns, err := loadBalanceRows(db, userID, &accountID)
	if err != nil {
		return nil, err
	}

	return &stats.AccountBalance{Account: *account, Balance: stats.CalculateBalance(*account, txns)}, nil
}

// UpdateAccount updates an account's editable fields
func (s *accountService) UpdateAccount(ctx context.Context, userID, accountID string, in AccountUpdate) (*models.Account, error) {
	db := s.db.WithContext(ctx)

	account, err := findAccount(db, userID, accountID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		account.Name = name
	}
	if in.Type != nil {
		if !validAccountType(*in.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be bank, ewallet or cash")
		}
		account.Type = *in.Type
	}
	if in.InitialBalance != nil {
		account.InitialBalance = *in.InitialBalance
	}
	if in.Icon != nil {
		account.Icon = *in.Icon
	}

	if err := db.Save(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// DeleteAccount deletes an account together with all of its transactions.
func (s *accountService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	db := s.db.WithContext(ctx)

	account, err := findAccount(db, userID, accountID)
	if err != nil {
		return err
	}

	var removed int64
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("account_id = ? AND user_id = ?", account.ID, userID).Delete(&models.Transaction{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		removed = res.RowsAffected

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("account deleted",
		"user_id", userID,
		"account_id", account.ID,
		"transactions_removed", removed,
	)
	return nil
}

// findAccount loads an account owned by userID.
func findAccount(db *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// loadBalanceRows fetches the columns needed to compute balances, optionally
// for a single account.
func loadBalanceRows(db *gorm.DB, userID string, accountID *string) ([]models.Transaction, error) {
	q := db.Model(&models.Transaction{}).
		Select("account_id", "type", "amount").
		Where("user_id = ?", userID)
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}

	var txns []models.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txns, nil
}
