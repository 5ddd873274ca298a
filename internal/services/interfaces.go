package services

import (
	"context"
	"io"
	"time"

	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/stats"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
}

// AccountInput holds the fields of a new account.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance int64
	Icon           string
}

// AccountUpdate holds the editable fields of an account. Nil fields are left unchanged.
type AccountUpdate struct {
	Name           *string
	Type           *models.AccountType
	InitialBalance *int64
	Icon           *string
}

// AccountList is every account of a user with its computed balance.
type AccountList struct {
	Accounts     []stats.AccountBalance `json:"accounts"`
	TotalBalance int64                  `json:"total_balance"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID string, in AccountInput) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID string) (*AccountList, error)
	GetAccountByID(ctx context.Context, userID, accountID string) (*stats.AccountBalance, error)
	UpdateAccount(ctx context.Context, userID, accountID string, in AccountUpdate) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error
}

// CategoryInput holds the fields of a new category.
type CategoryInput struct {
	Name        string
	Type        models.CategoryType
	Icon        string
	Color       string
	BudgetLimit *int64
}

// CategoryUpdate holds the editable fields of a category. Nil fields are left unchanged.
type CategoryUpdate struct {
	Name  *string
	Icon  *string
	Color *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID string, in CategoryInput) (*models.Category, error)
	GetUserCategories(ctx context.Context, userID string, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, in CategoryUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
	SeedDefaultCategories(ctx context.Context, userID string) ([]models.Category, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	AccountID  *string
	MinAmount  *int64
	MaxAmount  *int64
}

// TransactionInput holds the fields of a transaction.
type TransactionInput struct {
	AccountID   string
	CategoryID  *string
	Type        models.TransactionType
	Amount      int64
	Description *string
	Date        time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAccountTransactions(ctx context.Context, userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// Statistics is the full report of one period.
type Statistics struct {
	stats.PeriodSummary
	Budgets []stats.BudgetItem `json:"budgets"`
}

// Dashboard is the overview of a user's finances.
type Dashboard struct {
	Accounts           []stats.AccountBalance `json:"accounts"`
	TotalBalance       int64                  `json:"total_balance"`
	Month              stats.DateRange        `json:"month"`
	MonthIncome        int64                  `json:"month_income"`
	MonthExpense       int64                  `json:"month_expense"`
	SavingsRate        int                    `json:"savings_rate"`
	RecentTransactions []models.Transaction   `json:"recent_transactions"`
}

// StatisticsServicer defines the contract for reporting.
type StatisticsServicer interface {
	GetStatistics(ctx context.Context, userID string, rng stats.DateRange) (*Statistics, error)
	GetDashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error)
}

// BudgetServicer defines the contract for budget limits and alerts.
type BudgetServicer interface {
	GetBudgets(ctx context.Context, userID string, rng stats.DateRange) ([]stats.BudgetItem, error)
	SetBudgetLimit(ctx context.Context, userID, categoryID string, limit *int64) (*models.Category, error)
	GetAlerts(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetAlert], error)
	CheckCategory(ctx context.Context, userID, categoryID string, date time.Time) (*models.BudgetAlert, error)
}

// ImportResult reports the outcome of a statement import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportServicer defines the contract for statement imports.
type ImportServicer interface {
	ImportStatement(ctx context.Context, userID, accountID string, r io.Reader) (*ImportResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
